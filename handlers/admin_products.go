package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"jmb-server/models"
	"jmb-server/services"
)

// productInput is accepted as JSON or as a multipart form with an optional
// "image" file.
type productInput struct {
	Name        *string     `json:"name" form:"name"`
	Description *string     `json:"description" form:"description"`
	Price       json.Number `json:"price" form:"price"`
	ImageURL    *string     `json:"image_url" form:"image_url"`
	Image       *string     `json:"image" form:"-"`
	Category    *string     `json:"category" form:"category"`
	IsActive    *bool       `json:"is_active" form:"is_active"`
}

func validationError(field, message string) *services.ValidationError {
	return &services.ValidationError{Field: field, Message: message}
}

// apply copies the provided fields onto p. Unset fields keep their value.
func (in productInput) apply(p *models.Product) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(string(in.Price)))
		if err != nil {
			return validationError("price", "Price must be a number")
		}
		p.Price = price
	}
	if in.ImageURL != nil {
		p.Image = strings.TrimSpace(*in.ImageURL)
	} else if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			p.Category = nil
		} else {
			p.Category = &category
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

func validateProduct(p models.Product) error {
	switch {
	case p.Name == "":
		return validationError("name", "Product name is required")
	case p.Description == "":
		return validationError("description", "Product description is required")
	case p.Price.IsNegative():
		return validationError("price", "Price must be zero or more")
	case !p.Price.Equal(p.Price.Round(2)):
		return validationError("price", "Price must have at most two decimal places")
	case p.Image == "":
		return validationError("image", "Product image is required")
	}
	return nil
}

// bindProduct binds the request body and uploads an attached image.
func (h *Handler) bindProduct(c *gin.Context, p *models.Product) bool {
	var in productInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	if err := in.apply(p); err != nil {
		h.respondError(c, err, "Invalid product")
		return false
	}

	data, filename, present, err := readFormImage(c, "image")
	if err != nil {
		h.respondError(c, err, "Failed to read upload")
		return false
	}
	if present {
		url, err := services.UploadImage(c.Request.Context(), h.Images, data, services.FolderProducts, filename)
		if err != nil {
			h.respondError(c, err, "Failed to upload image")
			return false
		}
		p.Image = url
	}

	if err := validateProduct(*p); err != nil {
		h.respondError(c, err, "Invalid product")
		return false
	}
	return true
}

// GetAdminProducts lists every product including inactive ones
func (h *Handler) GetAdminProducts(c *gin.Context) {
	products, err := h.Products.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	product, err := h.Products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "Product", "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	product := models.Product{IsActive: true}
	if !h.bindProduct(c, &product) {
		return
	}

	if err := h.Products.CreateProduct(c.Request.Context(), &product); err != nil {
		h.respondError(c, err, "Failed to create product")
		return
	}

	h.Logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// UpdateProduct applies a partial update. Concurrent edits are last write
// wins.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, err := h.Products.GetProduct(ctx, id)
	if err != nil {
		h.lookupError(c, err, "Product", "Failed to fetch product")
		return
	}
	previousImage := product.Image
	if !h.bindProduct(c, &product) {
		return
	}

	if err := h.Products.UpdateProduct(ctx, &product); err != nil {
		h.lookupError(c, err, "Product", "Failed to update product")
		return
	}
	if product.Image != previousImage {
		h.releaseImage(ctx, previousImage)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// DeleteProduct hard-deletes a product. Order items keep their snapshot.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	product, err := h.Products.GetProduct(ctx, id)
	if err != nil {
		h.lookupError(c, err, "Product", "Failed to fetch product")
		return
	}
	if err := h.Products.DeleteProduct(ctx, id); err != nil {
		h.lookupError(c, err, "Product", "Failed to delete product")
		return
	}
	h.releaseImage(ctx, product.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

var exportHeaders = []string{"ID", "Name", "Price", "Category", "Description", "Image", "Active"}

func exportRow(p models.Product) []string {
	category := ""
	if p.Category != nil {
		category = *p.Category
	}
	return []string{
		p.ID.String(),
		p.Name,
		p.Price.StringFixed(2),
		category,
		p.Description,
		p.Image,
		strconv.FormatBool(p.IsActive),
	}
}

// ExportProducts downloads the catalog as JSON, CSV or Excel
func (h *Handler) ExportProducts(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format must be json, csv or xlsx"})
		return
	}

	products, err := h.Products.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "json":
		contentType = "application/json"
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(products)
	case "csv":
		contentType = "text/csv"
		err = writeProductsCSV(&buf, products)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = writeProductsXLSX(&buf, products)
	}
	if err != nil {
		h.respondError(c, err, "Failed to export products")
		return
	}

	filename := fmt.Sprintf("jmb-products-%s.%s", h.clock().Format("2006-01-02"), format)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func writeProductsCSV(buf *bytes.Buffer, products []models.Product) error {
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeaders); err != nil {
		return err
	}
	for _, p := range products {
		if err := w.Write(exportRow(p)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeProductsXLSX(buf *bytes.Buffer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		for _, v := range exportRow(p) {
			row.AddCell().SetValue(v)
		}
	}
	return file.Write(buf)
}

type importRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportProducts creates products from a JSON array body or an uploaded
// Excel file in the export layout. Invalid rows are reported and skipped.
func (h *Handler) ImportProducts(c *gin.Context) {
	inputs, rowErrs, err := readImport(c)
	if err != nil {
		h.respondError(c, err, "Failed to read import")
		return
	}

	ctx := c.Request.Context()
	created := 0
	for i, in := range inputs {
		if in == nil {
			continue
		}
		product := models.Product{IsActive: true}
		if err := in.apply(&product); err == nil {
			err = validateProduct(product)
		}
		if err != nil {
			rowErrs = append(rowErrs, importRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		if err := h.Products.CreateProduct(ctx, &product); err != nil {
			h.Logger.Error("Failed to import product", zap.Int("row", i+1), zap.Error(err))
			rowErrs = append(rowErrs, importRowError{Row: i + 1, Error: "Failed to create product"})
			continue
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Imported %d products", created),
		"imported": created,
		"skipped":  len(rowErrs),
		"errors":   rowErrs,
	})
}

// readImport returns one input per row. Rows that cannot be decoded are nil
// and reported in the returned errors.
func readImport(c *gin.Context) ([]*productInput, []importRowError, error) {
	if header, err := c.FormFile("file"); err == nil {
		src, err := header.Open()
		if err != nil {
			return nil, nil, validationError("import", "Failed to open import file")
		}
		defer src.Close()

		xl, err := xlsx.OpenReaderAt(src, header.Size)
		if err != nil {
			return nil, nil, validationError("import", "Failed to parse Excel file")
		}
		return readImportSheet(xl)
	}

	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, nil, validationError("import", "Import must be a JSON array of products")
	}

	inputs := make([]*productInput, len(raw))
	var rowErrs []importRowError
	for i, r := range raw {
		var in productInput
		if err := json.Unmarshal(r, &in); err != nil {
			rowErrs = append(rowErrs, importRowError{Row: i + 1, Error: "Invalid product fields"})
			continue
		}
		inputs[i] = &in
	}
	return inputs, rowErrs, nil
}

func readImportSheet(xl *xlsx.File) ([]*productInput, []importRowError, error) {
	if len(xl.Sheets) == 0 || len(xl.Sheets[0].Rows) < 2 {
		return nil, nil, validationError("import", "Excel file is empty or missing header row")
	}

	rows := xl.Sheets[0].Rows[1:]
	inputs := make([]*productInput, len(rows))
	for i, row := range rows {
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}
		name, category, description, image := get(1), get(3), get(4), get(5)
		in := productInput{
			Name:        &name,
			Description: &description,
			Price:       json.Number(get(2)),
			ImageURL:    &image,
			Category:    &category,
		}
		if active, err := strconv.ParseBool(get(6)); err == nil {
			in.IsActive = &active
		}
		inputs[i] = &in
	}
	return inputs, nil, nil
}
