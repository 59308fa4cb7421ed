package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     gin.H
		wantCode int
		wantErr  string
	}{
		{
			name:     "string price",
			body:     gin.H{"name": "Surge Arrestor", "description": "Type 2", "price": "349.90", "image_url": "https://img.test/sa.jpg", "category": "Protection"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "numeric price",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": 120, "image": "https://img.test/iso.jpg"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "negative price",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": "-1", "image_url": "https://img.test/iso.jpg"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Price must be zero or more",
		},
		{
			name:     "fractional cents",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": "10.005", "image_url": "https://img.test/iso.jpg"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Price must have at most two decimal places",
		},
		{
			name:     "trailing zeros",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": "10.500", "image_url": "https://img.test/iso.jpg"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "price not a number",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": "cheap", "image_url": "https://img.test/iso.jpg"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing image",
			body:     gin.H{"name": "Isolator", "description": "63A", "price": "10"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Product image is required",
		},
		{
			name:     "blank name",
			body:     gin.H{"name": "  ", "description": "63A", "price": "10", "image_url": "https://img.test/iso.jpg"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Product name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.asAdmin(http.MethodPost, "/api/v1/admin/products", jsonBody(t, tt.body))
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decode(t, rec)["error"])
			}
		})
	}

	products, err := env.store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "10.5", products[0].Price.String())
	assert.Equal(t, "120", products[1].Price.String())
	assert.Equal(t, "Protection", *products[2].Category)
	assert.True(t, products[2].IsActive)
}

func TestCreateProduct_MultipartUpload(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Floodlight"))
	require.NoError(t, w.WriteField("description", "50W LED"))
	require.NoError(t, w.WriteField("price", "299"))
	part, err := w.CreateFormFile("image", "Flood Light.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := env.asAdmin(http.MethodPost, "/api/v1/admin/products", &buf, header{"Content-Type", w.FormDataContentType()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	product := decode(t, rec)["product"].(map[string]interface{})
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/images/products/Flood Light.png", product["image"])
	assert.Equal(t, []string{"images/products/Flood Light.png"}, env.images.uploads)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct("DB Board", "100", true)

	rec := env.asAdmin(http.MethodPut, "/api/v1/admin/products/"+p.ID.String(), jsonBody(t, gin.H{"is_active": false, "price": "120.50"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := env.store.products[p.ID]
	assert.False(t, stored.IsActive)
	assert.Equal(t, "120.5", stored.Price.String())
	assert.Equal(t, "DB Board", stored.Name)

	rec = env.request(http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.asAdmin(http.MethodPut, "/api/v1/admin/products/"+uuid.NewString(), jsonBody(t, gin.H{"name": "x"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.asAdmin(http.MethodPut, "/api/v1/admin/products/not-a-uuid", jsonBody(t, gin.H{"name": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct("DB Board", "100", true)

	rec := env.asAdmin(http.MethodDelete, "/api/v1/admin/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.store.products)

	rec = env.asAdmin(http.MethodDelete, "/api/v1/admin/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["error"])
}

func TestExportProducts_CSV(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct("DB Board", "1899.9", true)

	rec := env.asAdmin(http.MethodGet, "/api/v1/admin/products/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=jmb-products-2024-03-15.csv", rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		exportHeaders,
		{p.ID.String(), "DB Board", "1899.90", "", "DB Board description", "https://img.test/DB Board.jpg", "true"},
	}, records)
}

func TestExportProducts_XLSX(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct("Cable", "450", false)

	rec := env.asAdmin(http.MethodGet, "/api/v1/admin/products/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=jmb-products-2024-03-15.xlsx", rec.Header().Get("Content-Disposition"))

	data := rec.Body.Bytes()
	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0].Cells[1].String())
	assert.Equal(t, "Cable", rows[1].Cells[1].String())
	assert.Equal(t, "false", rows[1].Cells[6].String())
}

func TestExportProducts_BadFormat(t *testing.T) {
	env := newTestEnv(t)
	rec := env.asAdmin(http.MethodGet, "/api/v1/admin/products/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportProducts_JSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.asAdmin(http.MethodPost, "/api/v1/admin/products/import", jsonBody(t, []interface{}{
		gin.H{"name": "Cable", "description": "2.5mm", "price": "450", "image_url": "https://img.test/c.jpg"},
		gin.H{"name": "Broken", "description": "no image", "price": "10"},
		"not an object",
		gin.H{"name": "Fuse", "description": "10A", "price": 4.999, "image_url": "https://img.test/f.jpg"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["imported"])
	assert.Equal(t, float64(3), body["skipped"])
	assert.Len(t, env.store.products, 1)

	rows := map[float64]bool{}
	for _, e := range body["errors"].([]interface{}) {
		rows[e.(map[string]interface{})["row"].(float64)] = true
	}
	assert.Equal(t, map[float64]bool{2: true, 3: true, 4: true}, rows)
}

func TestImportProducts_XLSXRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct("Cable", "450", true)

	rec := env.asAdmin(http.MethodGet, "/api/v1/admin/products/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(exported)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec = env.asAdmin(http.MethodPost, "/api/v1/admin/products/import", &buf, header{"Content-Type", w.FormDataContentType()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["imported"])

	products, err := env.store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, products[0].Name, products[1].Name)
	assert.True(t, products[0].Price.Equal(products[1].Price))
}

func TestImportProducts_NotAnArray(t *testing.T) {
	env := newTestEnv(t)
	rec := env.asAdmin(http.MethodPost, "/api/v1/admin/products/import", jsonBody(t, gin.H{"name": "x"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Import must be a JSON array of products", decode(t, rec)["error"])
}
