package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jmb-server/models"
)

// GetProducts lists the active catalog, newest first. On failure it still
// answers with an empty list so the storefront can render its empty state.
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.Products.ListActiveProducts(c.Request.Context())
	if err != nil {
		h.Logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to fetch products",
			"products": []models.Product{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one active product
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	product, err := h.Products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "Product", "Failed to fetch product")
		return
	}
	if !product.IsActive {
		notFound(c, "Product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}
