package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jmb-server/cart"
	"jmb-server/database"
)

const (
	cartCookie       = "cart_session"
	cartHeader       = "X-Cart-Session"
	cartCookieMaxAge = 30 * 24 * 60 * 60
)

// cartSession returns the caller's cart session id, issuing a new one when
// the request carries none.
func (h *Handler) cartSession(c *gin.Context) uuid.UUID {
	raw, err := c.Cookie(cartCookie)
	if err != nil || raw == "" {
		raw = c.GetHeader(cartHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		id = uuid.New()
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id.String(), cartCookieMaxAge, "/", "", h.SecureCookies, true)
	c.Header(cartHeader, id.String())
	return id
}

func (h *Handler) loadCart(c *gin.Context) (*cart.Cart, bool) {
	session := h.cartSession(c)
	crt, err := cart.Load(c.Request.Context(), h.Carts.CartStorage(session), h.Logger)
	if err != nil {
		h.respondError(c, err, "Failed to load cart")
		return nil, false
	}
	return crt, true
}

func cartView(crt *cart.Cart) gin.H {
	return gin.H{
		"items": crt.Items(),
		"total": crt.Total().StringFixed(2),
		"count": crt.Count(),
	}
}

// GetCart returns the session cart
func (h *Handler) GetCart(c *gin.Context) {
	crt, ok := h.loadCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartView(crt)})
}

// AddToCart adds one unit of an active product
func (h *Handler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	ctx := c.Request.Context()
	product, err := h.Products.GetProduct(ctx, productID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && !product.IsActive) {
		notFound(c, "Product")
		return
	}
	if err != nil {
		h.respondError(c, err, "Failed to fetch product")
		return
	}

	crt, ok := h.loadCart(c)
	if !ok {
		return
	}
	item, err := crt.AddItem(ctx, cart.Product{ID: product.ID.String(), Name: product.Name, Price: product.Price})
	if err != nil {
		h.respondError(c, err, "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": product.Name + " added to cart!",
		"item":    item,
		"cart":    cartView(crt),
	})
}

// RemoveFromCart removes a whole line regardless of quantity
func (h *Handler) RemoveFromCart(c *gin.Context) {
	crt, ok := h.loadCart(c)
	if !ok {
		return
	}
	removed, err := crt.RemoveItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to update cart")
		return
	}
	if !removed {
		notFound(c, "Cart item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cartView(crt)})
}

func (h *Handler) ClearCart(c *gin.Context) {
	crt, ok := h.loadCart(c)
	if !ok {
		return
	}
	if err := crt.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "cart": cartView(crt)})
}
