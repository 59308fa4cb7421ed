package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jmb-server/services"
)

type checkoutRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerAddress *string `json:"customer_address"`
	Notes           *string `json:"notes"`
}

// Checkout turns the session cart into an order and clears the cart
func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	crt, ok := h.loadCart(c)
	if !ok {
		return
	}
	if crt.IsEmpty() {
		h.respondError(c, services.ErrEmptyCart, "Your cart is empty")
		return
	}

	ctx := c.Request.Context()
	placed, err := h.Placer.PlaceOrder(ctx, services.Customer{
		Name:    req.CustomerName,
		Email:   req.CustomerEmail,
		Phone:   req.CustomerPhone,
		Address: req.CustomerAddress,
		Notes:   req.Notes,
	}, crt.Items())
	if err != nil {
		h.respondError(c, err, "Failed to place order")
		return
	}

	if err := crt.Clear(ctx); err != nil {
		h.Logger.Warn("Failed to clear cart after checkout",
			zap.String("order_id", placed.Order.ID.String()), zap.Error(err))
	}

	resp := gin.H{
		"message": "Order placed successfully",
		"order":   placed.Order,
		"items":   placed.Items,
	}
	if placed.MailtoURL != "" {
		resp["mailto_url"] = placed.MailtoURL
	}
	c.JSON(http.StatusCreated, resp)
}
