package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jmb-server/models"
	"jmb-server/services"
)

// GetAdminOrders lists orders newest first
func (h *Handler) GetAdminOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// GetAdminOrder returns an order with its items
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "Order", "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !models.IsValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Invalid order status",
			"valid_statuses": models.OrderStatuses,
		})
		return
	}

	order, err := h.Orders.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		h.lookupError(c, err, "Order", "Failed to update order status")
		return
	}

	h.Logger.Info("Order status updated", zap.String("order_id", order.ID.String()), zap.String("status", status))
	if h.Feed != nil {
		h.Feed.Publish(services.EventOrderUpdated, order)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// ResendOrderEmail repeats the order notification email
func (h *Handler) ResendOrderEmail(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}
	placed, err := h.Placer.ResendOrderEmail(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err, "Order", "Failed to resend order email")
		return
	}

	resp := gin.H{"message": "Order email sent", "order": placed.Order}
	if placed.MailtoURL != "" {
		resp["message"] = "Email relay unavailable, use the mailto link"
		resp["mailto_url"] = placed.MailtoURL
	}
	c.JSON(http.StatusOK, resp)
}

// OrderFeed upgrades to a websocket that streams order events
func (h *Handler) OrderFeed(c *gin.Context) {
	if err := h.Feed.Serve(c.Writer, c.Request); err != nil {
		h.Logger.Warn("Order feed connection failed", zap.Error(err))
	}
}
