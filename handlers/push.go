package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jmb-server/services"
)

func (h *Handler) pushAvailable(c *gin.Context) bool {
	if h.Push == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
		return false
	}
	return true
}

// GetPushPublicKey returns the VAPID key browsers subscribe with
func (h *Handler) GetPushPublicKey(c *gin.Context) {
	if !h.pushAvailable(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.Push.PublicKey()})
}

func (h *Handler) PushSubscribe(c *gin.Context) {
	if !h.pushAvailable(c) {
		return
	}
	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription"})
		return
	}

	sub, err := h.Push.Subscribe(c.Request.Context(), req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		h.respondError(c, err, "Failed to save subscription")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed to notifications", "id": sub.ID})
}

func (h *Handler) PushUnsubscribe(c *gin.Context) {
	if !h.pushAvailable(c) {
		return
	}
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.Push.Unsubscribe(c.Request.Context(), req.Endpoint); err != nil {
		h.lookupError(c, err, "Subscription", "Failed to remove subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from notifications"})
}

// SendPushNotification broadcasts an admin message to every subscriber
func (h *Handler) SendPushNotification(c *gin.Context) {
	if !h.pushAvailable(c) {
		return
	}
	var msg services.PushMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.Push.Broadcast(c.Request.Context(), msg)
	if err != nil {
		h.respondError(c, err, "Failed to fetch subscriptions")
		return
	}
	c.JSON(http.StatusOK, result)
}
