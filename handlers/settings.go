package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jmb-server/database"
	"jmb-server/models"
	"jmb-server/services"
)

// GetContactEmail returns the address orders and messages are sent to
func (h *Handler) GetContactEmail(c *gin.Context) {
	email, err := h.Settings.GetSetting(c.Request.Context(), models.SettingContactEmail)
	if errors.Is(err, database.ErrNotFound) || (err == nil && strings.TrimSpace(email) == "") {
		email = models.DefaultContactEmail
	} else if err != nil {
		h.respondError(c, err, "Failed to fetch contact email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact_email": email})
}

func (h *Handler) UpdateContactEmail(c *gin.Context) {
	var req struct {
		ContactEmail string `json:"contact_email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact email is required"})
		return
	}
	email := strings.TrimSpace(req.ContactEmail)
	if !services.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	}

	if err := h.Settings.SetSetting(c.Request.Context(), models.SettingContactEmail, email); err != nil {
		h.respondError(c, err, "Failed to update contact email")
		return
	}
	h.Logger.Info("Contact email updated", zap.String("contact_email", email))
	c.JSON(http.StatusOK, gin.H{"message": "Contact email updated successfully", "contact_email": email})
}
