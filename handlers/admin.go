package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jmb-server/models"
	"jmb-server/utils"
)

// AdminDashboard returns back-office counters
func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := h.Stats.DashboardStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load dashboard")
		return
	}

	admin := c.MustGet(contextAdmin).(models.AdminUser)
	c.JSON(http.StatusOK, gin.H{
		"user":  adminView(admin),
		"stats": stats,
	})
}

// Root sends ?page=admin visitors to the admin entry point.
func (h *Handler) Root(c *gin.Context) {
	if utils.IsAdminRoute(c.Request.URL.Path, c.Request.URL.Query(), "") {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": "jmb-server", "status": "ok"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
