package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jmb-server/database"
	"jmb-server/services"
)

// respondError maps err onto an HTTP status. fallback is the message used
// for unexpected failures, which are logged.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
	case errors.Is(err, services.ErrImageStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
	default:
		h.Logger.Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// notFound answers 404 with a resource specific message.
func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// lookupError answers 404 for missing rows and defers to respondError
// otherwise.
func (h *Handler) lookupError(c *gin.Context, err error, what, fallback string) {
	if errors.Is(err, database.ErrNotFound) {
		notFound(c, what)
		return
	}
	h.respondError(c, err, fallback)
}
