package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jmb-server/models"
	"jmb-server/services"
)

const (
	testimonialLimit = 20
	defaultRating    = 5
)

// SubmitFeedback stores a customer testimonial
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req struct {
		CustomerName  string  `json:"customer_name"`
		CustomerEmail *string `json:"customer_email"`
		Rating        *int    `json:"rating"`
		Message       string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	fb := models.Feedback{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Message:      strings.TrimSpace(req.Message),
		Rating:       defaultRating,
	}
	if req.Rating != nil {
		fb.Rating = *req.Rating
	}
	if req.CustomerEmail != nil {
		if email := strings.TrimSpace(*req.CustomerEmail); email != "" {
			fb.CustomerEmail = &email
		}
	}

	switch {
	case fb.CustomerName == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	case fb.Message == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	case fb.Rating < 1 || fb.Rating > 5:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	case fb.CustomerEmail != nil && !services.IsValidEmail(*fb.CustomerEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	}

	if err := h.Feedback.CreateFeedback(c.Request.Context(), &fb); err != nil {
		h.respondError(c, err, "Failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your feedback!", "feedback": fb.Testimonial()})
}

// GetTestimonials returns the latest feedback for the storefront
func (h *Handler) GetTestimonials(c *gin.Context) {
	feedback, err := h.Feedback.ListFeedback(c.Request.Context(), testimonialLimit)
	if err != nil {
		h.respondError(c, err, "Failed to fetch feedback")
		return
	}
	testimonials := make([]models.Testimonial, 0, len(feedback))
	for _, f := range feedback {
		testimonials = append(testimonials, f.Testimonial())
	}
	c.JSON(http.StatusOK, gin.H{"feedback": testimonials})
}

func (h *Handler) GetAdminFeedback(c *gin.Context) {
	feedback, err := h.Feedback.ListFeedback(c.Request.Context(), 0)
	if err != nil {
		h.respondError(c, err, "Failed to fetch feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback, "total": len(feedback)})
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	id, ok := parseID(c, "feedback")
	if !ok {
		return
	}
	if err := h.Feedback.DeleteFeedback(c.Request.Context(), id); err != nil {
		h.lookupError(c, err, "Feedback", "Failed to delete feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
