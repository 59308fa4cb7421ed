package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jmb-server/models"
	"jmb-server/services"
)

// SubmitContact stores a contact form message and relays it by email
func (h *Handler) SubmitContact(c *gin.Context) {
	var req struct {
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Phone   *string `json:"phone"`
		Service *string `json:"service"`
		Message string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sub := models.ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   trimmedOrNil(req.Phone),
		Service: trimmedOrNil(req.Service),
		Message: strings.TrimSpace(req.Message),
	}
	switch {
	case sub.Name == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	case sub.Email == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	case !services.IsValidEmail(sub.Email):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	case sub.Message == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Contact.CreateContactSubmission(ctx, &sub); err != nil {
		h.respondError(c, err, "Failed to send message")
		return
	}

	resp := gin.H{"message": "Thank you! We'll get back to you soon.", "submission": sub}
	if mailto := h.Mailer.Deliver(ctx, contactEmail(sub)); mailto != "" {
		resp["mailto_url"] = mailto
	}
	c.JSON(http.StatusCreated, resp)
}

func contactEmail(s models.ContactSubmission) services.Email {
	service := "General enquiry"
	if s.Service != nil {
		service = *s.Service
	}
	phone := "Not provided"
	if s.Phone != nil {
		phone = *s.Phone
	}
	return services.Email{
		Subject: "New contact message from " + s.Name,
		ReplyTo: s.Email,
		Fields: []services.Field{
			{Name: "Name", Value: s.Name},
			{Name: "Email", Value: s.Email},
			{Name: "Phone", Value: phone},
			{Name: "Service", Value: service},
			{Name: "Message", Value: s.Message},
		},
	}
}

func (h *Handler) GetContactSubmissions(c *gin.Context) {
	subs, err := h.Contact.ListContactSubmissions(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch contact submissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs, "total": len(subs)})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
