package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jmb-server/models"
	"jmb-server/services"
)

type jobInput struct {
	Title       *string `json:"title" form:"title"`
	Location    *string `json:"location" form:"location"`
	Description *string `json:"description" form:"description"`
	ImageURL    *string `json:"image_url" form:"image_url"`
	Image       *string `json:"image" form:"-"`
	SortOrder   *int    `json:"sort_order" form:"sort_order"`
	IsActive    *bool   `json:"is_active" form:"is_active"`
}

func (in jobInput) apply(j *models.CompletedJob) {
	if in.Title != nil {
		j.Title = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		j.Location = strings.TrimSpace(*in.Location)
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		j.Description = &description
		if description == "" {
			j.Description = nil
		}
	}
	if in.ImageURL != nil {
		j.Image = strings.TrimSpace(*in.ImageURL)
	} else if in.Image != nil {
		j.Image = strings.TrimSpace(*in.Image)
	}
	if in.SortOrder != nil {
		j.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		j.IsActive = *in.IsActive
	}
}

func validateJob(j models.CompletedJob) error {
	switch {
	case j.Title == "":
		return validationError("title", "Job title is required")
	case j.Location == "":
		return validationError("location", "Job location is required")
	case j.Image == "":
		return validationError("image", "Job image is required")
	}
	return nil
}

func (h *Handler) bindJob(c *gin.Context, j *models.CompletedJob) bool {
	var in jobInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	in.apply(j)

	data, filename, present, err := readFormImage(c, "image")
	if err != nil {
		h.respondError(c, err, "Failed to read upload")
		return false
	}
	if present {
		url, err := services.UploadImage(c.Request.Context(), h.Images, data, services.FolderJobs, filename)
		if err != nil {
			h.respondError(c, err, "Failed to upload image")
			return false
		}
		j.Image = url
	}

	if err := validateJob(*j); err != nil {
		h.respondError(c, err, "Invalid job")
		return false
	}
	return true
}

// GetCompletedJobs returns the public gallery
func (h *Handler) GetCompletedJobs(c *gin.Context) {
	jobs, err := h.Jobs.ListActiveCompletedJobs(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch completed jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) GetAdminCompletedJobs(c *gin.Context) {
	jobs, err := h.Jobs.ListCompletedJobs(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch completed jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

// CreateCompletedJob appends a job to the end of the gallery
func (h *Handler) CreateCompletedJob(c *gin.Context) {
	job := models.CompletedJob{IsActive: true}
	if !h.bindJob(c, &job) {
		return
	}
	if err := h.Jobs.CreateCompletedJob(c.Request.Context(), &job); err != nil {
		h.respondError(c, err, "Failed to create completed job")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Completed job created successfully", "job": job})
}

func (h *Handler) UpdateCompletedJob(c *gin.Context) {
	id, ok := parseID(c, "job")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	job, err := h.Jobs.GetCompletedJob(ctx, id)
	if err != nil {
		h.lookupError(c, err, "Completed job", "Failed to fetch completed job")
		return
	}
	previousImage := job.Image
	if !h.bindJob(c, &job) {
		return
	}
	if err := h.Jobs.UpdateCompletedJob(ctx, &job); err != nil {
		h.lookupError(c, err, "Completed job", "Failed to update completed job")
		return
	}
	if job.Image != previousImage {
		h.releaseImage(ctx, previousImage)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Completed job updated successfully", "job": job})
}

// DeleteCompletedJob removes a job. Remaining sort orders are left as is.
func (h *Handler) DeleteCompletedJob(c *gin.Context) {
	id, ok := parseID(c, "job")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	job, err := h.Jobs.GetCompletedJob(ctx, id)
	if err != nil {
		h.lookupError(c, err, "Completed job", "Failed to fetch completed job")
		return
	}
	if err := h.Jobs.DeleteCompletedJob(ctx, id); err != nil {
		h.lookupError(c, err, "Completed job", "Failed to delete completed job")
		return
	}
	h.releaseImage(ctx, job.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Completed job deleted successfully"})
}
