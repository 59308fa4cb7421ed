package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jmb-server/services"
)

var uploadFolders = map[string]string{
	"products": services.FolderProducts,
	"jobs":     services.FolderJobs,
}

// readFormImage reads the multipart file field. It reports false when the
// request carries no such file.
func readFormImage(c *gin.Context, field string) ([]byte, string, bool, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read upload: %w", err)
	}
	if header.Size > services.MaxImageSize {
		return nil, "", true, services.ErrImageTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, "", true, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, services.MaxImageSize+1))
	if err != nil {
		return nil, "", true, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, header.Filename, true, nil
}

// UploadImage stores an image and returns its URL
func (h *Handler) UploadImage(c *gin.Context) {
	folder, ok := uploadFolders[c.DefaultQuery("folder", "products")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder must be products or jobs"})
		return
	}

	data, filename, present, err := readFormImage(c, "image")
	if err == nil && !present {
		data, filename, present, err = readFormImage(c, "file")
	}
	if err != nil {
		h.respondError(c, err, "Failed to read upload")
		return
	}
	if !present {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	url, err := services.UploadImage(c.Request.Context(), h.Images, data, folder, filename)
	if err != nil {
		h.respondError(c, err, "Failed to upload image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// releaseImage removes a replaced or orphaned image from the object store.
// URLs still referenced by another product or job are kept. Failures are
// logged only.
func (h *Handler) releaseImage(ctx context.Context, url string) {
	if h.Images == nil || url == "" || h.imageInUse(ctx, url) {
		return
	}
	if err := h.Images.Delete(ctx, url); err != nil {
		h.Logger.Warn("Failed to delete image", zap.String("url", url), zap.Error(err))
	}
}

// imageInUse reports true when url is still referenced, or when that cannot
// be determined.
func (h *Handler) imageInUse(ctx context.Context, url string) bool {
	products, err := h.Products.ListProducts(ctx)
	if err != nil {
		h.Logger.Warn("Keeping image, product lookup failed", zap.String("url", url), zap.Error(err))
		return true
	}
	for _, p := range products {
		if p.Image == url {
			return true
		}
	}
	jobs, err := h.Jobs.ListCompletedJobs(ctx)
	if err != nil {
		h.Logger.Warn("Keeping image, job lookup failed", zap.String("url", url), zap.Error(err))
		return true
	}
	for _, j := range jobs {
		if j.Image == url {
			return true
		}
	}
	return false
}
