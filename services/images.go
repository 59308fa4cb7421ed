package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the upload ceiling for product and gallery photos.
const MaxImageSize = 5 << 20

var (
	ErrImageTooLarge    = &ValidationError{Field: "image", Message: "Image must be 5MB or smaller"}
	ErrUnsupportedImage = &ValidationError{Field: "image", Message: "Image must be a JPEG or PNG file"}
	ErrEmptyImage       = &ValidationError{Field: "image", Message: "Image file is empty"}

	// ErrImageStoreUnavailable is returned when no object store is configured.
	ErrImageStoreUnavailable = errors.New("image storage is not configured")
)

// Image folders inside the images bucket.
const (
	FolderProducts = "images/products"
	FolderJobs     = "images/jobs"
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// ImageStore uploads images and returns a retrievable URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ValidateImage checks size and sniffed content type. It returns the detected
// MIME type.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedImage
}

// UploadImage validates data and stores it under folder.
func UploadImage(ctx context.Context, store ImageStore, data []byte, folder, filename string) (string, error) {
	if _, err := ValidateImage(data); err != nil {
		return "", err
	}
	if store == nil {
		return "", ErrImageStoreUnavailable
	}
	url, err := store.Upload(ctx, data, folder, filename)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
