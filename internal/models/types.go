package models

import (
	"time"
)

// Common constants
const (
	// DefaultRetentionDays is how long a gallery is kept before cleanup
	DefaultRetentionDays = 90

	// DemoGalleryCode and DemoGalleryPassword unlock the built-in demo gallery
	DemoGalleryCode     = "DEMO2025"
	DemoGalleryPassword = "preview"
)

// DemoGallery returns the built-in gallery shown to prospective clients
func DemoGallery(now time.Time) *Gallery {
	gallery := NewGallery(DemoGalleryCode, "Demo Client", now, DefaultRetentionDays*24*time.Hour)
	gallery.SessionType = "Premium Portrait Session"
	gallery.ImageCount = 12
	gallery.Status = GalleryStatusActive
	return gallery
}

// CleanupSummary describes one run of the retention cleanup
type CleanupSummary struct {
	Message          string   `json:"message"`
	DeletedGalleries []string `json:"deletedGalleries"`
	GalleriesDeleted int      `json:"galleriesDeleted"`
	ImagesDeleted    int      `json:"imagesDeleted"`
	CutoffDate       string   `json:"cutoffDate"`
}

// DeletionCounts reports what a gallery deletion removed
type DeletionCounts struct {
	Images    int `json:"images"`
	S3Objects int `json:"s3_objects"`
}

// HealthCheck represents system health status
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Mode      string            `json:"mode"`
	Services  map[string]string `json:"services"`
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}
