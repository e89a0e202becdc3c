package models

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageContentType is the content type all uploads are stored with
const ImageContentType = "image/jpeg"

// Image represents an uploaded image belonging to a gallery
type Image struct {
	GalleryCode string     `json:"galleryCode" db:"gallery_code" validate:"required"`
	ImageID     string     `json:"imageId" db:"image_id" validate:"required"`
	FileName    string     `json:"fileName" db:"file_name"`
	S3Key       string     `json:"s3Key,omitempty" db:"s3_key"`
	S3URL       string     `json:"s3Url,omitempty" db:"s3_url"`
	UploadDate  *time.Time `json:"uploadDate,omitempty" db:"upload_date"`
	Selected    bool       `json:"selected" db:"selected"`
	Size        int64      `json:"size" db:"size"`
}

// NewImageID returns an image identifier such as IMG-1A2B3C4D
func NewImageID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "IMG-" + strings.ToUpper(hex[:8])
}

// NewImage creates an unselected image record uploaded at the given time
func NewImage(galleryCode, imageID, fileName, key string, size int64, uploadedAt time.Time) *Image {
	uploadedAt = uploadedAt.UTC()
	return &Image{
		GalleryCode: galleryCode,
		ImageID:     imageID,
		FileName:    fileName,
		S3Key:       key,
		UploadDate:  &uploadedAt,
		Selected:    false,
		Size:        size,
	}
}

// ImageObjectKey builds the object key <prefix>/<code>/<imageId>.jpg
func ImageObjectKey(prefix, galleryCode, imageID string) string {
	return path.Join(strings.Trim(prefix, "/"), galleryCode, imageID+".jpg")
}

// GalleryObjectPrefix returns the key prefix holding all of a gallery's objects
func GalleryObjectPrefix(prefix, galleryCode string) string {
	return path.Join(strings.Trim(prefix, "/"), galleryCode) + "/"
}

// DefaultImageFileName names an upload that arrived without a file name
func DefaultImageFileName(index int) string {
	return fmt.Sprintf("image_%d.jpg", index)
}

// Validate validates the image data
func (i *Image) Validate() error {
	if err := ValidateRequired(i.GalleryCode, "gallery code"); err != nil {
		return err
	}

	if err := ValidateRequired(i.ImageID, "image ID"); err != nil {
		return err
	}

	if i.Size < 0 {
		return fmt.Errorf("image size cannot be negative")
	}

	return nil
}

// UploadedAt formats the upload date, or returns nil when it is unknown
func (i *Image) UploadedAt() *string {
	if i.UploadDate == nil {
		return nil
	}
	s := i.UploadDate.UTC().Format(time.RFC3339)
	return &s
}

// ImageLess orders images with a known upload date first, oldest first, then by id
func ImageLess(a, b *Image) bool {
	if (a.UploadDate == nil) != (b.UploadDate == nil) {
		return a.UploadDate != nil
	}
	if a.UploadDate != nil && !a.UploadDate.Equal(*b.UploadDate) {
		return a.UploadDate.Before(*b.UploadDate)
	}
	return a.ImageID < b.ImageID
}
