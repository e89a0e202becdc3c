package services

import (
	"context"
	"time"

	"gallery-delivery-api/internal/models"
)

// GalleryService defines the gallery lifecycle operations
type GalleryService interface {
	CreateGallery(ctx context.Context, req *CreateGalleryRequest) (*CreateGalleryResult, error)
	Authenticate(ctx context.Context, galleryCode, password string) (*AuthResult, error)
	DeleteGallery(ctx context.Context, galleryCode string) (*models.DeletionCounts, error)
	Cleanup(ctx context.Context) (*models.CleanupSummary, error)
}

// ImageService defines image upload and listing
type ImageService interface {
	Upload(ctx context.Context, req *UploadImagesRequest) (*UploadResult, error)
	List(ctx context.Context, galleryCode string) ([]ImageView, error)
}

// ContactService defines contact-form intake
type ContactService interface {
	Submit(ctx context.Context, req *ContactRequest) (*models.Contact, error)
}

// TokenIssuer mints a session token scoped to one gallery
type TokenIssuer interface {
	IssueGalleryToken(galleryCode string) (string, error)
}

// Clock returns the current time
type Clock func() time.Time

// Gallery service types
type CreateGalleryRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Package string `json:"package,omitempty" validate:"max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
}

type CreateGalleryResult struct {
	GalleryCode string `json:"galleryCode"`
	Password    string `json:"password"`
	ClientName  string `json:"clientName"`
}

type AuthResult struct {
	Gallery models.GallerySummary `json:"gallery"`
	Token   string                `json:"token"`
}

// Image service types
type UploadImagesRequest struct {
	GalleryCode string        `json:"galleryCode"`
	Images      []ImageUpload `json:"images"`
}

type ImageUpload struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// UploadedImage reports the outcome of one image in a batch
type UploadedImage struct {
	ImageID  string `json:"imageId,omitempty"`
	FileName string `json:"fileName"`
	S3Key    string `json:"s3Key,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type UploadResult struct {
	Images    []UploadedImage `json:"images"`
	Requested int             `json:"requested"`
	Uploaded  int             `json:"uploaded"`
}

// ImageView is the client-facing listing entry; URL and UploadedAt may be null
type ImageView struct {
	ImageID    string  `json:"imageId"`
	URL        *string `json:"url"`
	UploadedAt *string `json:"uploadedAt"`
}

// Contact service types
type ContactRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Service string `json:"service" validate:"max=200"`
	Message string `json:"message" validate:"max=5000"`
}
