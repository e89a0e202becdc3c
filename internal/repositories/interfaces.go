package repositories

import (
	"context"
	"time"

	"gallery-delivery-api/internal/models"
)

// GalleryRepository defines operations on client galleries
type GalleryRepository interface {
	// Create stores a new gallery; an existing code yields a duplicate error
	Create(ctx context.Context, gallery *models.Gallery) error

	// GetByCode retrieves a gallery by its code
	GetByCode(ctx context.Context, code string) (*models.Gallery, error)

	// Delete removes a gallery record
	Delete(ctx context.Context, code string) error

	// ListCreatedBefore returns galleries created strictly before cutoff
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Gallery, error)

	// AddImages adjusts the stored image count by delta
	AddImages(ctx context.Context, code string, delta int) error
}

// ImageRepository defines operations on gallery images
type ImageRepository interface {
	// Create stores an image record
	Create(ctx context.Context, image *models.Image) error

	// ListByGallery returns every image record of a gallery, unordered
	ListByGallery(ctx context.Context, galleryCode string) ([]*models.Image, error)

	// DeleteByGallery removes every image record of a gallery and returns the count
	DeleteByGallery(ctx context.Context, galleryCode string) (int, error)
}

// ContactRepository defines operations on contact-form submissions
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
}

// CurationRepository stores journaled curation effects
type CurationRepository interface {
	Record(ctx context.Context, record *models.CurationRecord) error
	ListByGallery(ctx context.Context, galleryID string) ([]*models.CurationRecord, error)
}

// RepositoryManager provides access to all repositories
type RepositoryManager interface {
	Galleries() GalleryRepository
	Images() ImageRepository
	Contacts() ContactRepository
	Curation() CurationRepository

	// Close closes all repository connections
	Close() error

	// Health checks the health of the repository connections
	Health(ctx context.Context) error
}
