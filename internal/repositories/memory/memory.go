// Package memory provides map-backed repositories for tests and local runs
// that should not touch a database file.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"
)

// RepositoryManager holds in-memory repositories sharing one lock
type RepositoryManager struct {
	mu        sync.RWMutex
	galleries map[string]models.Gallery
	images    map[string]map[string]models.Image
	contacts  map[string]models.Contact
	curation  map[string][]models.CurationRecord
}

// NewRepositoryManager creates an empty in-memory repository manager
func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{
		galleries: make(map[string]models.Gallery),
		images:    make(map[string]map[string]models.Image),
		contacts:  make(map[string]models.Contact),
		curation:  make(map[string][]models.CurationRecord),
	}
}

var _ repositories.RepositoryManager = (*RepositoryManager)(nil)

// Galleries returns the gallery repository
func (m *RepositoryManager) Galleries() repositories.GalleryRepository { return galleryRepo{m} }

// Images returns the image repository
func (m *RepositoryManager) Images() repositories.ImageRepository { return imageRepo{m} }

// Contacts returns the contact repository
func (m *RepositoryManager) Contacts() repositories.ContactRepository { return contactRepo{m} }

// Curation returns the curation repository
func (m *RepositoryManager) Curation() repositories.CurationRepository { return curationRepo{m} }

// Close is a no-op
func (m *RepositoryManager) Close() error { return nil }

// Health always succeeds
func (m *RepositoryManager) Health(ctx context.Context) error { return ctx.Err() }

type galleryRepo struct{ m *RepositoryManager }

func (r galleryRepo) Create(ctx context.Context, gallery *models.Gallery) error {
	if err := gallery.Validate(); err != nil {
		return repositories.ValidationError("gallery", gallery.GalleryCode, err)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.galleries[gallery.GalleryCode]; ok {
		return repositories.DuplicateError("gallery", "galleryCode", gallery.GalleryCode)
	}
	r.m.galleries[gallery.GalleryCode] = *gallery
	return nil
}

func (r galleryRepo) GetByCode(ctx context.Context, code string) (*models.Gallery, error) {
	if strings.TrimSpace(code) == "" {
		return nil, repositories.NewRepositoryError("get", "gallery", code, repositories.ErrInvalidID)
	}

	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	g, ok := r.m.galleries[code]
	if !ok {
		return nil, repositories.NotFoundError("gallery", code)
	}
	return &g, nil
}

func (r galleryRepo) Delete(ctx context.Context, code string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.galleries[code]; !ok {
		return repositories.NotFoundError("gallery", code)
	}
	delete(r.m.galleries, code)
	return nil
}

func (r galleryRepo) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Gallery, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var out []*models.Gallery
	for _, g := range r.m.galleries {
		if g.CreatedAt.Before(cutoff) {
			g := g
			out = append(out, &g)
		}
	}
	return out, nil
}

func (r galleryRepo) AddImages(ctx context.Context, code string, delta int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	g, ok := r.m.galleries[code]
	if !ok {
		return repositories.NotFoundError("gallery", code)
	}
	g.ImageCount += delta
	if g.ImageCount < 0 {
		g.ImageCount = 0
	}
	r.m.galleries[code] = g
	return nil
}

type imageRepo struct{ m *RepositoryManager }

func (r imageRepo) Create(ctx context.Context, image *models.Image) error {
	if err := image.Validate(); err != nil {
		return repositories.ValidationError("image", image.ImageID, err)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	byID, ok := r.m.images[image.GalleryCode]
	if !ok {
		byID = make(map[string]models.Image)
		r.m.images[image.GalleryCode] = byID
	}
	byID[image.ImageID] = *image
	return nil
}

func (r imageRepo) ListByGallery(ctx context.Context, galleryCode string) ([]*models.Image, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := make([]*models.Image, 0, len(r.m.images[galleryCode]))
	for _, img := range r.m.images[galleryCode] {
		img := img
		out = append(out, &img)
	}
	return out, nil
}

func (r imageRepo) DeleteByGallery(ctx context.Context, galleryCode string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n := len(r.m.images[galleryCode])
	delete(r.m.images, galleryCode)
	return n, nil
}

type contactRepo struct{ m *RepositoryManager }

func (r contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if err := contact.Validate(); err != nil {
		return repositories.ValidationError("contact", contact.ID, err)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.contacts[contact.ID]; ok {
		return repositories.DuplicateError("contact", "id", contact.ID)
	}
	r.m.contacts[contact.ID] = *contact
	return nil
}

func (r contactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	c, ok := r.m.contacts[id]
	if !ok {
		return nil, repositories.NotFoundError("contact", id)
	}
	return &c, nil
}

type curationRepo struct{ m *RepositoryManager }

func (r curationRepo) Record(ctx context.Context, record *models.CurationRecord) error {
	if err := record.Validate(); err != nil {
		return repositories.ValidationError("curation", record.RecordID, err)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	rec := *record
	rec.AssetIDs = append([]string(nil), record.AssetIDs...)
	r.m.curation[record.GalleryID] = append(r.m.curation[record.GalleryID], rec)
	return nil
}

func (r curationRepo) ListByGallery(ctx context.Context, galleryID string) ([]*models.CurationRecord, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	records := r.m.curation[galleryID]
	out := make([]*models.CurationRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		out = append(out, &rec)
	}
	return out, nil
}
