package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const galleryColumns = `gallery_code, password_hash, client_name, email, phone, session_type,
	booking_date, booking_time, created_at, expires_at, image_count, status`

// GalleryRepository implements repositories.GalleryRepository for SQLite
type GalleryRepository struct {
	*BaseRepository[models.Gallery]
}

// NewGalleryRepository creates a new SQLite gallery repository
func NewGalleryRepository(db *sql.DB, logger *logrus.Logger) repositories.GalleryRepository {
	return &GalleryRepository{
		BaseRepository: NewBaseRepository[models.Gallery](db, "galleries", "gallery", logger),
	}
}

// Create creates a new gallery
func (r *GalleryRepository) Create(ctx context.Context, g *models.Gallery) error {
	if err := g.Validate(); err != nil {
		return repositories.ValidationError("gallery", g.GalleryCode, err)
	}

	query := `INSERT INTO galleries (` + galleryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		g.GalleryCode,
		g.PasswordHash,
		g.ClientName,
		g.Email,
		g.Phone,
		g.SessionType,
		g.BookingDate,
		g.BookingTime,
		g.CreatedAt.UTC(),
		g.ExpiresAt.UTC(),
		g.ImageCount,
		g.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("gallery", "galleryCode", g.GalleryCode)
		}
		return err
	}

	return nil
}

// GetByCode retrieves a gallery by code
func (r *GalleryRepository) GetByCode(ctx context.Context, code string) (*models.Gallery, error) {
	if err := r.validateID(code); err != nil {
		return nil, err
	}

	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE gallery_code = ?`
	row := r.executeQueryRow(ctx, "get_by_code", query, code)

	g, err := scanGallery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("gallery", code)
		}
		return nil, repositories.NewRepositoryError("get_by_code", "gallery", code, err)
	}

	return g, nil
}

// Delete deletes a gallery by code
func (r *GalleryRepository) Delete(ctx context.Context, code string) error {
	if err := r.validateID(code); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "delete", `DELETE FROM galleries WHERE gallery_code = ?`, code)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", code)
}

// ListCreatedBefore returns galleries created before cutoff
func (r *GalleryRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE created_at < ? ORDER BY created_at`

	rows, err := r.executeQuery(ctx, "list_created_before", query, cutoff.UTC())
	if err != nil {
		return nil, err
	}

	galleries, err := collect(rows, func(rows *sql.Rows) (*models.Gallery, error) { return scanGallery(rows) })
	if err != nil {
		return nil, repositories.NewRepositoryError("list_created_before", "gallery", "", err)
	}
	return galleries, nil
}

// AddImages adjusts the stored image count
func (r *GalleryRepository) AddImages(ctx context.Context, code string, delta int) error {
	query := `UPDATE galleries SET image_count = MAX(image_count + ?, 0) WHERE gallery_code = ?`

	result, err := r.executeExec(ctx, "add_images", query, delta, code)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "add_images", code)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGallery(row rowScanner) (*models.Gallery, error) {
	g := &models.Gallery{}
	err := row.Scan(
		&g.GalleryCode,
		&g.PasswordHash,
		&g.ClientName,
		&g.Email,
		&g.Phone,
		&g.SessionType,
		&g.BookingDate,
		&g.BookingTime,
		&g.CreatedAt,
		&g.ExpiresAt,
		&g.ImageCount,
		&g.Status,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
