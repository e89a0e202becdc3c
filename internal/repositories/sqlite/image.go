package sqlite

import (
	"context"
	"database/sql"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ImageRepository implements repositories.ImageRepository for SQLite
type ImageRepository struct {
	*BaseRepository[models.Image]
}

// NewImageRepository creates a new SQLite image repository
func NewImageRepository(db *sql.DB, logger *logrus.Logger) repositories.ImageRepository {
	return &ImageRepository{
		BaseRepository: NewBaseRepository[models.Image](db, "images", "image", logger),
	}
}

// Create stores an image record, replacing any record with the same id
func (r *ImageRepository) Create(ctx context.Context, img *models.Image) error {
	if err := img.Validate(); err != nil {
		return repositories.ValidationError("image", img.ImageID, err)
	}

	var uploadDate sql.NullTime
	if img.UploadDate != nil {
		uploadDate = sql.NullTime{Time: img.UploadDate.UTC(), Valid: true}
	}

	query := `
		INSERT OR REPLACE INTO images (
			gallery_code, image_id, file_name, s3_key, s3_url, upload_date, selected, size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		img.GalleryCode,
		img.ImageID,
		img.FileName,
		img.S3Key,
		img.S3URL,
		uploadDate,
		img.Selected,
		img.Size,
	)
	return err
}

// ListByGallery returns all image records for a gallery
func (r *ImageRepository) ListByGallery(ctx context.Context, galleryCode string) ([]*models.Image, error) {
	query := `
		SELECT gallery_code, image_id, file_name, s3_key, s3_url, upload_date, selected, size
		FROM images
		WHERE gallery_code = ?`

	rows, err := r.executeQuery(ctx, "list_by_gallery", query, galleryCode)
	if err != nil {
		return nil, err
	}

	images, err := collect(rows, func(rows *sql.Rows) (*models.Image, error) {
		img := &models.Image{}
		var uploadDate sql.NullTime
		if err := rows.Scan(
			&img.GalleryCode,
			&img.ImageID,
			&img.FileName,
			&img.S3Key,
			&img.S3URL,
			&uploadDate,
			&img.Selected,
			&img.Size,
		); err != nil {
			return nil, err
		}
		if uploadDate.Valid {
			t := uploadDate.Time
			img.UploadDate = &t
		}
		return img, nil
	})
	if err != nil {
		return nil, repositories.NewRepositoryError("list_by_gallery", "image", galleryCode, err)
	}

	return images, nil
}

// DeleteByGallery removes every image record of a gallery
func (r *ImageRepository) DeleteByGallery(ctx context.Context, galleryCode string) (int, error) {
	result, err := r.executeExec(ctx, "delete_by_gallery", `DELETE FROM images WHERE gallery_code = ?`, galleryCode)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, repositories.NewRepositoryError("delete_by_gallery", "image", galleryCode, err)
	}
	return int(n), nil
}
