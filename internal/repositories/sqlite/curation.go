package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CurationRepository implements repositories.CurationRepository for SQLite
type CurationRepository struct {
	*BaseRepository[models.CurationRecord]
}

// NewCurationRepository creates a new SQLite curation repository
func NewCurationRepository(db *sql.DB, logger *logrus.Logger) repositories.CurationRepository {
	return &CurationRepository{
		BaseRepository: NewBaseRepository[models.CurationRecord](db, "curation_records", "curation", logger),
	}
}

// Record stores a curation effect; asset ids are kept as a JSON array
func (r *CurationRepository) Record(ctx context.Context, rec *models.CurationRecord) error {
	if err := rec.Validate(); err != nil {
		return repositories.ValidationError("curation", rec.RecordID, err)
	}

	assetIDs, err := json.Marshal(rec.AssetIDs)
	if err != nil {
		return repositories.NewRepositoryError("record", "curation", rec.RecordID, err)
	}

	query := `
		INSERT INTO curation_records (
			gallery_id, record_id, operation, folder_id, asset_ids, ttl_days, at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.executeExec(ctx, "record", query,
		rec.GalleryID, rec.RecordID, rec.Operation, rec.FolderID, string(assetIDs), rec.TTLDays, rec.At, rec.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("curation", "recordId", rec.RecordID)
		}
		return err
	}

	return nil
}

// ListByGallery returns a gallery's records ordered by record id
func (r *CurationRepository) ListByGallery(ctx context.Context, galleryID string) ([]*models.CurationRecord, error) {
	query := `
		SELECT gallery_id, record_id, operation, folder_id, asset_ids, ttl_days, at, expires_at
		FROM curation_records
		WHERE gallery_id = ?
		ORDER BY record_id`

	rows, err := r.executeQuery(ctx, "list_by_gallery", query, galleryID)
	if err != nil {
		return nil, err
	}

	records, err := collect(rows, func(rows *sql.Rows) (*models.CurationRecord, error) {
		rec := &models.CurationRecord{}
		var assetIDs string
		if err := rows.Scan(
			&rec.GalleryID, &rec.RecordID, &rec.Operation, &rec.FolderID,
			&assetIDs, &rec.TTLDays, &rec.At, &rec.ExpiresAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(assetIDs), &rec.AssetIDs); err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, repositories.NewRepositoryError("list_by_gallery", "curation", galleryID, err)
	}

	return records, nil
}
