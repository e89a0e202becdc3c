package models

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// CurationRecord is a journaled curation effect for one gallery
type CurationRecord struct {
	GalleryID string   `json:"galleryId" db:"gallery_id"`
	RecordID  string   `json:"recordId" db:"record_id"`
	Operation string   `json:"operation" db:"operation"`
	FolderID  string   `json:"folderId,omitempty" db:"folder_id"`
	AssetIDs  []string `json:"assetIds" db:"asset_ids"`
	TTLDays   int      `json:"ttlDays,omitempty" db:"ttl_days"`
	At        int64    `json:"at" db:"at"`
	ExpiresAt int64    `json:"expiresAt,omitempty" db:"expires_at"`
}

// NewCurationRecord creates a record whose sort key orders records by time
func NewCurationRecord(galleryID, operation string, at int64) *CurationRecord {
	return &CurationRecord{
		GalleryID: galleryID,
		RecordID:  fmt.Sprintf("%010d#%s#%s", at, operation, uuid.New().String()[:8]),
		Operation: operation,
		At:        at,
	}
}

const secondsPerDay = 24 * 60 * 60

// SetTrashTTL sets the expiry of a trash record ttlDays after it was recorded.
// An expiry past the int64 epoch range is clamped to math.MaxInt64.
func (r *CurationRecord) SetTrashTTL(ttlDays int) {
	r.TTLDays = ttlDays
	if ttlDays <= 0 {
		return
	}
	if int64(ttlDays) > (math.MaxInt64-r.At)/secondsPerDay {
		r.ExpiresAt = math.MaxInt64
		return
	}
	r.ExpiresAt = r.At + int64(ttlDays)*secondsPerDay
}

// Validate validates the curation record
func (r *CurationRecord) Validate() error {
	if r.GalleryID == "" {
		return fmt.Errorf("gallery ID is required")
	}
	if r.RecordID == "" {
		return fmt.Errorf("record ID is required")
	}
	if len(r.AssetIDs) == 0 {
		return fmt.Errorf("at least one asset ID is required")
	}
	return nil
}
