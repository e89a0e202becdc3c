package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/curation"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"
)

// CurationJournal persists curation effects through a CurationRepository
type CurationJournal struct {
	repo   repositories.CurationRepository
	logger *logrus.Logger
}

var _ curation.Journal = (*CurationJournal)(nil)

// NewCurationJournal creates a journal backed by repo
func NewCurationJournal(repo repositories.CurationRepository, logger *logrus.Logger) *CurationJournal {
	if logger == nil {
		logger = logrus.New()
	}
	return &CurationJournal{repo: repo, logger: logger}
}

// Record stores one effect. Trash effects expire after their TTL.
func (j *CurationJournal) Record(ctx context.Context, effect curation.Effect) error {
	record := models.NewCurationRecord(effect.GalleryID, string(effect.Operation), effect.At)
	record.FolderID = effect.FolderID
	record.AssetIDs = append([]string(nil), effect.AssetIDs...)
	if effect.Operation == curation.OpTrash {
		record.SetTrashTTL(effect.TTLDays)
	}

	if err := j.repo.Record(ctx, record); err != nil {
		return fmt.Errorf("failed to journal %s: %w", effect.Operation, err)
	}

	j.logger.WithFields(logrus.Fields{
		"gallery_id": effect.GalleryID,
		"operation":  effect.Operation,
		"assets":     len(effect.AssetIDs),
	}).Debug("Curation effect recorded")
	return nil
}
