package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/services"
)

// CleanupHandler runs the scheduled retention cleanup
type CleanupHandler struct {
	galleries services.GalleryService
	logger    *logrus.Logger
}

// NewCleanupHandler creates a new cleanup handler
func NewCleanupHandler(galleries services.GalleryService, logger *logrus.Logger) *CleanupHandler {
	return &CleanupHandler{galleries: galleries, logger: logger}
}

// CleanupResponse is the result of one cleanup run
type CleanupResponse struct {
	StatusCode int `json:"statusCode"`
	models.CleanupSummary
}

// Run deletes expired galleries. Failures are reported in the response.
func (h *CleanupHandler) Run(ctx context.Context) *CleanupResponse {
	summary, err := h.galleries.Cleanup(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Cleanup failed")
		return &CleanupResponse{
			StatusCode:     http.StatusInternalServerError,
			CleanupSummary: models.CleanupSummary{Message: fmt.Sprintf("Cleanup failed: %v", err)},
		}
	}

	h.logger.WithFields(logrus.Fields{
		"galleries_deleted": summary.GalleriesDeleted,
		"images_deleted":    summary.ImagesDeleted,
		"cutoff":            summary.CutoffDate,
	}).Info(summary.Message)

	return &CleanupResponse{StatusCode: http.StatusOK, CleanupSummary: *summary}
}
