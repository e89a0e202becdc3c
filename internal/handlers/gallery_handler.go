package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

// GalleryHandler handles gallery creation and deletion
type GalleryHandler struct {
	galleries services.GalleryService
	logger    *logrus.Logger
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(galleries services.GalleryService, logger *logrus.Logger) *GalleryHandler {
	return &GalleryHandler{galleries: galleries, logger: logger}
}

// CreateGalleryResponse carries the one-time credentials of a new gallery
type CreateGalleryResponse struct {
	Success     bool   `json:"success"`
	GalleryCode string `json:"galleryCode"`
	Password    string `json:"password"`
	Message     string `json:"message"`
}

// DeleteGalleryRequest names the gallery to delete
type DeleteGalleryRequest struct {
	GalleryCode string `json:"galleryCode"`
}

// DeleteGalleryResponse reports what a deletion removed
type DeleteGalleryResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Deleted models.DeletionCounts `json:"deleted"`
}

// Handle dispatches on the request method
func (h *GalleryHandler) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	switch {
	case req.IsMethod(http.MethodOptions):
		return lambda.Preflight()
	case req.IsMethod(http.MethodPost):
		return h.HandleCreate(ctx, req)
	case req.IsMethod(http.MethodDelete):
		return h.HandleDelete(ctx, req)
	default:
		return methodNotAllowed()
	}
}

// @Summary Create a gallery
// @Description Creates a pending gallery and returns its code and password. The password is shown only once.
// @Tags galleries
// @Accept json
// @Produce json
// @Param gallery body services.CreateGalleryRequest true "Client details"
// @Success 200 {object} CreateGalleryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /galleries [post]
func (h *GalleryHandler) HandleCreate(ctx context.Context, req *lambda.Request) *lambda.Response {
	var body services.CreateGalleryRequest
	if err := decodeBody(req, &body); err != nil {
		return badRequest("Invalid request body")
	}

	result, err := h.galleries.CreateGallery(ctx, &body)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return badRequest(err.Error())
		}
		h.logger.WithError(err).Error("Failed to create gallery")
		return failure(http.StatusInternalServerError, "Failed to create gallery")
	}

	return lambda.JSON(http.StatusOK, CreateGalleryResponse{
		Success:     true,
		GalleryCode: result.GalleryCode,
		Password:    result.Password,
		Message:     fmt.Sprintf("Gallery created for %s", result.ClientName),
	})
}

// @Summary Delete a gallery
// @Description Removes a gallery's stored images, image records and gallery record. Each step runs even if an earlier one failed.
// @Tags galleries
// @Accept json
// @Produce json
// @Param gallery body DeleteGalleryRequest true "Gallery to delete"
// @Success 200 {object} DeleteGalleryResponse
// @Failure 400 {object} ErrorResponse
// @Router /galleries [delete]
func (h *GalleryHandler) HandleDelete(ctx context.Context, req *lambda.Request) *lambda.Response {
	var body DeleteGalleryRequest
	_ = decodeBody(req, &body)

	counts, err := h.galleries.DeleteGallery(ctx, body.GalleryCode)
	if err != nil {
		if errors.Is(err, services.ErrGalleryCodeRequired) {
			return badRequest("Gallery code is required")
		}
		h.logger.WithError(err).Error("Failed to delete gallery")
		return failure(http.StatusInternalServerError, "Error deleting gallery")
	}

	return lambda.JSON(http.StatusOK, DeleteGalleryResponse{
		Success: true,
		Message: fmt.Sprintf("Gallery %s deleted successfully", body.GalleryCode),
		Deleted: *counts,
	})
}
