package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

// ImageHandler handles image upload and listing
type ImageHandler struct {
	images services.ImageService
	logger *logrus.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images services.ImageService, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// UploadResponse reports the outcome of every image in a batch
type UploadResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Images  []services.UploadedImage `json:"images"`
}

// ListImagesRequest names the gallery to list
type ListImagesRequest struct {
	GalleryCode string `json:"galleryCode"`
}

// ListImagesResponse lists a gallery's images
type ListImagesResponse struct {
	Success     bool                 `json:"success"`
	GalleryCode string               `json:"galleryCode,omitempty"`
	Message     string               `json:"message,omitempty"`
	Count       int                  `json:"count"`
	Images      []services.ImageView `json:"images"`
}

// Handle routes uploads by path and everything else to the listing
func (h *ImageHandler) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	if req.IsMethod(http.MethodOptions) {
		return lambda.Preflight()
	}
	if strings.HasSuffix(strings.TrimRight(req.Path, "/"), "/upload") || strings.HasSuffix(req.Resource, "/upload") {
		if !req.IsMethod(http.MethodPost) {
			return methodNotAllowed()
		}
		return h.HandleUpload(ctx, req)
	}
	return h.HandleList(ctx, req)
}

// @Summary Upload images
// @Description Stores base64 images (optionally data-URL prefixed) in a gallery. Failing images are reported in place.
// @Tags images
// @Accept json
// @Produce json
// @Param upload body services.UploadImagesRequest true "Images to upload"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /images/upload [post]
func (h *ImageHandler) HandleUpload(ctx context.Context, req *lambda.Request) *lambda.Response {
	var body services.UploadImagesRequest
	if err := decodeBody(req, &body); err != nil && !errors.Is(err, errEmptyBody) {
		return badRequest("Invalid request body")
	}

	result, err := h.images.Upload(ctx, &body)
	switch {
	case errors.Is(err, services.ErrGalleryCodeRequired):
		return badRequest("Gallery code is required")
	case errors.Is(err, services.ErrNoImages):
		return badRequest("No images provided")
	case err != nil:
		h.logger.WithError(err).Error("Image upload failed")
		return failure(http.StatusInternalServerError, fmt.Sprintf("Server error: %v", err))
	}

	return lambda.JSON(http.StatusOK, UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Uploaded %d of %d images", result.Uploaded, result.Requested),
		Images:  result.Images,
	})
}

// @Summary List gallery images
// @Description Lists a gallery's images in upload order with signed or public URLs. POST reads the gallery code from the body.
// @Tags images
// @Accept json
// @Produce json
// @Param galleryCode query string false "Gallery code"
// @Success 200 {object} ListImagesResponse
// @Failure 400 {object} ListImagesResponse
// @Failure 500 {object} ErrorResponse
// @Router /images [get]
func (h *ImageHandler) HandleList(ctx context.Context, req *lambda.Request) *lambda.Response {
	var code string
	if req.IsMethod(http.MethodPost) {
		var body ListImagesRequest
		_ = decodeBody(req, &body)
		code = body.GalleryCode
	} else {
		code = req.QueryParam("galleryCode")
	}
	code = strings.TrimSpace(code)

	images, err := h.images.List(ctx, code)
	switch {
	case errors.Is(err, services.ErrGalleryCodeRequired):
		return lambda.JSON(http.StatusBadRequest, ListImagesResponse{
			Success: false,
			Message: "galleryCode is required",
			Images:  []services.ImageView{},
		})
	case err != nil:
		h.logger.WithError(err).Error("Image listing failed")
		return failure(http.StatusInternalServerError, "Internal Server Error")
	}

	return lambda.JSON(http.StatusOK, ListImagesResponse{
		Success:     true,
		GalleryCode: code,
		Count:       len(images),
		Images:      images,
	})
}
