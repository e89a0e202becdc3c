package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

// AuthHandler handles gallery sign-in
type AuthHandler struct {
	galleries services.GalleryService
	logger    *logrus.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(galleries services.GalleryService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{galleries: galleries, logger: logger}
}

// Credentials are the gallery sign-in fields
type Credentials struct {
	GalleryCode string `json:"galleryCode"`
	Password    string `json:"password"`
}

// AuthResponse is returned on a successful sign-in
type AuthResponse struct {
	Success bool                  `json:"success"`
	Gallery models.GallerySummary `json:"gallery"`
	Token   string                `json:"token"`
}

// @Summary Sign in to a gallery
// @Description Checks a gallery code and password and returns the gallery summary with a session token. GET reads the credentials from the query string.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body Credentials false "Gallery credentials"
// @Param galleryCode query string false "Gallery code (GET)"
// @Param password query string false "Gallery password (GET)"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth [post]
func (h *AuthHandler) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	if req.IsMethod(http.MethodOptions) {
		return lambda.Preflight()
	}

	var creds Credentials
	if req.IsMethod(http.MethodPost) {
		// an unreadable body counts as missing credentials
		_ = decodeBody(req, &creds)
	} else {
		creds.GalleryCode = req.QueryParam("galleryCode")
		creds.Password = req.QueryParam("password")
	}

	result, err := h.galleries.Authenticate(ctx, creds.GalleryCode, creds.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return failure(http.StatusUnauthorized, "Invalid credentials")
	case err != nil:
		h.logger.WithError(err).Error("Authentication failed")
		return failure(http.StatusInternalServerError, "Authentication failed")
	}

	return lambda.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Gallery: result.Gallery,
		Token:   result.Token,
	})
}
