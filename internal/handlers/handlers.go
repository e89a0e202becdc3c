package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

var errEmptyBody = errors.New("request body is empty")

// Handlers bundles the request handlers of every resource
type Handlers struct {
	Auth    *AuthHandler
	Gallery *GalleryHandler
	Image   *ImageHandler
	Contact *ContactHandler
	Cleanup *CleanupHandler
}

// New creates the handlers for a service container
func New(svc *services.ServiceContainer, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handlers{
		Auth:    NewAuthHandler(svc.GalleryService, logger),
		Gallery: NewGalleryHandler(svc.GalleryService, logger),
		Image:   NewImageHandler(svc.ImageService, logger),
		Contact: NewContactHandler(svc.ContactService, logger),
		Cleanup: NewCleanupHandler(svc.GalleryService, logger),
	}
}

// decodeBody unmarshals the request payload into v. A payload the gateway
// already decoded is re-encoded first.
func decodeBody(req *lambda.Request, v interface{}) error {
	if req.Decoded != nil {
		raw, err := json.Marshal(req.Decoded)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, v)
	}

	raw := bytes.TrimSpace(req.Body)
	if len(raw) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(raw, v)
}
