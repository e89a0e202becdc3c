package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/adapters/storage"
	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/internal/notify"
	"gallery-delivery-api/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	GalleryService GalleryService
	ImageService   ImageService
	ContactService ContactService
	Journal        *CurationJournal
}

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Repos   repositories.RepositoryManager
	Objects storage.ObjectStorage
	Mailer  notify.Mailer
	Tokens  TokenIssuer
	Logger  *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(cfg *config.Config, deps Dependencies) (*ServiceContainer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repository manager cannot be nil")
	}
	if deps.Objects == nil {
		return nil, fmt.Errorf("object storage cannot be nil")
	}

	galleryService := NewGalleryService(
		deps.Repos.Galleries(),
		deps.Repos.Images(),
		deps.Objects,
		deps.Tokens,
		GalleryOptions{
			Retention:    cfg.Gallery.Retention(),
			DemoEnabled:  cfg.Gallery.DemoEnabled,
			UploadPrefix: cfg.Images.UploadPrefix,
		},
		deps.Logger,
	)

	imageService := NewImageService(
		deps.Repos.Images(),
		deps.Repos.Galleries(),
		deps.Objects,
		ImageOptions{
			Bucket:        cfg.Storage.Bucket,
			Prefix:        cfg.Images.Prefix,
			UploadPrefix:  cfg.Images.UploadPrefix,
			PresignExpiry: cfg.Images.PresignExpiry(),
		},
		deps.Logger,
	)

	contactService := NewContactService(
		deps.Repos.Contacts(),
		deps.Mailer,
		ContactOptions{
			Studio:   cfg.Email.FromName,
			NotifyTo: splitRecipients(cfg.Email.To),
		},
		deps.Logger,
	)

	return &ServiceContainer{
		GalleryService: galleryService,
		ImageService:   imageService,
		ContactService: contactService,
		Journal:        NewCurationJournal(deps.Repos.Curation(), deps.Logger),
	}, nil
}

// splitRecipients parses a comma-separated address list
func splitRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.GalleryService == nil {
		return fmt.Errorf("gallery service is nil")
	}
	if sc.ImageService == nil {
		return fmt.Errorf("image service is nil")
	}
	if sc.ContactService == nil {
		return fmt.Errorf("contact service is nil")
	}
	if sc.Journal == nil {
		return fmt.Errorf("curation journal is nil")
	}
	return nil
}
