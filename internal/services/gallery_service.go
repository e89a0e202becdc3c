package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gallery-delivery-api/internal/adapters/storage"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"
)

// codeAttempts bounds how often a colliding gallery code is regenerated
const codeAttempts = 3

// GalleryOptions configures the gallery service
type GalleryOptions struct {
	Retention    time.Duration
	DemoEnabled  bool
	UploadPrefix string
	BcryptCost   int
	Clock        Clock
	Random       io.Reader
}

// galleryService implements the GalleryService interface
type galleryService struct {
	galleries repositories.GalleryRepository
	images    repositories.ImageRepository
	objects   storage.ObjectStorage
	tokens    TokenIssuer
	opts      GalleryOptions
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewGalleryService creates a new gallery service instance
func NewGalleryService(
	galleries repositories.GalleryRepository,
	images repositories.ImageRepository,
	objects storage.ObjectStorage,
	tokens TokenIssuer,
	opts GalleryOptions,
	logger *logrus.Logger,
) GalleryService {
	if opts.Retention <= 0 {
		opts.Retention = models.DefaultRetentionDays * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = "galleries"
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &galleryService{
		galleries: galleries,
		images:    images,
		objects:   objects,
		tokens:    tokens,
		opts:      opts,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateGallery creates a pending gallery with a generated code and password.
// The plain password is returned once and only its bcrypt hash is stored.
func (s *galleryService) CreateGallery(ctx context.Context, req *CreateGalleryRequest) (*CreateGalleryResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: create gallery request cannot be nil", ErrValidation)
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	password, err := models.GeneratePassword(s.opts.Random)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.opts.Clock()
	for attempt := 1; ; attempt++ {
		code, err := models.GenerateGalleryCode(req.Name, now, s.opts.Random)
		if err != nil {
			return nil, err
		}

		gallery := models.NewGallery(code, models.SanitizeString(req.Name), now, s.opts.Retention)
		gallery.PasswordHash = string(hash)
		gallery.Email = strings.TrimSpace(req.Email)
		gallery.Phone = strings.TrimSpace(req.Phone)
		gallery.BookingDate = strings.TrimSpace(req.Date)
		gallery.BookingTime = strings.TrimSpace(req.Time)
		if pkg := models.SanitizeString(req.Package); pkg != "" {
			gallery.SessionType = pkg
		}

		err = s.galleries.Create(ctx, gallery)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"gallery_code": code,
				"client_name":  gallery.ClientName,
			}).Info("Gallery created")
			return &CreateGalleryResult{GalleryCode: code, Password: password, ClientName: gallery.ClientName}, nil
		}

		if !repositories.IsDuplicate(err) || attempt == codeAttempts {
			return nil, fmt.Errorf("failed to create gallery: %w", err)
		}
		s.logger.WithField("gallery_code", code).Warn("Gallery code collision, regenerating")
	}
}

// Authenticate checks a gallery code and password. Every failure, including
// datastore errors, is reported as ErrInvalidCredentials.
func (s *galleryService) Authenticate(ctx context.Context, galleryCode, password string) (*AuthResult, error) {
	galleryCode = strings.TrimSpace(galleryCode)
	password = strings.TrimSpace(password)
	if galleryCode == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if !models.IsValidGalleryCode(galleryCode) {
		s.logger.WithField("gallery_code", galleryCode).Info("Malformed gallery code rejected")
		return nil, ErrInvalidCredentials
	}

	var gallery *models.Gallery
	if s.opts.DemoEnabled && galleryCode == models.DemoGalleryCode && password == models.DemoGalleryPassword {
		gallery = models.DemoGallery(s.opts.Clock())
	} else {
		found, err := s.galleries.GetByCode(ctx, galleryCode)
		if err != nil {
			if !repositories.IsNotFound(err) {
				s.logger.WithError(err).WithField("gallery_code", galleryCode).Error("Gallery lookup failed during authentication")
			}
			return nil, ErrInvalidCredentials
		}

		if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
			s.logger.WithField("gallery_code", galleryCode).Info("Authentication rejected")
			return nil, ErrInvalidCredentials
		}
		gallery = found
	}

	result := &AuthResult{Gallery: gallery.Summary()}
	if s.tokens != nil {
		token, err := s.tokens.IssueGalleryToken(gallery.GalleryCode)
		if err != nil {
			return nil, fmt.Errorf("failed to issue token: %w", err)
		}
		result.Token = token
	}

	s.logger.WithField("gallery_code", gallery.GalleryCode).Info("Gallery authenticated")
	return result, nil
}

// DeleteGallery removes a gallery's objects, image records and gallery record.
// Each step is attempted even when an earlier one failed.
func (s *galleryService) DeleteGallery(ctx context.Context, galleryCode string) (*models.DeletionCounts, error) {
	galleryCode = strings.TrimSpace(galleryCode)
	if galleryCode == "" {
		return nil, ErrGalleryCodeRequired
	}

	counts, _ := s.purge(ctx, galleryCode)
	return counts, nil
}

// purge runs the three deletion steps and returns the gallery record error
func (s *galleryService) purge(ctx context.Context, galleryCode string) (*models.DeletionCounts, error) {
	log := s.logger.WithField("gallery_code", galleryCode)
	counts := &models.DeletionCounts{}

	prefix := models.GalleryObjectPrefix(s.opts.UploadPrefix, galleryCode)
	n, err := s.objects.DeletePrefix(ctx, prefix)
	counts.S3Objects = n
	if err != nil {
		log.WithError(err).WithField("prefix", prefix).Error("Failed to delete gallery objects")
	}

	n, err = s.images.DeleteByGallery(ctx, galleryCode)
	counts.Images = n
	if err != nil {
		log.WithError(err).Error("Failed to delete image records")
	}

	err = s.galleries.Delete(ctx, galleryCode)
	switch {
	case err == nil:
	case repositories.IsNotFound(err):
		log.Info("Gallery record already absent")
	default:
		log.WithError(err).Error("Failed to delete gallery record")
	}

	log.WithFields(logrus.Fields{
		"objects": counts.S3Objects,
		"images":  counts.Images,
	}).Info("Gallery deleted")
	return counts, err
}

// Cleanup deletes every gallery created before the retention cutoff.
// A gallery is listed as deleted only when its record was removed.
func (s *galleryService) Cleanup(ctx context.Context) (*models.CleanupSummary, error) {
	cutoff := s.opts.Clock().UTC().Add(-s.opts.Retention)

	expired, err := s.galleries.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired galleries: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"cutoff": cutoff.Format(time.RFC3339),
		"count":  len(expired),
	}).Info("Cleaning up expired galleries")

	summary := &models.CleanupSummary{
		DeletedGalleries: make([]string, 0, len(expired)),
		CutoffDate:       cutoff.Format(time.RFC3339),
	}

	for _, gallery := range expired {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if gallery.GalleryCode == "" {
			continue
		}

		counts, err := s.purge(ctx, gallery.GalleryCode)
		summary.ImagesDeleted += counts.S3Objects
		if err != nil && !repositories.IsNotFound(err) {
			continue
		}
		summary.DeletedGalleries = append(summary.DeletedGalleries, gallery.GalleryCode)
	}

	summary.GalleriesDeleted = len(summary.DeletedGalleries)
	summary.Message = "Cleanup completed successfully"
	return summary, nil
}
