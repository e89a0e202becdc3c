package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/adapters/storage"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"
)

// ImageOptions configures where images are written and how listing URLs are built
type ImageOptions struct {
	// Bucket is required for any URL to be produced
	Bucket string
	// Prefix builds fallback keys for records that carry no key
	Prefix string
	// UploadPrefix is where new uploads are written
	UploadPrefix  string
	PresignExpiry time.Duration
	Clock         Clock
}

// imageService implements the ImageService interface
type imageService struct {
	images    repositories.ImageRepository
	galleries repositories.GalleryRepository
	objects   storage.ObjectStorage
	opts      ImageOptions
	logger    *logrus.Logger
}

// NewImageService creates a new image service instance
func NewImageService(
	images repositories.ImageRepository,
	galleries repositories.GalleryRepository,
	objects storage.ObjectStorage,
	opts ImageOptions,
	logger *logrus.Logger,
) ImageService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = "galleries"
	}
	if opts.Prefix == "" {
		opts.Prefix = "images"
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &imageService{
		images:    images,
		galleries: galleries,
		objects:   objects,
		opts:      opts,
		logger:    logger,
	}
}

// Upload stores each image object and record. A failing image is reported in
// place and does not stop the batch.
func (s *imageService) Upload(ctx context.Context, req *UploadImagesRequest) (*UploadResult, error) {
	if req == nil || strings.TrimSpace(req.GalleryCode) == "" {
		return nil, ErrGalleryCodeRequired
	}
	if len(req.Images) == 0 {
		return nil, ErrNoImages
	}

	code := strings.TrimSpace(req.GalleryCode)
	result := &UploadResult{
		Images:    make([]UploadedImage, 0, len(req.Images)),
		Requested: len(req.Images),
	}

	for idx, upload := range req.Images {
		fileName := upload.FileName
		if fileName == "" {
			fileName = models.DefaultImageFileName(idx)
		}

		img, err := s.uploadOne(ctx, code, fileName, upload.Content)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"gallery_code": code,
				"index":        idx,
				"file_name":    fileName,
			}).Error("Image upload failed")
			result.Images = append(result.Images, UploadedImage{FileName: fileName, Success: false, Error: err.Error()})
			continue
		}

		result.Uploaded++
		result.Images = append(result.Images, UploadedImage{
			ImageID:  img.ImageID,
			FileName: img.FileName,
			S3Key:    img.S3Key,
			Success:  true,
		})
	}

	if result.Uploaded > 0 {
		if err := s.galleries.AddImages(ctx, code, result.Uploaded); err != nil {
			s.logger.WithError(err).WithField("gallery_code", code).Warn("Failed to update gallery image count")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"gallery_code": code,
		"uploaded":     result.Uploaded,
		"requested":    result.Requested,
	}).Info("Images uploaded")
	return result, nil
}

func (s *imageService) uploadOne(ctx context.Context, code, fileName, content string) (*models.Image, error) {
	data, err := decodeImageContent(content)
	if err != nil {
		return nil, err
	}

	id := models.NewImageID()
	key := models.ImageObjectKey(s.opts.UploadPrefix, code, id)

	err = s.objects.Put(ctx, key, data, &storage.PutOptions{
		ContentType: models.ImageContentType,
		Metadata: map[string]string{
			"gallery":       code,
			"original_name": fileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img := models.NewImage(code, id, fileName, key, int64(len(data)), s.opts.Clock())
	if err := s.images.Create(ctx, img); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Warn("Failed to remove orphaned image object")
		}
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	return img, nil
}

// decodeImageContent strips an optional data-URL prefix and decodes base64
func decodeImageContent(content string) ([]byte, error) {
	if i := strings.IndexByte(content, ','); i >= 0 {
		content = content[i+1:]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("image content is empty")
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image content: %w", err)
	}
	return data, nil
}

// List returns a gallery's images in display order with resolved URLs.
// Datastore errors are logged and produce an empty list.
func (s *imageService) List(ctx context.Context, galleryCode string) ([]ImageView, error) {
	galleryCode = strings.TrimSpace(galleryCode)
	if galleryCode == "" {
		return nil, ErrGalleryCodeRequired
	}

	records, err := s.images.ListByGallery(ctx, galleryCode)
	if err != nil {
		s.logger.WithError(err).WithField("gallery_code", galleryCode).Error("Failed to list images")
		return []ImageView{}, nil
	}

	sort.SliceStable(records, func(i, j int) bool { return models.ImageLess(records[i], records[j]) })

	views := make([]ImageView, 0, len(records))
	for _, img := range records {
		views = append(views, ImageView{
			ImageID:    img.ImageID,
			URL:        s.resolveURL(ctx, galleryCode, img),
			UploadedAt: img.UploadedAt(),
		})
	}
	return views, nil
}

// resolveURL picks the stored URL, else the stored key, else the conventional
// key, and turns a key into a signed or public URL
func (s *imageService) resolveURL(ctx context.Context, galleryCode string, img *models.Image) *string {
	if img.S3URL != "" {
		return &img.S3URL
	}

	key := img.S3Key
	if key == "" {
		if s.opts.Bucket == "" || img.ImageID == "" || galleryCode == "" {
			return nil
		}
		key = models.ImageObjectKey(s.opts.Prefix, galleryCode, img.ImageID)
	}

	if s.opts.Bucket == "" {
		return nil
	}

	if s.opts.PresignExpiry > 0 {
		url, err := s.objects.SignURL(ctx, key, s.opts.PresignExpiry)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Presign failed")
			return nil
		}
		return &url
	}

	url := storage.PublicURL(s.opts.Bucket, key)
	return &url
}
