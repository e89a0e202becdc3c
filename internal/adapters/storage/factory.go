package storage

import (
	"fmt"
	"strings"

	"gallery-delivery-api/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// StorageType represents the type of storage implementation
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMock  StorageType = "mock"
)

// Factory creates ObjectStorage instances from configuration
type Factory struct {
	retryConfig *RetryConfig
	logger      *logrus.Logger
}

// NewFactory creates a factory. A nil retryConfig disables the retry wrapper.
func NewFactory(retryConfig *RetryConfig, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// DefaultFactory returns a factory with default retry configuration
func DefaultFactory(logger *logrus.Logger) *Factory {
	return NewFactory(DefaultRetryConfig(), logger)
}

// Create builds the storage named by cfg.Type. client is required for s3 only.
func (f *Factory) Create(cfg config.StorageConfig, client *s3.Client) (ObjectStorage, error) {
	storageType := StorageType(strings.ToLower(cfg.Type))

	var storage ObjectStorage
	var err error

	switch storageType {
	case StorageTypeLocal:
		path := cfg.LocalPath
		if path == "" {
			path = "./data/files"
		}
		storage, err = NewLocalFileStorage(path, cfg.BaseURL)
	case StorageTypeS3:
		if client == nil {
			return nil, fmt.Errorf("s3 storage requires an S3 client")
		}
		storage, err = NewS3StorageFromClient(client, cfg.Bucket, f.logger)
	case StorageTypeMock:
		storage = NewMockFileStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.Type, err)
	}

	f.logger.WithFields(logrus.Fields{
		"type":   storageType,
		"bucket": cfg.Bucket,
	}).Info("Object storage initialized")

	if f.retryConfig != nil {
		storage = NewRetryableStorage(storage, f.retryConfig)
	}

	return storage, nil
}
