package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gallery-delivery-api/internal/config"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFactory(t *testing.T) {
	factory := DefaultFactory(quietLogger())
	ctx := context.Background()

	t.Run("CreateMockStorage", func(t *testing.T) {
		storage, err := factory.Create(config.StorageConfig{Type: "mock"}, nil)
		if err != nil {
			t.Fatalf("Failed to create mock storage: %v", err)
		}
		defer storage.Close()

		if _, ok := storage.(*RetryableStorage); !ok {
			t.Errorf("Expected retry wrapper, got %T", storage)
		}
		if err := storage.Put(ctx, "test.jpg", []byte("test"), nil); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	})

	t.Run("CreateLocalStorage", func(t *testing.T) {
		dir := t.TempDir()

		storage, err := factory.Create(config.StorageConfig{Type: "LOCAL", LocalPath: dir}, nil)
		if err != nil {
			t.Fatalf("Failed to create local storage: %v", err)
		}
		defer storage.Close()

		if err := storage.Put(ctx, "test.jpg", []byte("test"), nil); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "test.jpg")); err != nil {
			t.Errorf("File should exist on disk: %v", err)
		}
	})

	t.Run("S3RequiresClient", func(t *testing.T) {
		if _, err := factory.Create(config.StorageConfig{Type: "s3", Bucket: "b"}, nil); err == nil {
			t.Error("Expected error without an S3 client")
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		if _, err := factory.Create(config.StorageConfig{Type: "gcs"}, nil); err == nil {
			t.Error("Expected error for unsupported type")
		}
	})

	t.Run("NoRetryWrapper", func(t *testing.T) {
		storage, err := NewFactory(nil, quietLogger()).Create(config.StorageConfig{Type: "mock"}, nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, ok := storage.(*MockFileStorage); !ok {
			t.Errorf("Expected bare mock storage, got %T", storage)
		}
	})
}
