package sqlite

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"gallery-delivery-api/internal/database"
	"gallery-delivery-api/internal/repositories"
	"gallery-delivery-api/internal/repositories/repotest"

	"github.com/sirupsen/logrus"
)

var testTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func setupTestManager(t *testing.T) repositories.RepositoryManager {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.InitializeDatabase(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	manager := NewSQLiteRepositoryManager(db, logger)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestSQLiteRepositories(t *testing.T) {
	repotest.Run(t, setupTestManager)
}

func TestGalleryRepository_EmptyCode(t *testing.T) {
	manager := setupTestManager(t)

	_, err := manager.Galleries().GetByCode(context.Background(), "  ")
	if err == nil {
		t.Fatal("Expected error for empty gallery code")
	}
	if repositories.IsNotFound(err) {
		t.Errorf("Expected invalid ID error, got not found: %v", err)
	}
}

func TestGalleryRepository_AddImagesFloorsAtZero(t *testing.T) {
	manager := setupTestManager(t)
	ctx := context.Background()

	g := repotest.Gallery("FLOOR2025A", testTime)
	if err := manager.Galleries().Create(ctx, g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := manager.Galleries().AddImages(ctx, g.GalleryCode, -5); err != nil {
		t.Fatalf("AddImages failed: %v", err)
	}

	got, err := manager.Galleries().GetByCode(ctx, g.GalleryCode)
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.ImageCount != 0 {
		t.Errorf("Expected image count 0, got %d", got.ImageCount)
	}
}

func TestHealthAfterClose(t *testing.T) {
	manager := setupTestManager(t)
	if err := manager.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := manager.Health(context.Background()); !repositories.IsConnection(err) {
		t.Errorf("Expected connection error after close, got %v", err)
	}
}
