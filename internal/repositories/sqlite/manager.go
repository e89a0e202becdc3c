package sqlite

import (
	"context"
	"database/sql"

	"gallery-delivery-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SQLiteRepositoryManager implements the RepositoryManager interface for SQLite
type SQLiteRepositoryManager struct {
	db           *sql.DB
	logger       *logrus.Logger
	galleryRepo  repositories.GalleryRepository
	imageRepo    repositories.ImageRepository
	contactRepo  repositories.ContactRepository
	curationRepo repositories.CurationRepository
}

// NewSQLiteRepositoryManager creates a repository manager over an open, migrated database
func NewSQLiteRepositoryManager(db *sql.DB, logger *logrus.Logger) repositories.RepositoryManager {
	if logger == nil {
		logger = logrus.New()
	}

	return &SQLiteRepositoryManager{
		db:           db,
		logger:       logger,
		galleryRepo:  NewGalleryRepository(db, logger),
		imageRepo:    NewImageRepository(db, logger),
		contactRepo:  NewContactRepository(db, logger),
		curationRepo: NewCurationRepository(db, logger),
	}
}

// Galleries returns the gallery repository
func (m *SQLiteRepositoryManager) Galleries() repositories.GalleryRepository {
	return m.galleryRepo
}

// Images returns the image repository
func (m *SQLiteRepositoryManager) Images() repositories.ImageRepository {
	return m.imageRepo
}

// Contacts returns the contact repository
func (m *SQLiteRepositoryManager) Contacts() repositories.ContactRepository {
	return m.contactRepo
}

// Curation returns the curation repository
func (m *SQLiteRepositoryManager) Curation() repositories.CurationRepository {
	return m.curationRepo
}

// Close closes the database connection
func (m *SQLiteRepositoryManager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health checks the health of the repository connections
func (m *SQLiteRepositoryManager) Health(ctx context.Context) error {
	if m.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := m.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	return nil
}
