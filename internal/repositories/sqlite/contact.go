package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ContactRepository implements repositories.ContactRepository for SQLite
type ContactRepository struct {
	*BaseRepository[models.Contact]
}

// NewContactRepository creates a new SQLite contact repository
func NewContactRepository(db *sql.DB, logger *logrus.Logger) repositories.ContactRepository {
	return &ContactRepository{
		BaseRepository: NewBaseRepository[models.Contact](db, "contacts", "contact", logger),
	}
}

// Create stores a contact submission
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if err := c.Validate(); err != nil {
		return repositories.ValidationError("contact", c.ID, err)
	}

	query := `
		INSERT INTO contacts (id, timestamp, name, email, phone, service, message, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		c.ID, c.Timestamp, c.Name, c.Email, c.Phone, c.Service, c.Message, c.Date)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("contact", "id", c.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a contact submission by id
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT id, timestamp, name, email, phone, service, message, date FROM contacts WHERE id = ?`
	row := r.executeQueryRow(ctx, "get_by_id", query, id)

	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.Timestamp, &c.Name, &c.Email, &c.Phone, &c.Service, &c.Message, &c.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("contact", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "contact", id, err)
	}

	return c, nil
}
