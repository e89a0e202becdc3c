package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact represents a booking enquiry submitted through the contact form
type Contact struct {
	ID        string `json:"id" db:"id" validate:"required,uuid"`
	Timestamp int64  `json:"timestamp" db:"timestamp"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" db:"phone"`
	Service   string `json:"service" db:"service"`
	Message   string `json:"message" db:"message"`
	Date      string `json:"date" db:"date"`
}

// NewContact creates a contact record with a generated ID stamped at now
func NewContact(name, email, phone, service, message string, now time.Time) *Contact {
	return &Contact{
		ID:        uuid.New().String(),
		Timestamp: now.Unix(),
		Name:      SanitizeString(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Service:   SanitizeString(service),
		Message:   strings.TrimSpace(message),
		Date:      now.UTC().Format(time.RFC3339),
	}
}

// Validate validates the contact data
func (c *Contact) Validate() error {
	if err := ValidateUUID(c.ID, "id"); err != nil {
		return err
	}

	if err := ValidateEmail(c.Email, "email"); err != nil {
		return err
	}

	if c.Timestamp <= 0 {
		return fmt.Errorf("contact timestamp is required")
	}

	return nil
}

// Subject returns the notification subject for this enquiry
func (c *Contact) Subject() string {
	return "New Booking Request - " + c.Service
}
