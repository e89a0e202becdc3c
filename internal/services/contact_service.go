package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/notify"
	"gallery-delivery-api/internal/repositories"
)

// ContactOptions configures the studio notification
type ContactOptions struct {
	Studio     string
	NotifyTo   []string
	Clock      Clock
	SubmitTime *time.Location
}

// contactService implements the ContactService interface
type contactService struct {
	contacts  repositories.ContactRepository
	mailer    notify.Mailer
	opts      ContactOptions
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewContactService creates a new contact service instance
func NewContactService(contacts repositories.ContactRepository, mailer notify.Mailer, opts ContactOptions, logger *logrus.Logger) ContactService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SubmitTime == nil {
		opts.SubmitTime = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &contactService{
		contacts:  contacts,
		mailer:    mailer,
		opts:      opts,
		validator: validator.New(),
		logger:    logger,
	}
}

// Submit stores the enquiry and notifies the studio. A notification failure
// is logged and does not fail the submission.
func (s *contactService) Submit(ctx context.Context, req *ContactRequest) (*models.Contact, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: contact request cannot be nil", ErrValidation)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	now := s.opts.Clock()
	contact := models.NewContact(req.Name, req.Email, req.Phone, req.Service, req.Message, now)
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"contact_id": contact.ID,
		"service":    contact.Service,
	})
	log.Info("Contact submission stored")

	if s.mailer == nil || len(s.opts.NotifyTo) == 0 {
		log.Warn("No notification recipient configured")
		return contact, nil
	}

	msg, err := notify.BookingRequest(s.opts.Studio, s.opts.NotifyTo, contact, now.In(s.opts.SubmitTime))
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		log.WithError(err).Error("Booking notification failed")
	}

	return contact, nil
}
