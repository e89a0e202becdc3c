// Package notify sends studio notification emails over SES, SMTP or the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gallery-delivery-api/internal/config"

	"github.com/sirupsen/logrus"
)

var ErrNoRecipients = errors.New("message has no recipients")

// Message is a single HTML email
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Validate checks the fields every transport needs
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message subject is required")
	}
	return nil
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a transport from cfg.Email.Provider. ses is required for the
// "ses" provider only.
func New(cfg *config.Config, ses SESAPI, logger *logrus.Logger) (Mailer, error) {
	if logger == nil {
		logger = logrus.New()
	}

	switch cfg.Email.Provider {
	case "ses":
		if ses == nil {
			return nil, fmt.Errorf("ses email provider requires an SES client")
		}
		return NewSESMailer(ses, cfg.Email.From, logger), nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTP, cfg.Email.From, cfg.Email.FromName, logger)
	case "log", "":
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}
}
