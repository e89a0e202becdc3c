package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"gallery-delivery-api/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// SMTPMailer sends through an authenticated SMTP relay
type SMTPMailer struct {
	cfg      config.SMTPConfig
	from     string
	fromName string
	logger   *logrus.Logger
	dial     func(ctx context.Context, client *mail.Client, msg *mail.Msg) error
}

// NewSMTPMailer validates the relay settings and creates a mailer
func NewSMTPMailer(cfg config.SMTPConfig, from, fromName string, logger *logrus.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP_HOST is required for the smtp email provider")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.Port)
	}

	return &SMTPMailer{
		cfg:      cfg,
		from:     from,
		fromName: fromName,
		logger:   logger,
		dial: func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (m *SMTPMailer) buildMessage(msg Message) (*mail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	mm := mail.NewMsg()
	if err := mm.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return mm, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{ServerName: m.cfg.Host}),
	)
	if err != nil {
		return fmt.Errorf("create SMTP client (host=%s port=%d): %w", m.cfg.Host, m.cfg.Port, err)
	}

	if err := m.dial(ctx, client, mm); err != nil {
		return fmt.Errorf("send via SMTP (host=%s port=%d user=%s): %w", m.cfg.Host, m.cfg.Port, m.cfg.Username, err)
	}

	m.logger.WithFields(logrus.Fields{
		"host": m.cfg.Host,
		"to":   msg.To,
	}).Info("Email sent via SMTP")
	return nil
}
