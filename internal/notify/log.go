package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.logger.WithFields(logrus.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"body_bytes": len(msg.HTMLBody),
	}).Info("Email not sent, log provider configured")
	return nil
}
