package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testContact() *models.Contact {
	c := models.NewContact("Jane <b>Doe</b>", "jane@example.com", "555-0100", "Wedding", "Hi <script>alert(1)</script>", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	return c
}

func TestBookingRequest(t *testing.T) {
	c := testContact()
	msg, err := BookingRequest("Blakely Cinematics", []string{"studio@example.com"}, c, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "New Booking Request - Wedding", msg.Subject)
	assert.Equal(t, []string{"studio@example.com"}, msg.To)
	assert.Contains(t, msg.HTMLBody, "Booking ID: "+c.ID)
	assert.Contains(t, msg.HTMLBody, "Submitted: 2025-06-01 10:00:00")
	assert.Contains(t, msg.HTMLBody, "jane@example.com")
	assert.NotContains(t, msg.HTMLBody, "<script>", "user input must be escaped")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
}

func TestMessageValidate(t *testing.T) {
	assert.ErrorIs(t, Message{Subject: "s"}.Validate(), ErrNoRecipients)
	assert.Error(t, Message{To: []string{"a@example.com"}}.Validate())
	assert.NoError(t, Message{To: []string{"a@example.com"}, Subject: "s"}.Validate())
}

func TestSESMailer(t *testing.T) {
	fake := &fakeSES{}
	mailer := NewSESMailer(fake, "studio@example.com", quietLogger())

	err := mailer.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "Hello", HTMLBody: "<p>hi</p>"})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "studio@example.com", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"owner@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(fake.input.Content.Simple.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))

	fake.err = errors.New("MessageRejected")
	err = mailer.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "Hello"})
	assert.ErrorContains(t, err, "MessageRejected")
}

func TestSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(config.SMTPConfig{Port: 587}, "a@example.com", "Studio", quietLogger())
	assert.Error(t, err, "host is required")

	mailer, err := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}, "studio@example.com", "Studio", quietLogger())
	require.NoError(t, err)

	var sent *mail.Msg
	mailer.dial = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, mailer.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "Hello", HTMLBody: "<p>hi</p>"}))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"Hello"}, sent.GetGenHeader(mail.HeaderSubject))
	assert.Len(t, sent.GetToString(), 1)

	mailer.dial = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
		return errors.New("connection refused")
	}
	err = mailer.Send(context.Background(), Message{To: []string{"owner@example.com"}, Subject: "Hello"})
	assert.ErrorContains(t, err, "connection refused")

	err = mailer.Send(context.Background(), Message{To: []string{"not an address"}, Subject: "Hello"})
	assert.ErrorContains(t, err, "invalid recipient")
}

func TestLogMailer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mailer := NewLogMailer(logger)

	require.NoError(t, mailer.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "Hello"}))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Hello", hook.LastEntry().Data["subject"])
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Email: config.EmailConfig{Provider: "log"}}
	m, err := New(cfg, nil, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	cfg.Email.Provider = "ses"
	_, err = New(cfg, nil, quietLogger())
	assert.Error(t, err)

	m, err = New(cfg, &fakeSES{}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &SESMailer{}, m)

	cfg.Email.Provider = "smtp"
	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587}
	m, err = New(cfg, nil, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	cfg.Email.Provider = "pigeon"
	_, err = New(cfg, nil, quietLogger())
	assert.True(t, strings.Contains(err.Error(), "pigeon"))
}
