package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gallery-delivery-api/internal/models"
)

var bookingTemplate = template.Must(template.New("booking").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h2 style="color: #FF6B35;">New Booking Request - {{.Studio}}</h2>
  <p><strong>Client Details:</strong></p>
  <ul>
    <li><strong>Name:</strong> {{.Contact.Name}}</li>
    <li><strong>Email:</strong> {{.Contact.Email}}</li>
    <li><strong>Phone:</strong> {{.Contact.Phone}}</li>
    <li><strong>Service:</strong> {{.Contact.Service}}</li>
  </ul>
  <p><strong>Message:</strong></p>
  <p style="background-color: #f5f5f5; padding: 10px; border-radius: 5px;">{{.Contact.Message}}</p>
  <hr>
  <p style="font-size: 12px; color: #666;">
    Booking ID: {{.Contact.ID}}<br>
    Submitted: {{.Submitted}}
  </p>
</body>
</html>
`))

type bookingView struct {
	Studio    string
	Contact   *models.Contact
	Submitted string
}

// BookingRequest renders the studio notification for a contact submission.
// Submitted is formatted in the studio's local time zone.
func BookingRequest(studio string, to []string, c *models.Contact, submitted time.Time) (Message, error) {
	var buf bytes.Buffer
	err := bookingTemplate.Execute(&buf, bookingView{
		Studio:    studio,
		Contact:   c,
		Submitted: submitted.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render booking email: %w", err)
	}

	return Message{
		To:       to,
		Subject:  c.Subject(),
		HTMLBody: buf.String(),
	}, nil
}
