package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/services"
	"gallery-delivery-api/pkg/lambda"
)

// ContactHandler handles booking enquiries
type ContactHandler struct {
	contacts services.ContactService
	logger   *logrus.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts services.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// ContactResponse is the result of a contact submission
type ContactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// @Summary Submit a booking enquiry
// @Description Stores a contact form submission and notifies the studio by email
// @Tags contact
// @Accept json
// @Produce json
// @Param contact body services.ContactRequest true "Enquiry"
// @Success 200 {object} ContactResponse
// @Failure 400 {object} ContactResponse
// @Failure 500 {object} ContactResponse
// @Router /contact [post]
func (h *ContactHandler) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	if req.IsMethod(http.MethodOptions) {
		return lambda.Preflight()
	}

	var body services.ContactRequest
	if err := decodeBody(req, &body); err != nil {
		return lambda.JSON(http.StatusBadRequest, ContactResponse{
			Message: "Error submitting form",
			Error:   err.Error(),
		})
	}

	contact, err := h.contacts.Submit(ctx, &body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrValidation) {
			status = http.StatusBadRequest
		} else {
			h.logger.WithError(err).Error("Contact submission failed")
		}
		return lambda.JSON(status, ContactResponse{
			Message: "Error submitting form",
			Error:   err.Error(),
		})
	}

	return lambda.JSON(http.StatusOK, ContactResponse{
		Message: "Contact form submitted successfully!",
		ID:      contact.ID,
	})
}
