package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrGalleryCodeRequired = errors.New("gallery code is required")
	ErrNoImages            = errors.New("no images provided")
	ErrValidation          = errors.New("validation failed")
)

// validationError flattens validator output into one message wrapping ErrValidation
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, ", "))
}
