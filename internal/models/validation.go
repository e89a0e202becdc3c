package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Email validation regex pattern
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Gallery codes are upper-case letters followed by a four digit year and a letter
var galleryCodeRegex = regexp.MustCompile(`^[A-Z]{1,7}\d{4}[A-Z]?$`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// IsValidGalleryCode reports whether code looks like a generated gallery code
func IsValidGalleryCode(code string) bool {
	return galleryCodeRegex.MatchString(code)
}

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidateStringLength validates string length constraints
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	length := len(strings.TrimSpace(value))

	if minLength > 0 && length < minLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d characters", fieldName, minLength),
			Value:   value,
		}
	}

	if maxLength > 0 && length > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength),
			Value:   value,
		}
	}

	return nil
}

// ValidateEmail validates email format and returns a validation error if invalid
func ValidateEmail(email, fieldName string) error {
	if email == "" {
		return nil // Optional field
	}

	if !isValidEmail(email) {
		return &ValidationError{
			Field:   fieldName,
			Message: "Invalid email format",
			Value:   email,
		}
	}

	return nil
}

// ValidateUUID validates UUID format (simple check)
func ValidateUUID(value, fieldName string) error {
	if value == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}

	if len(value) != 36 || value[8] != '-' || value[13] != '-' || value[18] != '-' || value[23] != '-' {
		return &ValidationError{
			Field:   fieldName,
			Message: "Invalid UUID format",
			Value:   value,
		}
	}

	return nil
}

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
