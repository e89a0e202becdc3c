package models

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
	"unicode"
)

// GalleryStatus represents the lifecycle state of a client gallery
type GalleryStatus string

const (
	GalleryStatusPending GalleryStatus = "pending"
	GalleryStatusActive  GalleryStatus = "active"
	GalleryStatusExpired GalleryStatus = "expired"
)

// DefaultSessionType is used when a booking does not name a package
const DefaultSessionType = "Signature Session"

const (
	galleryCodeStemLength = 5
	passwordLength        = 8
	upperLetters          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Gallery represents a client photo gallery
type Gallery struct {
	GalleryCode  string        `json:"galleryCode" db:"gallery_code" validate:"required"`
	PasswordHash string        `json:"-" db:"password_hash" validate:"required"`
	ClientName   string        `json:"clientName" db:"client_name" validate:"required"`
	Email        string        `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Phone        string        `json:"phone,omitempty" db:"phone"`
	SessionType  string        `json:"sessionType" db:"session_type"`
	BookingDate  string        `json:"bookingDate,omitempty" db:"booking_date"`
	BookingTime  string        `json:"bookingTime,omitempty" db:"booking_time"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	ExpiresAt    time.Time     `json:"expiresAt" db:"expires_at"`
	ImageCount   int           `json:"imageCount" db:"image_count"`
	Status       GalleryStatus `json:"status" db:"status" validate:"oneof=pending active expired"`
}

// NewGallery creates a pending gallery that expires after the retention window
func NewGallery(code, clientName string, now time.Time, retention time.Duration) *Gallery {
	now = now.UTC()
	return &Gallery{
		GalleryCode: code,
		ClientName:  clientName,
		SessionType: DefaultSessionType,
		CreatedAt:   now,
		ExpiresAt:   now.Add(retention),
		Status:      GalleryStatusPending,
	}
}

// Validate validates the gallery data
func (g *Gallery) Validate() error {
	if err := ValidateRequired(g.GalleryCode, "gallery code"); err != nil {
		return err
	}

	if err := ValidateStringLength(g.ClientName, "client name", 1, 200); err != nil {
		return err
	}

	if g.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	if err := ValidateEmail(g.Email, "email"); err != nil {
		return err
	}

	if g.ImageCount < 0 {
		return fmt.Errorf("image count cannot be negative")
	}

	switch g.Status {
	case GalleryStatusPending, GalleryStatusActive, GalleryStatusExpired:
	default:
		return fmt.Errorf("invalid gallery status: %s", g.Status)
	}

	return nil
}

// IsExpired reports whether the gallery has passed its expiry time
func (g *Gallery) IsExpired(now time.Time) bool {
	return !g.ExpiresAt.IsZero() && now.After(g.ExpiresAt)
}

// Summary is the client-facing view returned after authentication
func (g *Gallery) Summary() GallerySummary {
	return GallerySummary{
		ClientName:  g.ClientName,
		SessionType: g.SessionType,
		ImageCount:  g.ImageCount,
		ExpiresAt:   g.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// GallerySummary holds the gallery fields a client may see
type GallerySummary struct {
	ClientName  string `json:"clientName"`
	SessionType string `json:"sessionType"`
	ImageCount  int    `json:"imageCount"`
	ExpiresAt   string `json:"expiresAt"`
}

// GenerateGalleryCode builds a code from the first word of the client name,
// the current year and one random letter, e.g. SMITH2025A.
func GenerateGalleryCode(clientName string, now time.Time, random io.Reader) (string, error) {
	stem := codeStem(clientName)

	suffix, err := randomString(random, upperLetters, 1)
	if err != nil {
		return "", fmt.Errorf("failed to generate gallery code: %w", err)
	}

	return fmt.Sprintf("%s%d%s", stem, now.Year(), suffix), nil
}

// GeneratePassword returns a random alphanumeric gallery password
func GeneratePassword(random io.Reader) (string, error) {
	password, err := randomString(random, passwordAlphabet, passwordLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return password, nil
}

func codeStem(clientName string) string {
	fields := strings.Fields(clientName)
	if len(fields) == 0 {
		return "CLIENT"
	}

	var b strings.Builder
	for _, r := range fields[0] {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() == galleryCodeStemLength {
				break
			}
		}
	}

	if b.Len() == 0 {
		return "CLIENT"
	}
	return b.String()
}

func randomString(random io.Reader, alphabet string, length int) (string, error) {
	if random == nil {
		random = rand.Reader
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(random, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
