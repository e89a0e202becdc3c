package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// GalleryCodeKey is the context key holding the authenticated gallery code
const GalleryCodeKey = "gallery_code"

var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// GalleryClaims are the claims of a gallery session token
type GalleryClaims struct {
	GalleryCode string `json:"gallery_code"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
	Now           func() time.Time
}

// AuthService issues and validates gallery session tokens
type AuthService struct {
	config *AuthConfig
	secret []byte
}

// NewAuthService creates a new authentication service. Without a configured
// secret a random one is generated, so tokens do not survive a restart.
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "gallery-delivery-api"
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	secret := []byte(config.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err == nil {
			secret = []byte(hex.EncodeToString(buf))
		}
		logrus.Warn("JWT_SECRET not set, using an ephemeral signing key")
	}

	return &AuthService{config: config, secret: secret}
}

// IssueGalleryToken generates an HS256 token scoped to one gallery
func (a *AuthService) IssueGalleryToken(galleryCode string) (string, error) {
	if galleryCode == "" {
		return "", fmt.Errorf("gallery code is required")
	}

	now := a.config.Now()
	claims := &GalleryClaims{
		GalleryCode: galleryCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   galleryCode,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a gallery token and returns its claims
func (a *AuthService) ValidateToken(tokenString string) (*GalleryClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GalleryClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.config.Issuer),
		jwt.WithTimeFunc(a.config.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*GalleryClaims)
	if !ok || !token.Valid || claims.GalleryCode == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken issues a fresh token for the gallery of a still valid token
func (a *AuthService) RefreshToken(tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("invalid token for refresh: %w", err)
	}
	return a.IssueGalleryToken(claims.GalleryCode)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: expected Bearer <token>", ErrInvalidToken)
	}
	return strings.TrimSpace(parts[1]), nil
}

// GalleryAuthentication requires a valid gallery token
func GalleryAuthentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			}).Warn("Token validation failed")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(GalleryCodeKey, claims.GalleryCode)
		c.Next()
	}
}

// RequireGalleryMatch rejects requests whose galleryCode query parameter names
// a different gallery than the token
func RequireGalleryMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.Query("galleryCode")
		if requested != "" && requested != c.GetString(GalleryCodeKey) {
			logrus.WithFields(logrus.Fields{
				"token_gallery":     c.GetString(GalleryCodeKey),
				"requested_gallery": requested,
			}).Warn("Gallery mismatch")

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Token does not grant access to this gallery",
			})
			return
		}
		c.Next()
	}
}

// GalleryCodeFromContext returns the gallery code set by GalleryAuthentication
func GalleryCodeFromContext(c *gin.Context) (string, bool) {
	code := c.GetString(GalleryCodeKey)
	return code, code != ""
}
