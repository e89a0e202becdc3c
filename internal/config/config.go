package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	AWSRegion   string
	Database    DatabaseConfig
	Storage     StorageConfig
	Images      ImagesConfig
	Email       EmailConfig
	SMTP        SMTPConfig
	JWT         JWTConfig
	Gallery     GalleryConfig
	Curation    CurationConfig
}

// DatabaseConfig selects and configures the record store
type DatabaseConfig struct {
	Type           string // "dynamodb", "sqlite" or "memory"
	Path           string
	MaxOpenConns   int
	MaxIdleConns   int
	GalleriesTable string
	ImagesTable    string
	ContactsTable  string
	CurationTable  string
}

// CurationConfig controls the VIP curation API. With Journal off, curation
// commands are acknowledged without being persisted.
type CurationConfig struct {
	Journal bool
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Type      string // "local", "s3" or "mock"
	LocalPath string
	BaseURL   string
	Bucket    string
}

// ImagesConfig controls how image keys and URLs are built
type ImagesConfig struct {
	// Prefix is used for listing fallback keys: <prefix>/<code>/<imageId>.jpg
	Prefix string
	// UploadPrefix is where uploads are written: <upload>/<code>/<imageId>.jpg
	UploadPrefix   string
	PresignSeconds int
}

// PresignExpiry returns the signed URL lifetime, or zero for public URLs
func (c ImagesConfig) PresignExpiry() time.Duration {
	if c.PresignSeconds <= 0 {
		return 0
	}
	return time.Duration(c.PresignSeconds) * time.Second
}

// EmailConfig selects the notification transport
type EmailConfig struct {
	Provider string // "ses", "smtp" or "log"
	From     string
	FromName string
	To       string
}

// SMTPConfig holds SMTP transport configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// GalleryConfig holds gallery lifecycle settings
type GalleryConfig struct {
	RetentionDays int
	DemoEnabled   bool
}

// Retention returns the gallery retention window
func (c GalleryConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		AWSRegion:   v.GetString("AWS_REGION"),
		Database: DatabaseConfig{
			Type:           strings.ToLower(v.GetString("DB_TYPE")),
			Path:           v.GetString("DB_PATH"),
			MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
			GalleriesTable: v.GetString("GALLERIES_TABLE"),
			ImagesTable:    v.GetString("IMAGES_TABLE"),
			ContactsTable:  v.GetString("CONTACTS_TABLE"),
			CurationTable:  v.GetString("CURATION_TABLE"),
		},
		Storage: StorageConfig{
			Type:      strings.ToLower(v.GetString("STORAGE_TYPE")),
			LocalPath: v.GetString("STORAGE_LOCAL_PATH"),
			BaseURL:   v.GetString("STORAGE_BASE_URL"),
			Bucket:    v.GetString("IMAGES_BUCKET"),
		},
		Images: ImagesConfig{
			Prefix:         strings.Trim(v.GetString("IMAGES_PREFIX"), "/"),
			UploadPrefix:   strings.Trim(v.GetString("UPLOAD_PREFIX"), "/"),
			PresignSeconds: v.GetInt("PRESIGN_SECONDS"),
		},
		Email: EmailConfig{
			Provider: strings.ToLower(v.GetString("EMAIL_PROVIDER")),
			From:     v.GetString("EMAIL_FROM"),
			FromName: v.GetString("EMAIL_FROM_NAME"),
			To:       v.GetString("EMAIL_TO"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Gallery: GalleryConfig{
			RetentionDays: v.GetInt("GALLERY_RETENTION_DAYS"),
			DemoEnabled:   v.GetBool("GALLERY_DEMO_ENABLED"),
		},
		Curation: CurationConfig{
			Journal: v.GetBool("CURATION_JOURNAL"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DB_PATH", "./data/gallery.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)
	v.SetDefault("GALLERIES_TABLE", "blakely-cinematics-galleries")
	v.SetDefault("IMAGES_TABLE", "blakely-cinematics-images")
	v.SetDefault("CONTACTS_TABLE", "blakely-cinematics-contacts")
	v.SetDefault("CURATION_TABLE", "blakely-cinematics-curation")
	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("STORAGE_LOCAL_PATH", "./data/files")
	v.SetDefault("IMAGES_PREFIX", "images")
	v.SetDefault("UPLOAD_PREFIX", "galleries")
	v.SetDefault("PRESIGN_SECONDS", 3600)
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("EMAIL_FROM_NAME", "Blakely Cinematics")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("GALLERY_RETENTION_DAYS", 90)
	v.SetDefault("GALLERY_DEMO_ENABLED", true)
	v.SetDefault("CURATION_JOURNAL", false)
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "dynamodb", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DB_TYPE: %q", c.Database.Type)
	}

	switch c.Email.Provider {
	case "ses", "smtp", "log":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %q", c.Email.Provider)
	}

	if c.Curation.Journal && c.Database.Type == "dynamodb" && c.Database.CurationTable == "" {
		return fmt.Errorf("CURATION_TABLE is required when CURATION_JOURNAL is enabled")
	}

	if c.Gallery.RetentionDays <= 0 {
		return fmt.Errorf("GALLERY_RETENTION_DAYS must be positive, got %d", c.Gallery.RetentionDays)
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
