package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PutOptions carries per-object attributes for Put
type PutOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ObjectStorage stores gallery objects under slash-separated keys such as
// "galleries/SMITH2025A/IMG-0A1B2C3D.jpg".
//
// Put overwrites. Delete of a missing key is not an error, matching S3.
type ObjectStorage interface {
	// Put stores data under key
	Put(ctx context.Context, key string, data []byte, opts *PutOptions) error

	// Get returns the object's bytes or ErrFileNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a single object
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// List returns every object whose key starts with prefix, in key order
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// DeletePrefix removes every object under prefix and returns how many were removed
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// SignURL returns a time-limited URL for reading key
	SignURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Close releases any resources held by the implementation
	Close() error
}

// PublicURL is the unsigned virtual-hosted URL of an object
func PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, strings.TrimPrefix(key, "/"))
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}

// validatePrefix refuses an empty prefix so DeletePrefix can never empty a bucket
func validatePrefix(prefix string) error {
	if strings.Trim(prefix, "/") == "" {
		return ErrInvalidKey
	}
	return validateKey(prefix)
}
