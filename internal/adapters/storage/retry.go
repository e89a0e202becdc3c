package storage

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for storage operations
type RetryConfig struct {
	MaxAttempts   int           `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay" yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
	JitterEnabled bool          `json:"jitter_enabled" yaml:"jitter_enabled"`
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func(ctx context.Context) error

// WithRetry runs op until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached
func WithRetry(ctx context.Context, config *RetryConfig, op RetryableOperation) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt >= config.MaxAttempts || !IsRetryable(err) {
			break
		}

		delay := config.calculateDelay(attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// calculateDelay calculates the delay before the next retry attempt
func (c *RetryConfig) calculateDelay(attempt int) time.Duration {
	// Exponential backoff: delay = initial_delay * (backoff_factor ^ (attempt - 1))
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))

	// Cap at max delay
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	// Add jitter to prevent thundering herd
	if c.JitterEnabled {
		jitter := rand.Float64() * 0.1 * delay // Up to 10% jitter
		delay += jitter
	}

	return time.Duration(delay)
}

// RetryableStorage retries transient failures of another ObjectStorage
type RetryableStorage struct {
	storage ObjectStorage
	config  *RetryConfig
}

var _ ObjectStorage = (*RetryableStorage)(nil)

// NewRetryableStorage wraps storage with config, or the defaults when config is nil
func NewRetryableStorage(storage ObjectStorage, config *RetryConfig) *RetryableStorage {
	if config == nil {
		config = DefaultRetryConfig()
	}

	return &RetryableStorage{
		storage: storage,
		config:  config,
	}
}

// Unwrap returns the wrapped storage
func (r *RetryableStorage) Unwrap() ObjectStorage {
	return r.storage
}

func (r *RetryableStorage) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.storage.Put(ctx, key, data, opts)
	})
}

func (r *RetryableStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		data, err := r.storage.Get(ctx, key)
		result = data
		return err
	})
	return result, err
}

func (r *RetryableStorage) Delete(ctx context.Context, key string) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.storage.Delete(ctx, key)
	})
}

func (r *RetryableStorage) Exists(ctx context.Context, key string) (bool, error) {
	var result bool
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		exists, err := r.storage.Exists(ctx, key)
		result = exists
		return err
	})
	return result, err
}

func (r *RetryableStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var result []ObjectInfo
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		objects, err := r.storage.List(ctx, prefix)
		result = objects
		return err
	})
	return result, err
}

// DeletePrefix sums the objects removed across attempts, since a retry only
// sees what the failed attempt left behind
func (r *RetryableStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	total := 0
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		n, err := r.storage.DeletePrefix(ctx, prefix)
		total += n
		return err
	})
	return total, err
}

// SignURL is computed locally and is not retried
func (r *RetryableStorage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return r.storage.SignURL(ctx, key, expiry)
}

func (r *RetryableStorage) Close() error {
	return r.storage.Close()
}
