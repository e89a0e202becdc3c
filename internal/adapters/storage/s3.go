package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// S3API is the subset of the S3 client used by S3Storage
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner signs GetObject requests
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API     = (*s3.Client)(nil)
	_ Presigner = (*s3.PresignClient)(nil)
)

// S3Storage implements ObjectStorage on a single S3 bucket
type S3Storage struct {
	client    S3API
	presigner Presigner
	bucket    string
	logger    *logrus.Logger
}

// NewS3Storage creates S3 storage over an existing client and presigner.
// An empty bucket is accepted so handlers that never touch objects still
// start; every object operation then fails with ErrNotConfigured.
func NewS3Storage(client S3API, presigner Presigner, bucket string, logger *logrus.Logger) (*S3Storage, error) {
	if client == nil {
		return nil, NewStorageError("NewS3Storage", "", ErrNotConfigured, false)
	}
	if logger == nil {
		logger = logrus.New()
	}
	if bucket == "" {
		logger.Warn("S3 storage has no bucket configured; object operations will fail")
	}
	return &S3Storage{client: client, presigner: presigner, bucket: bucket, logger: logger}, nil
}

// NewS3StorageFromClient creates S3 storage and its presigner from an SDK client
func NewS3StorageFromClient(client *s3.Client, bucket string, logger *logrus.Logger) (*S3Storage, error) {
	return NewS3Storage(client, s3.NewPresignClient(client), bucket, logger)
}

// Bucket returns the configured bucket name
func (s *S3Storage) Bucket() string {
	return s.bucket
}

// Put uploads data with the given content type and metadata
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if err := s.requireBucket("Put", key); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts != nil {
		if opts.ContentType != "" {
			input.ContentType = aws.String(opts.ContentType)
		}
		input.Metadata = opts.Metadata
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, input)
	s.logCall("put", key, start, err)
	if err != nil {
		return s.wrap("Put", key, err)
	}
	return nil
}

// Get downloads an object
func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}
	if err := s.requireBucket("Get", key); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.logCall("get", key, start, err)
	if err != nil {
		return nil, s.wrap("Get", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, NewStorageError("Get", key, err, true)
	}
	return data, nil
}

// Delete removes one object
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}
	if err := s.requireBucket("Delete", key); err != nil {
		return err
	}

	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.logCall("delete", key, start, err)
	if err != nil {
		return s.wrap("Delete", key, err)
	}
	return nil
}

// Exists issues a HeadObject request
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}
	if err := s.requireBucket("Exists", key); err != nil {
		return false, err
	}

	start := time.Now()
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.logCall("head", key, start, err)
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, s.wrap("Exists", key, err)
	}
	return true, nil
}

// List pages through ListObjectsV2
func (s *S3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := s.requireBucket("List", prefix); err != nil {
		return nil, err
	}
	objects := make([]ObjectInfo, 0)
	err := s.eachPage(ctx, prefix, func(page []types.Object) error {
		for _, obj := range page {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("List", prefix, err)
	}
	return objects, nil
}

// DeletePrefix deletes one DeleteObjects batch per listing page.
// Per-key errors reported by S3 fail the call after the page is processed.
func (s *S3Storage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := validatePrefix(prefix); err != nil {
		return 0, NewStorageError("DeletePrefix", prefix, err, false)
	}
	if err := s.requireBucket("DeletePrefix", prefix); err != nil {
		return 0, err
	}

	deleted := 0
	err := s.eachPage(ctx, prefix, func(page []types.Object) error {
		if len(page) == 0 {
			return nil
		}

		ids := make([]types.ObjectIdentifier, 0, len(page))
		for _, obj := range page {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}

		start := time.Now()
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(false)},
		})
		s.logCall("delete_objects", prefix, start, err)
		if err != nil {
			return err
		}

		deleted += len(out.Deleted)
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			s.logger.WithFields(logrus.Fields{
				"bucket": s.bucket,
				"prefix": prefix,
				"failed": len(out.Errors),
			}).Warn("S3 batch delete left objects behind")
			return NewStorageError("DeletePrefix", aws.ToString(first.Key), errors.New(aws.ToString(first.Message)), true)
		}
		return nil
	})
	if err != nil {
		return deleted, s.wrap("DeletePrefix", prefix, err)
	}
	return deleted, nil
}

// SignURL presigns a GetObject request valid for expiry
func (s *S3Storage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", NewStorageError("SignURL", key, err, false)
	}
	if s.presigner == nil {
		return "", NewStorageError("SignURL", key, ErrNotConfigured, false)
	}
	if err := s.requireBucket("SignURL", key); err != nil {
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", NewStorageError("SignURL", key, err, false)
	}
	return req.URL, nil
}

// Close is a no-op; the SDK client is shared
func (s *S3Storage) Close() error {
	return nil
}

func (s *S3Storage) eachPage(ctx context.Context, prefix string, fn func([]types.Object) error) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		s.logCall("list", prefix, start, err)
		if err != nil {
			return err
		}
		if err := fn(page.Contents); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Storage) requireBucket(op, key string) error {
	if s.bucket == "" {
		return NewStorageError(op, key, ErrNotConfigured, false)
	}
	return nil
}

func (s *S3Storage) logCall(op, key string, start time.Time, err error) {
	fields := logrus.Fields{
		"bucket":      s.bucket,
		"operation":   op,
		"key":         key,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Debug("S3 call failed")
		return
	}
	s.logger.WithFields(fields).Debug("S3 call")
}

func (s *S3Storage) wrap(op, key string, err error) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	if isS3NotFound(err) {
		return NewStorageError(op, key, ErrFileNotFound, false)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewStorageError(op, key, err, false)
	}
	return NewStorageError(op, key, errors.Join(ErrStorageUnavailable, err), true)
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
