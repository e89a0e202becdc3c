package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileStorage is an in-memory ObjectStorage for tests and STORAGE_TYPE=mock.
// FailOn injects an error for one operation name.
type MockFileStorage struct {
	mu       sync.RWMutex
	files    map[string]*mockFile
	failures map[string]error
}

type mockFile struct {
	data         []byte
	metadata     map[string]string
	contentType  string
	lastModified time.Time
}

// NewMockFileStorage creates an empty MockFileStorage
func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{
		files:    make(map[string]*mockFile),
		failures: make(map[string]error),
	}
}

// FailOn makes every later call of op ("Put", "Get", "Delete", "List",
// "DeletePrefix", "SignURL") return err. A nil err clears the failure.
func (m *MockFileStorage) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *MockFileStorage) injected(op, key string) error {
	if err, ok := m.failures[op]; ok {
		return NewStorageError(op, key, err, false)
	}
	return nil
}

// Put stores a copy of data
func (m *MockFileStorage) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("Put", key); err != nil {
		return err
	}

	file := &mockFile{
		data:         append([]byte(nil), data...),
		contentType:  "application/octet-stream",
		lastModified: time.Now(),
	}
	if opts != nil {
		if opts.ContentType != "" {
			file.contentType = opts.ContentType
		}
		file.metadata = copyMetadata(opts.Metadata)
	}

	m.files[key] = file
	return nil
}

// Get returns a copy of the stored bytes
func (m *MockFileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("Get", key); err != nil {
		return nil, err
	}

	file, exists := m.files[key]
	if !exists {
		return nil, NewStorageError("Get", key, ErrFileNotFound, false)
	}
	return append([]byte(nil), file.data...), nil
}

// Delete removes key if present
func (m *MockFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("Delete", key); err != nil {
		return err
	}
	delete(m.files, key)
	return nil
}

// Exists reports whether key is stored
func (m *MockFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[key]
	return exists, nil
}

// List returns objects under prefix sorted by key
func (m *MockFileStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("List", prefix); err != nil {
		return nil, err
	}
	return m.list(prefix), nil
}

func (m *MockFileStorage) list(prefix string) []ObjectInfo {
	objects := make([]ObjectInfo, 0)
	for key, file := range m.files {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(file.data)),
			ContentType:  file.contentType,
			LastModified: file.lastModified,
			Metadata:     copyMetadata(file.metadata),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects
}

// DeletePrefix removes every object under prefix
func (m *MockFileStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := validatePrefix(prefix); err != nil {
		return 0, NewStorageError("DeletePrefix", prefix, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("DeletePrefix", prefix); err != nil {
		return 0, err
	}

	objects := m.list(prefix)
	for _, obj := range objects {
		delete(m.files, obj.Key)
	}
	return len(objects), nil
}

// SignURL returns a mock:// URL carrying the expiry
func (m *MockFileStorage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", NewStorageError("SignURL", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("SignURL", key); err != nil {
		return "", err
	}
	return fmt.Sprintf("mock://storage/%s?expires=%d", key, int64(expiry.Seconds())), nil
}

// Close drops every stored object
func (m *MockFileStorage) Close() error {
	m.Reset()
	return nil
}

// Reset clears all stored files and injected failures
func (m *MockFileStorage) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*mockFile)
	m.failures = make(map[string]error)
}

// FileCount returns the number of stored files
func (m *MockFileStorage) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// HasFile checks if a file exists (without error handling)
func (m *MockFileStorage) HasFile(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}

// Metadata returns the stored metadata of key, or nil
func (m *MockFileStorage) Metadata(key string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if file, ok := m.files[key]; ok {
		return copyMetadata(file.metadata)
	}
	return nil
}

func copyMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
