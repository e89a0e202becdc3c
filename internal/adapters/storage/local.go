package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const metadataSuffix = ".meta.json"

// LocalFileStorage implements ObjectStorage on the local filesystem.
// Object metadata is kept in a JSON sidecar next to each file.
type LocalFileStorage struct {
	basePath string
	baseURL  string
}

type localSidecar struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewLocalFileStorage creates the base directory if needed. When baseURL is
// set, SignURL returns HTTP URLs under it instead of file:// URLs.
func NewLocalFileStorage(basePath, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	return &LocalFileStorage{
		basePath: absPath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put writes the object through a temp file and rename
func (l *LocalFileStorage) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if err := ctx.Err(); err != nil {
		return NewStorageError("Put", key, err, false)
	}

	filePath := l.filePath(key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return NewStorageError("Put", key, err, true)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return NewStorageError("Put", key, err, true)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Put", key, err, true)
	}

	sidecar := localSidecar{}
	if opts != nil {
		sidecar.ContentType = opts.ContentType
		sidecar.Metadata = opts.Metadata
	}
	if sidecar.ContentType == "" && len(sidecar.Metadata) == 0 {
		os.Remove(l.metadataPath(key))
		return nil
	}

	raw, err := json.Marshal(sidecar)
	if err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if err := os.WriteFile(l.metadataPath(key), raw, 0644); err != nil {
		return NewStorageError("Put", key, err, true)
	}
	return nil
}

// Get reads the object's bytes
func (l *LocalFileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}

	data, err := os.ReadFile(l.filePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("Get", key, ErrFileNotFound, false)
		}
		return nil, NewStorageError("Get", key, err, true)
	}
	return data, nil
}

// Delete removes the object and its sidecar
func (l *LocalFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	if err := os.Remove(l.filePath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewStorageError("Delete", key, err, true)
	}
	os.Remove(l.metadataPath(key))
	return nil
}

// Exists reports whether the object file is present
func (l *LocalFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	_, err := os.Stat(l.filePath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, NewStorageError("Exists", key, err, true)
}

// List walks the base directory and returns objects under prefix
func (l *LocalFileStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)

	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metadataSuffix) || strings.HasSuffix(path, ".tmp") {
			return nil
		}

		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		obj := ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			ContentType:  mime.TypeByExtension(filepath.Ext(key)),
			LastModified: info.ModTime(),
		}
		if sidecar, err := l.loadSidecar(key); err == nil {
			if sidecar.ContentType != "" {
				obj.ContentType = sidecar.ContentType
			}
			obj.Metadata = sidecar.Metadata
		}

		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", prefix, err, !errors.Is(err, ctx.Err()))
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// DeletePrefix deletes every object under prefix
func (l *LocalFileStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := validatePrefix(prefix); err != nil {
		return 0, NewStorageError("DeletePrefix", prefix, err, false)
	}

	objects, err := l.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if err := l.Delete(ctx, obj.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// SignURL returns baseURL/key with an expires query parameter, or a file:// URL
func (l *LocalFileStorage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	exists, err := l.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", NewStorageError("SignURL", key, ErrFileNotFound, false)
	}

	if l.baseURL == "" {
		return "file://" + l.filePath(key), nil
	}

	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", time.Now().Add(expiry).Unix()))
	return fmt.Sprintf("%s/%s?%s", l.baseURL, key, q.Encode()), nil
}

// Close is a no-op for local storage
func (l *LocalFileStorage) Close() error {
	return nil
}

func (l *LocalFileStorage) filePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalFileStorage) metadataPath(key string) string {
	return l.filePath(key) + metadataSuffix
}

func (l *LocalFileStorage) loadSidecar(key string) (*localSidecar, error) {
	raw, err := os.ReadFile(l.metadataPath(key))
	if err != nil {
		return nil, err
	}
	var sidecar localSidecar
	if err := json.Unmarshal(raw, &sidecar); err != nil {
		return nil, err
	}
	return &sidecar, nil
}
