package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docudrive-backend/domain"
)

// LocalStorage implements Storage interface for the local filesystem.
// Used for development and tests; it never issues public URLs.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, bucket string) (*LocalStorage, error) {
	root := filepath.Join(basePath, bucket)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: root}, nil
}

// EnsureBucket is satisfied at construction time for local storage
func (s *LocalStorage) EnsureBucket(ctx context.Context) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

// Upload stores a blob locally
func (s *LocalStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w: %w", domain.ErrUpload, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w: %w", domain.ErrUpload, err)
	}
	defer file.Close()

	_, err = io.Copy(file, newProgressReader(data, size, onProgress))
	if err != nil {
		os.Remove(fullPath) // Clean up on error
		return fmt.Errorf("failed to write file: %w: %w", domain.ErrUpload, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

// Download retrieves a blob from local storage
func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a blob from local storage
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// PublicURL returns nil; local storage has no public endpoint
func (s *LocalStorage) PublicURL(key string) *string {
	return nil
}
