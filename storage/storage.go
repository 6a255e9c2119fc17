package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// DefaultBucket is the fixed container every deployment provisions.
const DefaultBucket = "documents"

// MaxUploadSize is the default object size limit (10 MiB).
const MaxUploadSize = 10 * 1024 * 1024

// ProgressFunc receives upload progress as a percentage. Reported values
// are monotonically non-decreasing and end at 100 on success; intermediate
// milestones are coarse, not continuous.
type ProgressFunc func(percent int)

// Storage interface for blob store operations
type Storage interface {
	// EnsureBucket provisions the container, tolerating "already exists"
	EnsureBucket(ctx context.Context) error

	// Upload stores a blob under key, reporting progress via onProgress.
	// A failed transfer is retried once with a buffered representation
	// before the error surfaces.
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string, onProgress ProgressFunc) error

	// Download retrieves a blob by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a blob by key
	Delete(ctx context.Context, key string) error

	// PublicURL resolves a direct-access URL for key, or nil if the
	// backend cannot issue one
	PublicURL(key string) *string
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	Bucket       string
	LocalPath    string // For local storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath, cfg.Bucket)
	case StorageTypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv creates a storage instance from environment variables
func NewStorageFromEnv() (Storage, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "local" // Default to local for development
	}

	cfg := StorageConfig{
		Type:   StorageType(storageType),
		Bucket: os.Getenv("STORAGE_BUCKET"),
	}

	switch cfg.Type {
	case StorageTypeLocal:
		cfg.LocalPath = os.Getenv("STORAGE_LOCAL_PATH")
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./storage/blobs"
		}
		return NewStorage(cfg)

	case StorageTypeS3:
		if cfg.Bucket == "" {
			cfg.Bucket = os.Getenv("AWS_S3_BUCKET")
		}
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewStorage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// ObjectKey builds the blob key for a file: {ownerID}/{fileID}.{ext}.
// The key is deterministic, so re-uploading a revision of the same file
// overwrites the blob in place.
func ObjectKey(ownerID, fileID uuid.UUID, fileType string) string {
	if fileType == "" {
		return fmt.Sprintf("%s/%s", ownerID, fileID)
	}
	return fmt.Sprintf("%s/%s.%s", ownerID, fileID, fileType)
}
