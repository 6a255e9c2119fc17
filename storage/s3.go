package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"docudrive-backend/domain"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Storage implements Storage interface for AWS S3
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg StorageConfig) (*S3Storage, error) {
	ctx := context.Background()

	var awsCfg aws.Config
	var err error

	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		// Use explicit credentials
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			)),
		)
	} else {
		// Use default credentials (from environment, IAM role, etc.)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.S3Region,
	}, nil
}

// EnsureBucket creates the bucket if needed. An existing bucket is success.
// The public-read policy is best-effort; objects stay reachable through
// Download either way.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if !errors.As(err, &owned) && !errors.As(err, &exists) {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "PublicRead",
			"Effect": "Allow",
			"Principal": "*",
			"Action": "s3:GetObject",
			"Resource": "arn:aws:s3:::%s/*"
		}]
	}`, s.bucket)
	s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.bucket),
		Policy: aws.String(policy),
	})

	return nil
}

// Upload stores a blob in S3. The first attempt streams through a progress
// reader; if it fails, one retry goes out with the buffered bytes so the
// SDK can seek and re-sign.
func (s *S3Storage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read upload body: %w: %w", domain.ErrUpload, err)
	}

	attempt := 0
	err = retry.Do(
		func() error {
			attempt++
			var body io.Reader
			if attempt == 1 {
				body = newProgressReader(bytes.NewReader(buf), size, onProgress)
			} else {
				body = bytes.NewReader(buf)
			}
			_, putErr := s.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:        aws.String(s.bucket),
				Key:           aws.String(key),
				Body:          body,
				ContentType:   aws.String(contentType),
				ContentLength: aws.Int64(int64(len(buf))),
			})
			return putErr
		},
		retry.Attempts(2),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)

	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w: %w", domain.ErrUpload, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

// Download retrieves a blob from S3
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// Delete removes a blob from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// PublicURL resolves the virtual-hosted URL for a key
func (s *S3Storage) PublicURL(key string) *string {
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return &url
}
