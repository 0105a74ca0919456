package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Baaaki/event-manager/internal/config"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioUploader stores flyers in an S3-compatible bucket.
type MinioUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioUploader constructs a MinIO client from config.
func NewMinioUploader(cfg config.MinioConfig) (*MinioUploader, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: PublicBaseURL(cfg),
	}, nil
}

// PublicBaseURL is the prefix flyer URLs are built on, without a trailing slash.
func PublicBaseURL(cfg config.MinioConfig) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimRight(cfg.Endpoint, "/")
}

// EnsureBucket ensures the configured bucket exists.
func (m *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// Upload puts the flyer under a fresh key and returns its URL.
func (m *MinioUploader) Upload(ctx context.Context, flyer Flyer) (string, error) {
	key := ObjectKey(flyer.Filename)

	info, err := m.client.PutObject(ctx, m.bucket, key, flyer.Body, flyer.Size, minio.PutObjectOptions{
		ContentType: flyer.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	logger.Log.Debug("Flyer uploaded",
		zap.String("bucket", m.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)

	return m.URLFor(key), nil
}

// Remove deletes the object behind url. URLs outside this bucket are ignored.
func (m *MinioUploader) Remove(ctx context.Context, url string) error {
	key, ok := m.KeyFor(url)
	if !ok {
		return nil
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// URLFor builds the public URL of key.
func (m *MinioUploader) URLFor(key string) string {
	return m.baseURL + "/" + m.bucket + "/" + key
}

// KeyFor is the inverse of URLFor.
func (m *MinioUploader) KeyFor(url string) (string, bool) {
	prefix := m.baseURL + "/" + m.bucket + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
