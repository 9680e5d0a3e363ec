package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket          string
	CDNDomain       string
	CredentialsFile string
}

// GCSImageStore uploads images to a Cloud Storage bucket.
type GCSImageStore struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
	logger    *zap.Logger
}

func NewGCSImageStore(ctx context.Context, cfg GCSConfig, logger *zap.Logger) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Info("Object storage initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("cdn_domain", cfg.CDNDomain),
	)
	return &GCSImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		cdnDomain: cfg.CDNDomain,
		logger:    logger,
	}, nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

func (s *GCSImageStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key, err := cleanKey(name)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return PublicURL(s.bucket, s.cdnDomain, key), nil
}

// PublicURL prefers the CDN domain when one is configured.
func PublicURL(bucket, cdnDomain, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}
