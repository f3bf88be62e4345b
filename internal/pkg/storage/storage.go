// Package storage uploads user images to a Google Cloud Storage bucket and
// maps object paths to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

const (
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

// Storage is the file store used for review and profile images.
type Storage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
	// PathFromURL returns the object path behind a public URL produced by Upload.
	PathFromURL(url string) (string, bool)
}

var (
	_ Storage = (*BucketStorage)(nil)
	_ Storage = Disabled{}
)

type BucketStorage struct {
	logger  *zap.Logger
	client  *gcs.Client
	bucket  string
	baseURL string
}

// NewBucketStorage opens a GCS client using application default credentials.
func NewBucketStorage(ctx context.Context, bucket, cdnDomain string, logger *zap.Logger, opts ...option.ClientOption) (*BucketStorage, error) {
	opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	logger.Info("Object storage initialized", zap.String("bucket", bucket), zap.String("cdn_domain", cdnDomain))
	return &BucketStorage{
		logger:  logger.With(zap.String("service", "BucketStorage")),
		client:  client,
		bucket:  bucket,
		baseURL: PublicBaseURL(bucket, cdnDomain),
	}, nil
}

// PublicBaseURL is the CDN domain when one is set, otherwise the public GCS endpoint.
func PublicBaseURL(bucket, cdnDomain string) string {
	if d := strings.TrimSpace(cdnDomain); d != "" {
		d = strings.TrimRight(d, "/")
		if !strings.HasPrefix(d, "http://") && !strings.HasPrefix(d, "https://") {
			d = "https://" + d
		}
		return d
	}
	return "https://storage.googleapis.com/" + bucket
}

func (s *BucketStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	s.logger.Debug("Object uploaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return s.baseURL + "/" + path, nil
}

// Remove deletes the object. A missing object is not an error.
func (s *BucketStorage) Remove(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", path, s.bucket, err)
	}
	return nil
}

func (s *BucketStorage) PathFromURL(url string) (string, bool) {
	return pathFromURL(s.baseURL, url)
}

func (s *BucketStorage) Close() error {
	return s.client.Close()
}

func pathFromURL(baseURL, url string) (string, bool) {
	prefix := baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	path := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return path, path != ""
}

// Disabled is used when no bucket is configured. Uploads fail with
// models.ErrStorageUnavailable and removals are no-ops.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, []byte, string) (string, error) {
	return "", models.ErrStorageUnavailable
}

func (Disabled) Remove(context.Context, string) error { return nil }

func (Disabled) PathFromURL(string) (string, bool) { return "", false }
