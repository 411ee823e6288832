package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	appcfg "github.com/fdg312/ops-dashboard/internal/config"
)

// GCSStore implements Store on a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCSStore creates a client from GCS_CREDENTIALS_FILE, or from
// application default credentials when no file is given.
func NewGCSStore(ctx context.Context, cfg appcfg.GCSConfig) (*GCSStore, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("GCS configuration incomplete: missing GCS_BUCKET")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{client: client, bucket: client.Bucket(cfg.Bucket), name: cfg.Bucket}, nil
}

func (s *GCSStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := w.Write(data)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return int64(n), nil
}

func (s *GCSStore) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, ObjectInfo{}, fmt.Errorf("failed to get GCS object reader for %s: %w", s.URI(key), err)
	}

	info := ObjectInfo{
		Key:          key,
		Size:         r.Attrs.Size,
		LastModified: r.Attrs.LastModified.UTC(),
		ContentType:  r.Attrs.ContentType,
	}
	return r, info, nil
}

func (s *GCSStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})

	var objects []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		// synthetic directory entry
		if attrs.Name == "" {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated.UTC(),
			ContentType:  attrs.ContentType,
		})
	}
	return objects, nil
}

func (s *GCSStore) Ping(ctx context.Context) error {
	if _, err := s.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("failed to read bucket %s: %w", s.name, err)
	}
	return nil
}

func (s *GCSStore) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.name, key)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
