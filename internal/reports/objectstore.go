package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/blob"
)

// ObjectStore keeps reports in a bucket. The key prefix plays the role of
// the archive root; keys nested deeper than the prefix are not reports.
type ObjectStore struct {
	blobs  blob.Store
	prefix string
	logger logrus.FieldLogger
}

func NewObjectStore(blobs blob.Store, prefix string, logger logrus.FieldLogger) *ObjectStore {
	return &ObjectStore{blobs: blobs, prefix: prefix, logger: logger}
}

func (s *ObjectStore) Location() string {
	return s.blobs.URI(s.prefix)
}

// Ensure only checks the bucket. Prefixes exist implicitly.
func (s *ObjectStore) Ensure(ctx context.Context) error {
	if err := s.blobs.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *ObjectStore) List(ctx context.Context) ([]Entry, error) {
	objects, err := s.blobs.ListObjects(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	entries := make([]Entry, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if name == "" || strings.Contains(name, "/") || !IsReportName(name) {
			s.logger.WithField("key", obj.Key).Debug("reports: skipping non-report object")
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Path:    s.blobs.URI(obj.Key),
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return entries, nil
}

// Put relies on the bucket's whole-object write semantics for atomicity.
func (s *ObjectStore) Put(ctx context.Context, name string, data []byte) (Entry, error) {
	key := s.prefix + name
	size, err := s.blobs.PutObject(ctx, key, data, contentTypeFor(name))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return Entry{Name: name, Path: s.blobs.URI(key), Size: size}, nil
}

func (s *ObjectStore) Open(ctx context.Context, name string) (io.ReadCloser, Entry, error) {
	key := s.prefix + name
	rc, info, err := s.blobs.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return nil, Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, Entry{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return rc, Entry{
		Name:    name,
		Path:    s.blobs.URI(key),
		Size:    info.Size,
		ModTime: info.LastModified,
	}, nil
}
