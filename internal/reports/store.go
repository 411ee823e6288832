package reports

import (
	"context"
	"io"
)

// Store is the report archive. Names passed in have already been validated.
type Store interface {
	// Ensure creates the archive root if needed. It is idempotent.
	Ensure(ctx context.Context) error
	// List returns every report entry (".pdf" suffix) directly under the root.
	List(ctx context.Context) ([]Entry, error)
	// Put stores data under name, replacing any previous content atomically.
	Put(ctx context.Context, name string, data []byte) (Entry, error)
	// Open streams a stored file. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, Entry, error)
	// Location describes the root for logs and the startup banner.
	Location() string
}
