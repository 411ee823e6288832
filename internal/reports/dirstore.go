package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const statConcurrency = 16

// DirStore keeps reports as files in a single flat directory.
type DirStore struct {
	root   string
	logger logrus.FieldLogger
}

// NewDirStore resolves root to an absolute path so filePath values in
// listings do not depend on the process working directory.
func NewDirStore(root string, logger logrus.FieldLogger) *DirStore {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &DirStore{root: root, logger: logger}
}

func (s *DirStore) Location() string {
	return s.root
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *DirStore) Ensure(ctx context.Context) error {
	_ = ctx
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStoreUnavailable, s.root, err)
	}
	return nil
}

func (s *DirStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrStoreUnavailable, s.root)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, s.root, err)
	}

	candidates := make([]fs.DirEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !IsReportName(name) || de.IsDir() {
			s.logger.WithField("name", name).Debug("reports: skipping non-report entry")
			continue
		}
		candidates = append(candidates, de)
	}

	entries := make([]Entry, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, de := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := de.Info()
			if err != nil {
				return fmt.Errorf("%w: stat %s: %v", ErrIO, de.Name(), err)
			}
			entries[i] = s.entry(de.Name(), info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Put writes to a hidden temp file in the root, syncs it, then renames it
// over the target so readers see either the old or the new file.
func (s *DirStore) Put(ctx context.Context, name string, data []byte) (Entry, error) {
	_ = ctx

	tmpPath := s.path("." + uuid.NewString() + ".upload")
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, fmt.Errorf("%w: %s does not exist", ErrStoreUnavailable, s.root)
		}
		return Entry{}, fmt.Errorf("%w: create temp file: %v", ErrIO, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Entry{}, fmt.Errorf("%w: write %s: %v", ErrIO, name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return Entry{}, fmt.Errorf("%w: sync %s: %v", ErrIO, name, err)
	}
	if err := f.Close(); err != nil {
		return Entry{}, fmt.Errorf("%w: close %s: %v", ErrIO, name, err)
	}

	target := s.path(name)
	if err := os.Rename(tmpPath, target); err != nil {
		return Entry{}, fmt.Errorf("%w: rename into %s: %v", ErrIO, name, err)
	}
	committed = true

	info, err := os.Stat(target)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: stat %s: %v", ErrIO, name, err)
	}
	return s.entry(name, info), nil
}

// Open returns an *os.File, which callers may use as an io.ReadSeeker.
func (s *DirStore) Open(ctx context.Context, name string) (io.ReadCloser, Entry, error) {
	_ = ctx

	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, Entry{}, fmt.Errorf("%w: open %s: %v", ErrIO, name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Entry{}, fmt.Errorf("%w: stat %s: %v", ErrIO, name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, Entry{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	return f, s.entry(name, info), nil
}

func (s *DirStore) entry(name string, info fs.FileInfo) Entry {
	return Entry{
		Name:    name,
		Path:    s.path(name),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}
