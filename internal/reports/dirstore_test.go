package reports

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStoreEnsureIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "reports")
	store := NewDirStore(root, testLogger())

	require.NoError(t, store.Ensure(context.Background()))
	require.NoError(t, store.Ensure(context.Background()))

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDirStoreListMissingRootIsUnavailable(t *testing.T) {
	store := NewDirStore(filepath.Join(t.TempDir(), "missing"), testLogger())

	_, err := store.List(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)
}

func TestDirStoreListFiltersReports(t *testing.T) {
	root := t.TempDir()
	store := NewDirStore(root, testLogger())
	mtime := time.Date(2025, 9, 10, 8, 30, 0, 0, time.UTC)

	writeReport(t, root, "a.pdf", mtime)
	writeReport(t, root, "notes.txt", mtime)
	writeReport(t, root, "upper.PDF", mtime)
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder.pdf"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "nested"), 0o755))
	writeReport(t, filepath.Join(root, "nested"), "deep.pdf", mtime)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "a.pdf", entries[0].Name)
	assert.Equal(t, filepath.Join(root, "a.pdf"), entries[0].Path)
	assert.True(t, entries[0].ModTime.Equal(mtime))
	assert.Equal(t, int64(len("%PDF-1.4 a.pdf")), entries[0].Size)
}

func TestDirStorePutReplacesAndLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store := NewDirStore(root, testLogger())
	ctx := context.Background()

	_, err := store.Put(ctx, "report.pdf", []byte("first"))
	require.NoError(t, err)
	entry, err := store.Put(ctx, "report.pdf", []byte("second version"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "report.pdf"), entry.Path)
	assert.Equal(t, int64(len("second version")), entry.Size)

	data, err := os.ReadFile(filepath.Join(root, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second version", string(data))

	dirEntries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, de := range dirEntries {
		assert.False(t, strings.HasSuffix(de.Name(), ".upload"), "temp file left behind: %s", de.Name())
	}
	assert.Len(t, dirEntries, 1)
}

func TestDirStorePutMissingRootIsUnavailable(t *testing.T) {
	store := NewDirStore(filepath.Join(t.TempDir(), "missing"), testLogger())

	_, err := store.Put(context.Background(), "report.pdf", []byte("x"))
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)
}

func TestDirStoreOpen(t *testing.T) {
	root := t.TempDir()
	store := NewDirStore(root, testLogger())
	mtime := time.Date(2025, 9, 9, 7, 0, 0, 0, time.UTC)
	writeReport(t, root, "a.pdf", mtime)
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.pdf"), 0o755))

	rc, entry, err := store.Open(context.Background(), "a.pdf")
	require.NoError(t, err)
	defer rc.Close()

	_, seekable := rc.(io.ReadSeeker)
	assert.True(t, seekable)
	assert.True(t, entry.ModTime.Equal(mtime))

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 a.pdf", string(data))

	_, _, err = store.Open(context.Background(), "ghost.pdf")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, _, err = store.Open(context.Background(), "dir.pdf")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}
