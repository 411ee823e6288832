package reports

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/ops-dashboard/internal/blob"
)

func TestObjectStoreListsDirectPDFChildren(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore("ops-archive")
	store := NewObjectStore(blobs, "reports/", testLogger())

	for _, key := range []string{"reports/a 2025-09-10.pdf", "reports/notes.txt", "reports/old/b.pdf", "other/c.pdf"} {
		_, err := blobs.PutObject(ctx, key, []byte("%PDF"), "application/pdf")
		require.NoError(t, err)
	}

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a 2025-09-10.pdf", entries[0].Name)
	assert.Equal(t, "mem://ops-archive/reports/a 2025-09-10.pdf", entries[0].Path)
	assert.Equal(t, "mem://ops-archive/reports/", store.Location())
}

func TestObjectStoreServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore("ops-archive")
	svc := NewService(NewObjectStore(blobs, "reports/", testLogger()), nil, testLogger())
	require.NoError(t, svc.Init(ctx))

	clock := time.Date(2025, 9, 10, 6, 0, 0, 0, time.UTC)
	blobs.SetClock(func() time.Time { return clock })
	_, err := svc.UploadReport(ctx, "Daily 2025-09-09.pdf", dataURL([]byte("%PDF older")))
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	entry, err := svc.UploadReport(ctx, "Daily 2025-09-10.pdf", dataURL([]byte("%PDF newer")))
	require.NoError(t, err)
	assert.Equal(t, "mem://ops-archive/reports/Daily 2025-09-10.pdf", entry.Path)

	reports, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily 2025-09-10.pdf", "Daily 2025-09-09.pdf"}, names(reports))
	assert.Equal(t, "2025-09-10T07:00:00.000Z", reports[0].LastModified)

	rc, _, err := svc.OpenReport(ctx, "Daily 2025-09-10.pdf")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF newer", string(got))

	_, _, err = svc.OpenReport(ctx, "ghost.pdf")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestObjectStoreEnsureReportsUnreachableBucket(t *testing.T) {
	blobs := blob.NewMemoryStore("ops-archive")
	blobs.SetPingError(errors.New("bucket does not exist"))

	err := NewObjectStore(blobs, "reports/", testLogger()).Ensure(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnavailable), "got %v", err)
}
