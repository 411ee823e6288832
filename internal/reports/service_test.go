package reports

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewService(NewDirStore(root, testLogger()), nil, testLogger())
	require.NoError(t, svc.Init(context.Background()))
	return svc, root
}

func TestListReportsOrdering(t *testing.T) {
	svc, root := newDirService(t)
	base := time.Date(2025, 9, 11, 12, 0, 0, 0, time.UTC)

	writeReport(t, root, "BBP Report 09-09-25.pdf", base.Add(5*time.Hour))
	writeReport(t, root, "Daily 2025-09-10.pdf", base)
	writeReport(t, root, "Shift 10-09-25.pdf", base.Add(time.Hour))
	writeReport(t, root, "summary.pdf", base.Add(48*time.Hour))
	writeReport(t, root, "misc.pdf", base.Add(72*time.Hour))
	writeReport(t, root, "notes.txt", base.Add(96*time.Hour))

	reports, err := svc.ListReports(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Shift 10-09-25.pdf",      // 2025-09-10, newer mtime
		"Daily 2025-09-10.pdf",    // 2025-09-10
		"BBP Report 09-09-25.pdf", // 2025-09-09
		"misc.pdf",                // no date, newest mtime
		"summary.pdf",             // no date
	}, names(reports))

	first := reports[0]
	assert.Equal(t, first.FileName, first.ID)
	assert.Equal(t, "2025-09-10", first.Date)
	assert.Equal(t, "2025-09-11T13:00:00.000Z", first.LastModified)
	assert.Equal(t, "", reports[4].Date)
}

func TestListReportsTieBreaksByName(t *testing.T) {
	svc, root := newDirService(t)
	mtime := time.Date(2025, 9, 10, 8, 30, 0, 0, time.UTC)

	writeReport(t, root, "b 2025-09-10.pdf", mtime)
	writeReport(t, root, "a 2025-09-10.pdf", mtime)
	writeReport(t, root, "c 2025-09-10.pdf", mtime)

	for i := 0; i < 3; i++ {
		reports, err := svc.ListReports(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"a 2025-09-10.pdf", "b 2025-09-10.pdf", "c 2025-09-10.pdf"}, names(reports))
	}
}

func TestListReportsEmptyArchive(t *testing.T) {
	svc, _ := newDirService(t)

	reports, err := svc.ListReports(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestUploadThenOpenRoundTrip(t *testing.T) {
	svc, root := newDirService(t)
	content := samplePDF(t, "BBP Report")

	entry, err := svc.UploadReport(context.Background(), "BBP Report 10-09-25.pdf", dataURL(content))
	require.NoError(t, err)
	assert.Equal(t, root+string(os.PathSeparator)+"BBP Report 10-09-25.pdf", entry.Path)

	rc, _, err := svc.OpenReport(context.Background(), "BBP Report 10-09-25.pdf")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadDecodeFailureWritesNothing(t *testing.T) {
	svc, root := newDirService(t)
	writeReport(t, root, "keep.pdf", time.Now())

	_, err := svc.UploadReport(context.Background(), "keep.pdf", "no-comma-here")
	assert.True(t, errors.Is(err, ErrDecodeFailure), "got %v", err)

	_, err = svc.UploadReport(context.Background(), "new.pdf", "data:application/pdf;base64,***")
	assert.True(t, errors.Is(err, ErrDecodeFailure), "got %v", err)

	data, err := os.ReadFile(root + "/keep.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 keep.pdf", string(data))

	dirEntries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, dirEntries, 1)
}

func TestUploadRejectsTraversal(t *testing.T) {
	svc, _ := newDirService(t)

	for _, name := range []string{"../x.pdf", "a/b.pdf", ".", "..", ""} {
		_, err := svc.UploadReport(context.Background(), name, dataURL([]byte("%PDF")))
		assert.True(t, errors.Is(err, ErrInvalidFileName), "%q: got %v", name, err)

		_, _, err = svc.OpenReport(context.Background(), name)
		assert.True(t, errors.Is(err, ErrInvalidFileName), "%q: got %v", name, err)
	}
}

func TestUploadWithPDFValidation(t *testing.T) {
	root := t.TempDir()
	svc := NewService(NewDirStore(root, testLogger()), PDFCPUValidator{}, testLogger())

	_, err := svc.UploadReport(context.Background(), "valid.pdf", dataURL(samplePDF(t, "ok")))
	require.NoError(t, err)

	_, err = svc.UploadReport(context.Background(), "junk.pdf", dataURL([]byte("definitely not a pdf")))
	assert.True(t, errors.Is(err, ErrDecodeFailure), "got %v", err)

	_, err = os.Stat(root + "/junk.pdf")
	assert.True(t, os.IsNotExist(err))
}

func TestOpenMissingIsNotFound(t *testing.T) {
	svc, _ := newDirService(t)

	_, _, err := svc.OpenReport(context.Background(), "ghost.pdf")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}
