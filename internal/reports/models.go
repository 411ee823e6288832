package reports

import (
	"errors"
	"time"
)

// Report is the listing record for one stored PDF. It is rebuilt from the
// archive on every listing and never persisted on its own.
type Report struct {
	ID           string `json:"id"`
	Date         string `json:"date"` // YYYY-MM-DD or ""
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	LastModified string `json:"lastModified"`
	SizeBytes    int64  `json:"sizeBytes"`
}

// Entry is what a Store knows about one archived file.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// UploadRequest is the body of POST /api/reports.
// PDFData is a data URL: "<prefix>,<base64>".
type UploadRequest struct {
	FileName string `json:"fileName" validate:"required"`
	PDFData  string `json:"pdfData" validate:"required"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath"`
}

const (
	// ReportSuffix is the exact, case-sensitive suffix of a visible report.
	ReportSuffix = ".pdf"

	// lastModified wire format: UTC, millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	ErrStoreUnavailable = errors.New("report store unavailable")
	ErrDecodeFailure    = errors.New("invalid report payload")
	ErrIO               = errors.New("report store i/o failure")
	ErrNotFound         = errors.New("report not found")
	ErrInvalidFileName  = errors.New("invalid report file name")
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
