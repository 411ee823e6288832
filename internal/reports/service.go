package reports

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Service implements listing, upload and retrieval over a Store.
type Service struct {
	store     Store
	validator PDFValidator // nil disables validation
	logger    logrus.FieldLogger
}

// NewService creates a new reports service
func NewService(store Store, validator PDFValidator, logger logrus.FieldLogger) *Service {
	return &Service{store: store, validator: validator, logger: logger}
}

// Init prepares the archive root. Call once before serving.
func (s *Service) Init(ctx context.Context) error {
	if err := s.store.Ensure(ctx); err != nil {
		return err
	}
	s.logger.WithField("root", s.store.Location()).Info("reports: archive ready")
	return nil
}

func (s *Service) Location() string {
	return s.store.Location()
}

// ListReports returns all reports, newest filename date first.
func (s *Service) ListReports(ctx context.Context) ([]Report, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]rankedReport, len(entries))
	for i, e := range entries {
		date := ParseReportDate(e.Name)
		ranked[i] = rankedReport{
			Report: Report{
				ID:           e.Name,
				Date:         date,
				FileName:     e.Name,
				FilePath:     e.Path,
				LastModified: formatTimestamp(e.ModTime),
				SizeBytes:    e.Size,
			},
			dateKey: dateSortKey(date),
			modTime: e.ModTime,
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].before(ranked[j]) })

	reports := make([]Report, len(ranked))
	for i, r := range ranked {
		reports[i] = r.Report
	}
	return reports, nil
}

type rankedReport struct {
	Report
	dateKey time.Time
	modTime time.Time
}

// before orders by filename date desc, then mtime desc, then name asc.
func (r rankedReport) before(o rankedReport) bool {
	if !r.dateKey.Equal(o.dateKey) {
		return r.dateKey.After(o.dateKey)
	}
	if !r.modTime.Equal(o.modTime) {
		return r.modTime.After(o.modTime)
	}
	return r.FileName < o.FileName
}

// UploadReport decodes a data-URL payload and stores it under fileName.
// Nothing is written unless the payload decodes (and validates, if enabled).
func (s *Service) UploadReport(ctx context.Context, fileName, pdfData string) (Entry, error) {
	if err := ValidateFileName(fileName); err != nil {
		return Entry{}, err
	}

	data, err := DecodeDataURL(pdfData)
	if err != nil {
		return Entry{}, err
	}

	if s.validator != nil {
		if err := s.validator.Validate(data); err != nil {
			return Entry{}, err
		}
	}

	entry, err := s.store.Put(ctx, fileName, data)
	if err != nil {
		return Entry{}, fmt.Errorf("store %s: %w", fileName, err)
	}

	s.logger.WithFields(logrus.Fields{
		"file": fileName,
		"size": entry.Size,
	}).Info("reports: stored")
	return entry, nil
}

// OpenReport streams a stored report. The caller closes the reader.
func (s *Service) OpenReport(ctx context.Context, fileName string) (io.ReadCloser, Entry, error) {
	if err := ValidateFileName(fileName); err != nil {
		return nil, Entry{}, err
	}
	return s.store.Open(ctx, fileName)
}
