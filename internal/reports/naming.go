package reports

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxFileNameBytes = 255

var (
	isoDatePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	shortDatePattern = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{2})`)
)

// ValidateFileName rejects names that could escape the archive root or that
// no filesystem would accept as a single path segment.
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidFileName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidFileName, name)
	case len(name) > maxFileNameBytes:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidFileName, maxFileNameBytes)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidFileName, name)
	}
	return nil
}

// IsReportName reports whether name is visible in listings.
func IsReportName(name string) bool {
	return strings.HasSuffix(name, ReportSuffix)
}

// ParseReportDate derives the report date from a file name. A YYYY-MM-DD
// substring wins; otherwise DD-MM-YY becomes 20YY-MM-DD. No match gives "".
// The digits are not range-checked: "2025-13-45" comes back verbatim.
func ParseReportDate(name string) string {
	if m := isoDatePattern.FindString(name); m != "" {
		return m
	}
	if m := shortDatePattern.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("20%s-%s-%s", m[3], m[2], m[1])
	}
	return ""
}

// dateSortKey turns a derived date into a comparable instant. Missing or
// impossible dates sort as the epoch.
func dateSortKey(date string) time.Time {
	if date == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// contentTypeFor is the download Content-Type of a stored file.
func contentTypeFor(name string) string {
	if IsReportName(name) {
		return "application/pdf"
	}
	return "application/octet-stream"
}
