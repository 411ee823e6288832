package reports

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/apierr"
	"github.com/fdg312/ops-dashboard/internal/userctx"
)

// Handlers handles HTTP requests for reports
type Handlers struct {
	service        *Service
	validate       *validator.Validate
	logger         logrus.FieldLogger
	maxUploadBytes int64
}

// NewHandlers creates new handlers. maxUploadMB caps the decoded PDF size;
// the request body limit is derived from it.
func NewHandlers(service *Service, maxUploadMB int, logger logrus.FieldLogger) *Handlers {
	return &Handlers{
		service:        service,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger,
		maxUploadBytes: bodyLimit(maxUploadMB),
	}
}

// bodyLimit allows for base64 growth (4/3) plus the JSON envelope.
func bodyLimit(maxUploadMB int) int64 {
	decoded := int64(maxUploadMB) << 20
	return decoded*4/3 + 64<<10
}

// HandleList handles GET /api/reports
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, reports)
}

// HandleUpload handles POST /api/reports
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierr.Write(w, http.StatusRequestEntityTooLarge, apierr.CodePayloadTooLarge, "Report too large",
				"limit is "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes of request body")
			return
		}
		apierr.Write(w, http.StatusBadRequest, apierr.CodeInvalidRequest, "Invalid JSON", "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		apierr.Write(w, http.StatusBadRequest, apierr.CodeInvalidRequest, "fileName and pdfData are required", "")
		return
	}

	entry, err := h.service.UploadReport(r.Context(), req.FileName, req.PDFData)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	apierr.WriteJSON(w, http.StatusOK, UploadResponse{Success: true, FilePath: entry.Path})
}

// HandleDownload handles GET /api/reports/{filename}
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	rc, entry, err := h.service.OpenReport(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, entry.ModTime, rs)
		return
	}

	if !entry.ModTime.IsZero() {
		w.Header().Set("Last-Modified", entry.ModTime.UTC().Format(http.TimeFormat))
	}
	if entry.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(entry.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.requestLogger(r).WithError(err).WithField("file", name).Warn("reports: download interrupted")
	}
}

// writeServiceError maps service errors to the public error taxonomy.
// Wrapped detail stays in the log.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.requestLogger(r).WithError(err)

	switch {
	case errors.Is(err, ErrInvalidFileName):
		log.Info("reports: invalid file name")
		apierr.Write(w, http.StatusBadRequest, apierr.CodeInvalidFileName, "Invalid file name",
			"file name must be a single path segment without / or \\")
	case errors.Is(err, ErrDecodeFailure):
		log.Info("reports: undecodable payload")
		apierr.Write(w, http.StatusBadRequest, apierr.CodeDecodeFailure, "Invalid PDF data",
			"pdfData must be a data URL: <prefix>,<base64>")
	case errors.Is(err, ErrNotFound):
		apierr.Write(w, http.StatusNotFound, apierr.CodeNotFound, "File not found", "")
	case errors.Is(err, ErrStoreUnavailable):
		log.Error("reports: store unavailable")
		apierr.Write(w, http.StatusInternalServerError, apierr.CodeStoreUnavailable, "Report store unavailable", "")
	case errors.Is(err, ErrIO):
		log.Error("reports: store i/o failure")
		apierr.Write(w, http.StatusInternalServerError, apierr.CodeIOFailure, "Failed to access report store", "")
	default:
		log.Error("reports: unexpected error")
		apierr.Write(w, http.StatusInternalServerError, apierr.CodeInternal, "Internal server error", "")
	}
}

func (h *Handlers) requestLogger(r *http.Request) logrus.FieldLogger {
	return h.logger.WithFields(logrus.Fields{
		"request_id": userctx.GetRequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}

