package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/apierr"
	"github.com/fdg312/ops-dashboard/internal/auth"
	"github.com/fdg312/ops-dashboard/internal/blob"
	"github.com/fdg312/ops-dashboard/internal/config"
	"github.com/fdg312/ops-dashboard/internal/reports"
)

// Server is the report store HTTP server
type Server struct {
	config         *config.Config
	logger         *logrus.Logger
	mux            *http.ServeMux
	reports        *reports.Service
	authMiddleware *auth.Middleware
	blobMode       string
	closers        []io.Closer
}

// New builds the server and prepares the report archive. The archive root
// is ensured here, once, before any request is served.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	store, err := s.initReportStore(ctx)
	if err != nil {
		return nil, err
	}

	var validator reports.PDFValidator
	if cfg.ReportsValidatePDF {
		validator = reports.PDFCPUValidator{}
	}

	s.reports = reports.NewService(store, validator, logger)
	if err := s.reports.Init(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("init report archive: %w", err)
	}

	s.routes()
	return s, nil
}

// initReportStore picks the archive backend: a directory in local mode,
// a bucket prefix otherwise.
func (s *Server) initReportStore(ctx context.Context) (reports.Store, error) {
	blobStore, mode, err := blob.NewBlobStore(ctx, s.config.Blob, s.logger)
	if err != nil {
		return nil, err
	}
	s.blobMode = mode

	if blobStore == nil {
		return reports.NewDirStore(s.config.ReportsDir, s.logger), nil
	}
	if c, ok := blobStore.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return reports.NewObjectStore(blobStore, s.config.Blob.Prefix, s.logger), nil
}

func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	authService := auth.NewService(s.config)
	s.authMiddleware = auth.NewMiddleware(s.config, authService, s.logger)
	if s.config.AuthMode == config.AuthModeDev {
		s.mux.HandleFunc("POST /api/auth/dev", auth.NewHandlers(authService).HandleDevAuth)
	}

	reportsHandlers := reports.NewHandlers(s.reports, s.config.UploadMaxMB, s.logger)
	s.mux.HandleFunc("GET /api/reports", reportsHandlers.HandleList)
	s.mux.HandleFunc("POST /api/reports", reportsHandlers.HandleUpload)
	s.mux.HandleFunc("GET /api/reports/{filename}", reportsHandlers.HandleDownload)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierr.Write(w, http.StatusMethodNotAllowed, apierr.CodeMethodNotAllowed, "Method not allowed", "")
		return
	}

	apierr.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Handler returns the router wrapped in the middleware chain
// (outermost first): RequestLog → Recover → CORS → Rate Limit → Auth → Router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.Wrap(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = RecoverMiddleware(s.logger, handler)
	handler = RequestLogMiddleware(s.logger, handler)
	return handler
}

// BlobMode reports the archive backend chosen at startup.
func (s *Server) BlobMode() string {
	return s.blobMode
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to SHUTDOWN_TIMEOUT_SECONDS.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"archive": s.reports.Location(),
		}).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// Close releases backend clients.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
