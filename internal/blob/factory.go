package blob

import (
	"context"
	"fmt"
	"strings"

	appcfg "github.com/fdg312/ops-dashboard/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewBlobStore builds the object store for the report archive using mode
// local|s3|gcs|auto. Local mode returns a nil store: the archive is a directory.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logf(logger, "INFO blob: mode=local (forced)")
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if cfg.S3.IsConfigured() {
			logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.S3.DiagnosticsSummary())
			store, err := NewS3Store(ctx, cfg.S3)
			if err != nil {
				logf(logger, "WARN blob.s3: init_failed=%q, fallback=local", err.Error())
				return nil, appcfg.BlobModeLocal, nil
			}
			logf(logger, "INFO blob: mode=s3 (auto, configured)")
			return store, appcfg.BlobModeS3, nil
		}

		level, code, msg := cfg.S3.Diagnostics()
		logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
		logf(logger, "INFO blob.s3: %s", cfg.S3.DiagnosticsSummary())

		if cfg.GCS.IsConfigured() {
			logf(logger, "INFO blob.gcs: code=gcs_ready %s", cfg.GCS.DiagnosticsSummary())
			store, err := NewGCSStore(ctx, cfg.GCS)
			if err != nil {
				logf(logger, "WARN blob.gcs: init_failed=%q, fallback=local", err.Error())
				return nil, appcfg.BlobModeLocal, nil
			}
			logf(logger, "INFO blob: mode=gcs (auto, configured)")
			return store, appcfg.BlobModeGCS, nil
		}

		logf(logger, "INFO blob: mode=local (auto, no bucket configured)")
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
			logf(logger, "FATAL blob.s3: %s", cfg.S3.DiagnosticsSummary())
			return nil, "", fmt.Errorf("REPORTS_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		logf(logger, "INFO blob.s3: code=s3_ready %s", cfg.S3.DiagnosticsSummary())
		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			logf(logger, "FATAL blob.s3: init_failed=%v", err)
			return nil, "", fmt.Errorf("REPORTS_MODE=s3 init failed: %w", err)
		}

		logf(logger, "INFO blob: mode=s3 (forced)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeGCS:
		if !cfg.GCS.IsConfigured() {
			logf(logger, "FATAL blob.gcs: code=gcs_config_incomplete missing=[GCS_BUCKET]")
			return nil, "", fmt.Errorf("REPORTS_MODE=gcs requested but missing required config: GCS_BUCKET")
		}

		logf(logger, "INFO blob.gcs: code=gcs_ready %s", cfg.GCS.DiagnosticsSummary())
		store, err := NewGCSStore(ctx, cfg.GCS)
		if err != nil {
			logf(logger, "FATAL blob.gcs: init_failed=%v", err)
			return nil, "", fmt.Errorf("REPORTS_MODE=gcs init failed: %w", err)
		}

		logf(logger, "INFO blob: mode=gcs (forced)")
		return store, appcfg.BlobModeGCS, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
