package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/config"
	"github.com/fdg312/ops-dashboard/internal/httpserver"
	"github.com/fdg312/ops-dashboard/internal/logger"
)

func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL logger: %v", err)
	}
	// config and startup helpers still use the standard logger
	log.SetFlags(0)
	log.SetOutput(appLog.WriterLevel(logrus.InfoLevel))

	printStartupBanner(cfg)
	validateProductionConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := httpserver.New(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("startup failed")
	}
	defer server.Close()

	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("server stopped")
	}
	appLog.Info("server stopped")
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are only shown as "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Ops Dashboard Report Store ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)
	log.Printf("  log              = level=%s format=%s output=%s", cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)

	// ---- Reports ----
	log.Println("---- reports ----")
	log.Printf("  reports_mode     = %s", cfg.Blob.Mode)
	switch cfg.Blob.Mode {
	case config.BlobModeLocal:
		log.Printf("  reports_dir      = %s", cfg.ReportsDir)
	case config.BlobModeS3:
		log.Printf("  reports_prefix   = %s", nonEmptyOrDash(cfg.Blob.Prefix))
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	case config.BlobModeGCS:
		log.Printf("  reports_prefix   = %s", nonEmptyOrDash(cfg.Blob.Prefix))
		log.Printf("  gcs: %s", cfg.Blob.GCS.DiagnosticsSummary())
	case config.BlobModeAuto:
		log.Printf("  reports_dir      = %s (fallback)", cfg.ReportsDir)
		log.Printf("  reports_prefix   = %s", nonEmptyOrDash(cfg.Blob.Prefix))
	}
	log.Printf("  validate_pdf     = %t", cfg.ReportsValidatePDF)
	log.Printf("  upload_max_mb    = %d", cfg.UploadMaxMB)

	// ---- Auth ----
	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	if cfg.AuthMode != config.AuthModeNone {
		log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
		log.Printf("  jwt_issuer       = %s", cfg.JWTIssuer)
	}

	// ---- HTTP ----
	log.Println("---- http ----")
	log.Printf("  cors_origins     = %s", nonEmptyOrDash(strings.Join(cfg.CORSAllowedOrigins, ",")))
	if cfg.RateLimitRPS > 0 {
		log.Printf("  rate_limit       = %d rps (burst %d)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	} else {
		log.Printf("  rate_limit       = off")
	}

	log.Println("================================================")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: REPORTS_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}
	if cfg.Blob.Mode == config.BlobModeGCS && !cfg.Blob.GCS.IsConfigured() {
		log.Fatal("FATAL blob: REPORTS_MODE is 'gcs' but GCS_BUCKET is not set")
	}

	// JWT_SECRET must not be default once tokens are verified
	if isProd && cfg.AuthMode != config.AuthModeNone && cfg.JWTSecret == "change_me" {
		log.Fatalf("FATAL auth: JWT_SECRET must not be 'change_me' in %s with AUTH_MODE=%s", cfg.Env, cfg.AuthMode)
	}

	if isProd && cfg.AuthMode == config.AuthModeDev {
		log.Fatalf("FATAL auth: AUTH_MODE=dev is not allowed in %s", cfg.Env)
	}
}

// ---- helpers (no secrets) ----

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}
