package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeGCS   = "gcs"
	BlobModeAuto  = "auto"
)

const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
	AuthModeDev  = "dev"
)

type S3Config struct {
	Endpoint        string `env:"S3_ENDPOINT"`
	Region          string `env:"S3_REGION"`
	Bucket          string `env:"S3_BUCKET"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE"`
}

// MissingRequired lists the S3 env keys that must be set before the archive
// can live in a bucket. S3_ENDPOINT is optional (empty means AWS itself).
func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s path_style=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		c.UsePathStyle,
		SetOrNot(c.AccessKeyID),
		SetOrNot(c.SecretAccessKey),
	)
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

func (c GCSConfig) IsConfigured() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

func (c GCSConfig) DiagnosticsSummary() string {
	return fmt.Sprintf("bucket=%s credentials_file=%s",
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.CredentialsFile),
	)
}

// BlobConfig selects where the report archive lives. In local mode the
// archive is Config.ReportsDir; otherwise it is Prefix inside a bucket.
type BlobConfig struct {
	Mode   string `env:"REPORTS_MODE" envDefault:"local"` // local|s3|gcs|auto
	Prefix string `env:"REPORTS_PREFIX" envDefault:"reports/"`
	S3     S3Config
	GCS    GCSConfig
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"debug"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`   // text|json
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"` // stdout|file|both
	Path       string `env:"LOG_PATH" envDefault:"logs/ops-dashboard.log"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

// Config holds the service configuration, read from the environment.
type Config struct {
	Env  string `env:"APP_ENV"` // local | staging | production
	Port int    `env:"PORT" envDefault:"8080"`
	Log  LogConfig

	// Reports archive
	ReportsDir         string `env:"REPORTS_DIR" envDefault:"reports"`
	ReportsValidatePDF bool   `env:"REPORTS_VALIDATE_PDF"`
	UploadMaxMB        int    `env:"UPLOAD_MAX_MB" envDefault:"25"`
	Blob               BlobConfig

	// CORS
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"`

	// Rate Limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST"`

	// Authentication
	AuthMode      string `env:"AUTH_MODE" envDefault:"none"` // none | jwt | dev
	AuthRequired  bool   `env:"AUTH_REQUIRED"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"change_me"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"ops-dashboard"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" envDefault:"10080"`

	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

// Load reads the configuration and exits the process if it is unusable.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("FATAL config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the environment and normalizes it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// APP_ENV (fallback to ENV, default: local)
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = strings.ToLower(strings.TrimSpace(os.Getenv("ENV")))
	}
	if cfg.Env == "" {
		cfg.Env = "local"
	}

	cfg.ReportsDir = strings.TrimSpace(cfg.ReportsDir)
	if cfg.ReportsDir == "" {
		return nil, fmt.Errorf("REPORTS_DIR must not be empty")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 25
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		cfg.ShutdownTimeoutSeconds = 10
	}
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 10080
	}

	cfg.Blob.Mode = normalizeChoice("REPORTS_MODE", cfg.Blob.Mode, BlobModeLocal,
		BlobModeLocal, BlobModeS3, BlobModeGCS, BlobModeAuto)
	cfg.Blob.Prefix = normalizePrefix(cfg.Blob.Prefix)

	cfg.AuthMode = normalizeChoice("AUTH_MODE", cfg.AuthMode, AuthModeNone,
		AuthModeNone, AuthModeJWT, AuthModeDev)
	if cfg.AuthMode == AuthModeNone {
		cfg.AuthRequired = false
	}
	if cfg.JWTSecret == "change_me" && cfg.Env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	cfg.Log.Format = normalizeChoice("LOG_FORMAT", cfg.Log.Format, "text", "text", "json")
	cfg.Log.Output = normalizeChoice("LOG_OUTPUT", cfg.Log.Output, "stdout", "stdout", "file", "both")

	cfg.CORSAllowedOrigins = parseCORSOrigins(cfg.CORSAllowedOrigins, cfg.Env)

	return &cfg, nil
}

// parseCORSOrigins trims CORS_ALLOWED_ORIGINS entries.
// In local mode, defaults to the dashboard dev-server origins if empty.
func parseCORSOrigins(raw []string, env string) []string {
	origins := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}
	return origins
}

func normalizeChoice(key, value, defaultVal string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return defaultVal
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Printf("WARNING: unknown %s=%q, fallback to %s", key, v, defaultVal)
	return defaultVal
}

// normalizePrefix makes a bucket prefix either empty or end in exactly one "/".
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

// SetOrNot masks a secret for logging.
func SetOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}
