// Package config handles configuration for the ArchDrive gateway,
// including defaults, environment (.env) overlay, JSON overlay and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage backends understood by the server.
const (
	BackendR2     = "r2"
	BackendMemory = "memory"
)

// Config holds runtime settings for the gateway.
//
// Fields:
//   - HTTPAddr: bind address of the REST endpoint.
//   - LogLevel: debug, info, warn or error.
//   - StorageBackend: "r2" for the S3-compatible store, "memory" for local runs.
//   - R2AccountID / R2AccessKey / R2SecretKey: Cloudflare R2 account and credentials.
//   - R2Endpoint / R2Region / R2Bucket: object store location. Endpoint defaults to
//     the account endpoint when left empty.
//   - R2PublicURL: optional public base URL used instead of the account URL template.
//   - UploadMaxAttempts / UploadBaseDelay / UploadMaxDelay: upload retry policy.
//     Delay grows linearly (attempt * base); MaxDelay caps it when non-zero.
//   - MaxUploadBytes: largest payload accepted into memory.
//   - FolderCountConcurrency: parallel inner listings when counting folder files.
//   - AllowedOrigins: CORS origins for the browser frontend.
//   - ShutdownTimeout: graceful shutdown budget for the HTTP server.
type Config struct {
	HTTPAddr               string
	LogLevel               string
	StorageBackend         string
	R2AccountID            string
	R2AccessKey            string
	R2SecretKey            string
	R2Endpoint             string
	R2Region               string
	R2Bucket               string
	R2PublicURL            string
	UploadMaxAttempts      int
	UploadBaseDelay        time.Duration
	UploadMaxDelay         time.Duration
	MaxUploadBytes         int64
	FolderCountConcurrency int
	AllowedOrigins         []string
	ShutdownTimeout        time.Duration
}

// LoadDefaults populates Config with development defaults.
// Credentials are left empty on purpose and must come from env, JSON or flags.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.LogLevel = "info"
	c.StorageBackend = BackendR2
	c.R2Region = "auto"
	c.R2Bucket = "archdrive"
	c.UploadMaxAttempts = 10
	c.UploadBaseDelay = 10 * time.Second
	c.UploadMaxDelay = 0
	c.MaxUploadBytes = 512 << 20
	c.FolderCountConcurrency = 4
	c.AllowedOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://arch-drive.vercel.app",
		"https://arch-drive-aarchivists-projects.vercel.app",
	}
	c.ShutdownTimeout = 30 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (optionally seeded from a .env file), an optional
// JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Endpoint returns the S3 API endpoint, deriving the R2 account endpoint
// when none is configured.
func (c *Config) Endpoint() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	if c.R2AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
	}
	return ""
}

// Validate performs the non-empty checks needed before the store client is
// built. Everything else is left to the object store at call time.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if strings.TrimSpace(c.R2Bucket) == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if c.UploadMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("upload max attempts must be >= 1, got %d", c.UploadMaxAttempts))
	}
	if c.UploadBaseDelay < 0 || c.UploadMaxDelay < 0 {
		errs = append(errs, errors.New("upload delays must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendR2:
		if c.Endpoint() == "" {
			errs = append(errs, errors.New("endpoint or account id is required"))
		}
		if c.R2AccessKey == "" || c.R2SecretKey == "" {
			errs = append(errs, errors.New("access key and secret key are required"))
		}
		if c.R2PublicURL == "" && c.R2AccountID == "" {
			errs = append(errs, errors.New("account id is required when no public url is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	return errors.Join(errs...)
}
