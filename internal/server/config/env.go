package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/archdrive/internal/flagx"
)

// Environment variable names read by parseEnv.
const (
	EnvHTTPAddr               = "HTTP_ADDR"
	EnvLogLevel               = "LOG_LEVEL"
	EnvStorageBackend         = "STORAGE_BACKEND"
	EnvR2AccountID            = "R2_ACCOUNT_ID"
	EnvR2AccessKey            = "R2_ACCESS_KEY"
	EnvR2SecretKey            = "R2_SECRET_KEY"
	EnvR2Endpoint             = "R2_ENDPOINT"
	EnvR2Region               = "R2_REGION"
	EnvR2Bucket               = "R2_BUCKET"
	EnvR2PublicURL            = "R2_PUBLIC_URL"
	EnvUploadMaxAttempts      = "UPLOAD_MAX_ATTEMPTS"
	EnvUploadBaseDelay        = "UPLOAD_BASE_DELAY"
	EnvUploadMaxDelay         = "UPLOAD_MAX_DELAY"
	EnvMaxUploadBytes         = "MAX_UPLOAD_BYTES"
	EnvFolderCountConcurrency = "FOLDER_COUNT_CONCURRENCY"
	EnvAllowedOrigins         = "CORS_ALLOWED_ORIGINS"
	EnvShutdownTimeout        = "SHUTDOWN_TIMEOUT"
)

// parseEnv overlays values from the process environment.
//
// The dotenv file given with -env is loaded first (a missing explicit file
// panics, like a broken JSON config). Without -env, a ./.env file is loaded
// if it exists. godotenv never overrides variables that are already set.
//
// Durations accept Go duration strings ("10s"); integers are taken as
// seconds. Unparseable numbers panic.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.HTTPAddr, EnvHTTPAddr)
	envString(&config.LogLevel, EnvLogLevel)
	envString(&config.StorageBackend, EnvStorageBackend)
	envString(&config.R2AccountID, EnvR2AccountID)
	envString(&config.R2AccessKey, EnvR2AccessKey)
	envString(&config.R2SecretKey, EnvR2SecretKey)
	envString(&config.R2Endpoint, EnvR2Endpoint)
	envString(&config.R2Region, EnvR2Region)
	envString(&config.R2Bucket, EnvR2Bucket)
	envString(&config.R2PublicURL, EnvR2PublicURL)
	envInt(&config.UploadMaxAttempts, EnvUploadMaxAttempts)
	envDuration(&config.UploadBaseDelay, EnvUploadBaseDelay)
	envDuration(&config.UploadMaxDelay, EnvUploadMaxDelay)
	envInt64(&config.MaxUploadBytes, EnvMaxUploadBytes)
	envInt(&config.FolderCountConcurrency, EnvFolderCountConcurrency)
	envDuration(&config.ShutdownTimeout, EnvShutdownTimeout)

	if v, ok := os.LookupEnv(EnvAllowedOrigins); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
