package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/archdrive/internal/flagx"
	"github.com/dmitrijs2005/archdrive/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration, so both "10s" and integer nanoseconds are accepted.
// Only fields present (non-zero) in the file override the current Config.
type JsonConfig struct {
	HTTPAddr               string         `json:"http_addr"`
	LogLevel               string         `json:"log_level"`
	StorageBackend         string         `json:"storage_backend"`
	R2AccountID            string         `json:"r2_account_id"`
	R2AccessKey            string         `json:"r2_access_key"`
	R2SecretKey            string         `json:"r2_secret_key"`
	R2Endpoint             string         `json:"r2_endpoint"`
	R2Region               string         `json:"r2_region"`
	R2Bucket               string         `json:"r2_bucket"`
	R2PublicURL            string         `json:"r2_public_url"`
	UploadMaxAttempts      int            `json:"upload_max_attempts"`
	UploadBaseDelay        timex.Duration `json:"upload_base_delay"`
	UploadMaxDelay         timex.Duration `json:"upload_max_delay"`
	MaxUploadBytes         int64          `json:"max_upload_bytes"`
	FolderCountConcurrency int            `json:"folder_count_concurrency"`
	AllowedOrigins         []string       `json:"allowed_origins"`
	ShutdownTimeout        timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config into config. Nothing happens
// when no path is given; unreadable files or invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.R2AccountID, c.R2AccountID)
	setString(&config.R2AccessKey, c.R2AccessKey)
	setString(&config.R2SecretKey, c.R2SecretKey)
	setString(&config.R2Endpoint, c.R2Endpoint)
	setString(&config.R2Region, c.R2Region)
	setString(&config.R2Bucket, c.R2Bucket)
	setString(&config.R2PublicURL, c.R2PublicURL)

	if c.UploadMaxAttempts != 0 {
		config.UploadMaxAttempts = c.UploadMaxAttempts
	}
	if c.UploadBaseDelay.Duration != 0 {
		config.UploadBaseDelay = c.UploadBaseDelay.Duration
	}
	if c.UploadMaxDelay.Duration != 0 {
		config.UploadMaxDelay = c.UploadMaxDelay.Duration
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.FolderCountConcurrency != 0 {
		config.FolderCountConcurrency = c.FolderCountConcurrency
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
