// Package config provides configuration loading and validation for the profile wizard service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that reads from JSON strings such as "500ms".
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values fall back to Defaults().
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Storage
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL for saved profiles
	RedisURL    string   `json:"redis_url,omitempty"`    // Redis URL for wizard sessions; empty uses memory
	SessionTTL  Duration `json:"session_ttl,omitempty"`  // Lifetime of an idle wizard session

	// Wizard timing
	StepCommitDelay Duration `json:"step_commit_delay,omitempty"` // Loading window before Next is committed
	SaveDelay       Duration `json:"save_delay,omitempty"`        // Loading window before Save runs

	// Uploads
	S3Bucket         string   `json:"s3_bucket,omitempty"`
	S3Region         string   `json:"s3_region,omitempty"`
	S3Endpoint       string   `json:"s3_endpoint,omitempty"` // set for MinIO
	S3AccessKey      string   `json:"s3_access_key,omitempty"`
	S3SecretKey      string   `json:"s3_secret_key,omitempty"`
	UploadURLExpires Duration `json:"upload_url_expires,omitempty"`

	// Events
	KafkaBrokers []string `json:"kafka_brokers,omitempty"`
	KafkaTopic   string   `json:"kafka_topic,omitempty"`

	// Schema
	ProfileSchema string `json:"profile_schema,omitempty"` // Path to the worker profile JSON Schema

	// Logging
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn, error
	LogEncoding string `json:"log_encoding,omitempty"` // json or console
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:             8080,
		SessionTTL:       Duration(24 * time.Hour),
		StepCommitDelay:  Duration(300 * time.Millisecond),
		SaveDelay:        Duration(500 * time.Millisecond),
		S3Region:         "ap-northeast-2",
		UploadURLExpires: Duration(15 * time.Minute),
		KafkaTopic:       "worker-profile.events",
		ProfileSchema:    "schemas/worker_profile.schema.json",
		LogLevel:         "info",
		LogEncoding:      "json",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3Endpoint, "S3_ENDPOINT")
	setString(&c.S3AccessKey, "S3_ACCESS_KEY")
	setString(&c.S3SecretKey, "S3_SECRET_KEY")
	setString(&c.KafkaTopic, "KAFKA_TOPIC")
	setString(&c.ProfileSchema, "PROFILE_SCHEMA")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogEncoding, "LOG_ENCODING")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}

	durations := []struct {
		key string
		dst *Duration
	}{
		{"SESSION_TTL", &c.SessionTTL},
		{"STEP_COMMIT_DELAY", &c.StepCommitDelay},
		{"SAVE_DELAY", &c.SaveDelay},
		{"UPLOAD_URL_EXPIRES", &c.UploadURLExpires},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", d.key, err)
			}
			*d.dst = Duration(parsed)
		}
	}

	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config error: 'session_ttl' must be non-negative")
	}
	if c.StepCommitDelay < 0 || c.SaveDelay < 0 {
		return fmt.Errorf("config error: delays must be non-negative")
	}
	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("config error: 's3_access_key' and 's3_secret_key' must be set together")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("config error: 'kafka_topic' is required when brokers are configured")
	}
	switch c.LogEncoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_encoding' must be json or console")
	}

	if c.ProfileSchema != "" {
		if _, err := os.Stat(c.ProfileSchema); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile schema not found: %s", c.ProfileSchema)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.S3Bucket == "" {
		result.S3Bucket = defaults.S3Bucket
	}
	if result.S3Region == "" {
		result.S3Region = defaults.S3Region
	}
	if result.S3Endpoint == "" {
		result.S3Endpoint = defaults.S3Endpoint
	}
	if result.KafkaTopic == "" {
		result.KafkaTopic = defaults.KafkaTopic
	}
	if result.ProfileSchema == "" {
		result.ProfileSchema = defaults.ProfileSchema
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogEncoding == "" {
		result.LogEncoding = defaults.LogEncoding
	}
	if len(result.KafkaBrokers) == 0 {
		result.KafkaBrokers = defaults.KafkaBrokers
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.UploadURLExpires == 0 {
		result.UploadURLExpires = defaults.UploadURLExpires
	}

	// A zero delay in the file cannot be told apart from unset
	if result.StepCommitDelay == 0 {
		result.StepCommitDelay = defaults.StepCommitDelay
	}
	if result.SaveDelay == 0 {
		result.SaveDelay = defaults.SaveDelay
	}

	return result
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
