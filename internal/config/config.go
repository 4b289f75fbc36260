// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// In Go, we typically use structs to hold configuration, and a function to
// load values from environment variables.
//
// An optional YAML file (CONFIG_FILE) can supply the same keys. Precedence
// is: environment variable, then config file, then built-in default.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSessionSecret is the development signing secret. Release mode
// refuses to start with it.
const DefaultSessionSecret = "dev-session-secret-change-in-production"

// Config holds all application configuration.
// Go Pattern: We use exported (capitalized) fields so other packages can read them.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// Database settings: postgres://... or sqlite://path
	DatabaseURL string

	// Sessions
	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration // 0 disables the background sweeper

	// PDF conversion
	PdftotextPath     string // Empty disables the external converter
	ConversionTimeout time.Duration
	AnalyzeTimeout    time.Duration // Queue wait plus conversion for one upload
	MaxUploadBytes    int64

	// Worker settings
	WorkerCount  int // Number of concurrent conversions
	JobQueueSize int // Size of the in-memory job queue buffer

	// Rate limiting
	AuthRatePerMinute    int // Register/login attempts per client IP
	AnalyzeRatePerMinute int // Uploads per user (or IP when anonymous)

	// CORS
	AllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"
}

// Load reads configuration from the environment and the optional CONFIG_FILE.
//
// Go Pattern: Functions that can fail return (value, error). This is Go's
// alternative to exceptions: the caller MUST handle the error.
func Load() (*Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg := &Config{
		// Server defaults
		Port:    src.get("PORT", "8080"),
		GinMode: src.get("GIN_MODE", "debug"),

		// Local SQLite file unless a real database is configured
		DatabaseURL: src.get("DATABASE_URL", "sqlite://real_estate_analyzer.db"),

		SessionSecret:        src.get("SESSION_SECRET", DefaultSessionSecret),
		SessionTTL:           time.Duration(src.getInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		SessionSweepInterval: time.Duration(src.getInt("SESSION_SWEEP_MINUTES", 60)) * time.Minute,

		PdftotextPath:     src.get("PDFTOTEXT_PATH", findPdftotext()),
		ConversionTimeout: time.Duration(src.getInt("CONVERSION_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxUploadBytes:    int64(src.getInt("MAX_UPLOAD_MB", 25)) << 20,

		// Worker defaults
		WorkerCount:  src.getInt("WORKER_COUNT", 3),
		JobQueueSize: src.getInt("JOB_QUEUE_SIZE", 100),

		AuthRatePerMinute:    src.getInt("AUTH_RATE_PER_MINUTE", 20),
		AnalyzeRatePerMinute: src.getInt("ANALYZE_RATE_PER_MINUTE", 30),

		// CORS: the original frontend ports
		AllowedOrigins: splitList(src.get("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:3001,http://localhost:9000")),

		LogLevel:  src.get("LOG_LEVEL", "info"),
		LogFormat: src.get("LOG_FORMAT", "json"),
	}

	// An upload may wait for a worker, so its deadline sits above a single conversion.
	defaultAnalyze := int((cfg.ConversionTimeout + 15*time.Second) / time.Second)
	cfg.AnalyzeTimeout = time.Duration(src.getInt("ANALYZE_TIMEOUT_SECONDS", defaultAnalyze)) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", cfg.GinMode)
	}
	if cfg.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.JobQueueSize < 1 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be at least 1, got %d", cfg.JobQueueSize)
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if cfg.AnalyzeTimeout <= 0 {
		return fmt.Errorf("ANALYZE_TIMEOUT_SECONDS must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if cfg.AuthRatePerMinute < 1 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE must be at least 1, got %d", cfg.AuthRatePerMinute)
	}
	if cfg.AnalyzeRatePerMinute < 1 {
		return fmt.Errorf("ANALYZE_RATE_PER_MINUTE must be at least 1, got %d", cfg.AnalyzeRatePerMinute)
	}

	// Security: the signing secret MUST be set in production mode.
	if cfg.GinMode == "release" && cfg.SessionSecret == DefaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production; refusing to start with default secret")
	}
	return nil
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

// get reads a setting with a fallback default.
// Go Pattern: Small helper functions are idiomatic. Go favors simple,
// composable functions over complex frameworks.
func (s source) get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := s.file[key]; ok {
		return value
	}
	return fallback
}

// getInt reads an integer setting with a fallback. Unparseable values use
// the fallback.
func (s source) getInt(key string, fallback int) int {
	str := s.get(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// readFile loads a flat YAML mapping of setting names to scalar values.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// findPdftotext looks for the poppler pdftotext binary on PATH.
func findPdftotext() string {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		return ""
	}
	return path
}
