// Package config loads runtime configuration from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/gocontext-qa/internal/observability"
)

const defaultEnvPath = ".env"

// Config holds every runtime setting
type Config struct {
	DBPath             string
	BenchDir           string
	QuerySetPath       string // empty uses the built-in query set
	RepositoryID       uint64
	DefaultLimit       int
	BenchK             int
	EmbeddingDimension int
	EmbeddingCacheSize int
	LoadTestWorkers    int
	LoadTestDuration   time.Duration
	HTTPAddr           string
	Log                observability.LogConfig
}

// LoadDotEnv loads envPath, or ENV_PATH, or .env into the process
// environment. A missing file is not an error; existing variables win.
func LoadDotEnv(envPath string) error {
	if envPath == "" {
		envPath = os.Getenv("ENV_PATH")
	}
	if envPath == "" {
		envPath = defaultEnvPath
	}

	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Skipping .env ...", "path", envPath)
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

// Load reads the dotenv file and builds a validated Config
func Load(envPath string) (*Config, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return nil, err
	}
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables and defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:       getString("GOCONTEXT_DB_PATH", ".gocontext/index.db"),
		BenchDir:     getString("GOCONTEXT_BENCH_DIR", ".gocontext/bench"),
		QuerySetPath: os.Getenv("GOCONTEXT_QUERY_SET"),
		HTTPAddr:     getString("GOCONTEXT_HTTP_ADDR", ":8080"),
		Log: observability.LogConfig{
			Level:  getString("GOCONTEXT_LOG_LEVEL", "info"),
			Format: getString("GOCONTEXT_LOG_FORMAT", "json"),
		},
	}

	var err error
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"GOCONTEXT_SEARCH_LIMIT", 10, &cfg.DefaultLimit},
		{"GOCONTEXT_BENCH_K", 10, &cfg.BenchK},
		{"GOCONTEXT_EMBED_DIM", 384, &cfg.EmbeddingDimension},
		{"GOCONTEXT_EMBED_CACHE", 1000, &cfg.EmbeddingCacheSize},
		{"GOCONTEXT_LOADTEST_WORKERS", 4, &cfg.LoadTestWorkers},
	}
	for _, i := range ints {
		if *i.dest, err = getInt(i.key, i.def); err != nil {
			return nil, err
		}
	}

	if raw := strings.TrimSpace(os.Getenv("GOCONTEXT_REPOSITORY_ID")); raw != "" {
		if cfg.RepositoryID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("GOCONTEXT_REPOSITORY_ID must be a non-negative integer: %w", err)
		}
	} else {
		cfg.RepositoryID = 1
	}

	cfg.LoadTestDuration = 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GOCONTEXT_LOADTEST_DURATION")); raw != "" {
		if cfg.LoadTestDuration, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("GOCONTEXT_LOADTEST_DURATION: %w", err)
		}
	}

	return cfg, nil
}

// Validate rejects empty paths and out-of-range numbers
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path must not be empty"))
	}
	if c.BenchDir == "" {
		errs = append(errs, errors.New("bench dir must not be empty"))
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > 100 {
		errs = append(errs, fmt.Errorf("search limit must be between 1 and 100, got %d", c.DefaultLimit))
	}
	if c.BenchK < 1 {
		errs = append(errs, fmt.Errorf("bench k must be positive, got %d", c.BenchK))
	}
	if c.EmbeddingDimension < 1 {
		errs = append(errs, fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDimension))
	}
	if c.EmbeddingCacheSize < 0 {
		errs = append(errs, fmt.Errorf("embedding cache size must not be negative, got %d", c.EmbeddingCacheSize))
	}
	if c.LoadTestWorkers < 1 {
		errs = append(errs, fmt.Errorf("load test workers must be positive, got %d", c.LoadTestWorkers))
	}
	if c.LoadTestDuration <= 0 {
		errs = append(errs, fmt.Errorf("load test duration must be positive, got %s", c.LoadTestDuration))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}
