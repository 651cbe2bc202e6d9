package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENV_PATH",
	"GOCONTEXT_DB_PATH",
	"GOCONTEXT_BENCH_DIR",
	"GOCONTEXT_QUERY_SET",
	"GOCONTEXT_REPOSITORY_ID",
	"GOCONTEXT_SEARCH_LIMIT",
	"GOCONTEXT_BENCH_K",
	"GOCONTEXT_EMBED_DIM",
	"GOCONTEXT_EMBED_CACHE",
	"GOCONTEXT_LOADTEST_WORKERS",
	"GOCONTEXT_LOADTEST_DURATION",
	"GOCONTEXT_HTTP_ADDR",
	"GOCONTEXT_LOG_LEVEL",
	"GOCONTEXT_LOG_FORMAT",
}

// clearEnv blanks every config key for the test; t.Setenv restores them
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ".gocontext/index.db", cfg.DBPath)
	assert.Equal(t, ".gocontext/bench", cfg.BenchDir)
	assert.Empty(t, cfg.QuerySetPath)
	assert.Equal(t, uint64(1), cfg.RepositoryID)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 10, cfg.BenchK)
	assert.Equal(t, 384, cfg.EmbeddingDimension)
	assert.Equal(t, 1000, cfg.EmbeddingCacheSize)
	assert.Equal(t, 4, cfg.LoadTestWorkers)
	assert.Equal(t, 10*time.Second, cfg.LoadTestDuration)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	data := "GOCONTEXT_DB_PATH=/var/lib/qa/index.db\nGOCONTEXT_SEARCH_LIMIT=25\nGOCONTEXT_LOADTEST_DURATION=30s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/qa/index.db", cfg.DBPath)
	assert.Equal(t, 25, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.LoadTestDuration)
}

func TestLoad_EnvPathVariable(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("GOCONTEXT_BENCH_K=5\n"), 0644))
	t.Setenv("ENV_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.BenchK)
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GOCONTEXT_HTTP_ADDR=:9000\n"), 0644))
	t.Setenv("GOCONTEXT_HTTP_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"GOCONTEXT_SEARCH_LIMIT", "ten"},
		{"GOCONTEXT_REPOSITORY_ID", "-1"},
		{"GOCONTEXT_LOADTEST_DURATION", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	valid, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db path"},
		{"limit too large", func(c *Config) { c.DefaultLimit = 101 }, "search limit"},
		{"limit zero", func(c *Config) { c.DefaultLimit = 0 }, "search limit"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"no workers", func(c *Config) { c.LoadTestWorkers = 0 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
