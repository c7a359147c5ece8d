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
	"APP_ADDR", "STORE_DRIVER", "DB_DSN", "MONGO_URI", "MONGO_DATABASE", "SQLITE_PATH",
	"DB_AUTO_MIGRATE", "DB_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
	"ENABLE_HSTS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_BODY_BYTES", "TRUSTED_PROXIES",
}

// cleanEnv runs the test in an empty directory with every config key unset.
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/books.db")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/books.db", cfg.SQLitePath)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown driver":    {"STORE_DRIVER", "redis"},
		"bad log level":     {"LOG_LEVEL", "verbose"},
		"bad timeout":       {"DB_TIMEOUT", "soon"},
		"zero timeout":      {"DB_TIMEOUT", "0s"},
		"negative burst":    {"RATE_LIMIT_BURST", "-1"},
		"bad migrate flag":  {"DB_AUTO_MIGRATE", "maybe"},
		"non-numeric limit": {"MAX_BODY_BYTES", "1MB"},
		"bad trusted proxy": {"TRUSTED_PROXIES", "10.0.0.0/8,proxy.local"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := cleanEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ADDR=:9000\nLOG_LEVEL=debug\n"), 0o644))
	t.Setenv("APP_ADDR", ":7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}
