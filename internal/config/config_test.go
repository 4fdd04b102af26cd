package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "Online Retail", cfg.Dataset.Sheet)
	assert.Equal(t, 541910, cfg.Dataset.MaxRows)
	assert.True(t, cfg.Dataset.Preload)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
dataset:
  path: /data/retail.xlsx
  sheet: Sales
  max_rows: 1000
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := LoadFromFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/retail.xlsx", cfg.Dataset.Path)
	assert.Equal(t, "Sales", cfg.Dataset.Sheet)
	assert.Equal(t, 1000, cfg.Dataset.MaxRows)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLBoolAndNumericFields(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  max_header_bytes: 2048
security:
  enable_cors: false
  rate_limit:
    enabled: false
    rps: 5
    burst: 2
logging:
  development: true
dataset:
  preload: false
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := LoadFromFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Server.MaxHeaderBytes)
	assert.False(t, cfg.Security.EnableCORS)
	assert.False(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
	assert.Equal(t, 2, cfg.Security.RateLimit.Burst)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.Dataset.Preload)
}

func TestLoad_YAMLOmittedBoolsKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 9091\n"), 0644))

	cfg, err := LoadFromFile(configFile)
	require.NoError(t, err)

	// An omitted key must not read as an explicit false.
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.True(t, cfg.Dataset.Preload)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("RETAILPULSE_SERVER_PORT", "7070")

	cfg, err := LoadFromFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("RETAILPULSE_LOGGING_LEVEL", "verbose")

	_, err := LoadFromFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_RejectsBadPort(t *testing.T) {
	t.Setenv("RETAILPULSE_SERVER_PORT", "70000")

	_, err := LoadFromFile("")
	require.Error(t, err)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
	assert.False(t, FileExists(dir))
}
