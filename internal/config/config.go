package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/retailpulse.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// DatasetConfig describes the transaction dataset to load and the
// ingestion limits applied to it.
type DatasetConfig struct {
	Path      string `yaml:"path" envconfig:"PATH" default:"data/Online Retail.xlsx" validate:"required"`
	Sheet     string `yaml:"sheet" envconfig:"SHEET" default:"Online Retail" validate:"required"`
	MaxRows   int    `yaml:"max_rows" envconfig:"MAX_ROWS" default:"541910" validate:"gt=0"`
	Preload   bool   `yaml:"preload" envconfig:"PRELOAD" default:"true"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR" default:"data/exports"`
}

// Load loads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence.
func Load() (*Config, error) {
	return LoadFromFile(configFilePath())
}

// LoadFromFile loads configuration layering RETAILPULSE_* environment
// variables over the given YAML file (if it exists).
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RETAILPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromYAML(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = merge(fileCfg, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration using struct-level validation rules.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// fileValues carries the decoded YAML config alongside the raw
// document, so merge can tell an explicit false/zero apart from an
// omitted key.
type fileValues struct {
	cfg Config
	raw map[interface{}]interface{}
}

func loadFromYAML(filePath string) (*fileValues, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	fv := &fileValues{}
	if err := yaml.Unmarshal(data, &fv.cfg); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &fv.raw); err != nil {
		return nil, err
	}

	return fv, nil
}

// has reports whether the YAML document sets the given key path.
func (f *fileValues) has(path ...string) bool {
	node := f.raw
	for i, key := range path {
		v, ok := node[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		node, ok = v.(map[interface{}]interface{})
		if !ok {
			return false
		}
	}
	return false
}

// merge overlays file config onto the env-derived config. A file value
// wins only where it is set and the matching env var was not explicitly
// provided; envconfig has already filled defaults for everything else.
// Bool and zero-meaningful numeric fields use the raw-document presence
// check instead of the non-zero guard.
func merge(file *fileValues, envCfg Config) Config {
	fileCfg := file.cfg
	if fileCfg.Server.Port != 0 && !envSet("SERVER_PORT") {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Server.ReadTimeout != 0 && !envSet("SERVER_READ_TIMEOUT") {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if fileCfg.Server.WriteTimeout != 0 && !envSet("SERVER_WRITE_TIMEOUT") {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if fileCfg.Server.IdleTimeout != 0 && !envSet("SERVER_IDLE_TIMEOUT") {
		envCfg.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if fileCfg.Server.ShutdownTimeout != 0 && !envSet("SERVER_SHUTDOWN_TIMEOUT") {
		envCfg.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if fileCfg.Server.RequestTimeout != 0 && !envSet("SERVER_REQUEST_TIMEOUT") {
		envCfg.Server.RequestTimeout = fileCfg.Server.RequestTimeout
	}
	if fileCfg.Logging.Level != "" && !envSet("LOGGING_LEVEL") {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Logging.Output != "" && !envSet("LOGGING_OUTPUT") {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if fileCfg.Logging.FilePath != "" && !envSet("LOGGING_FILE_PATH") {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if fileCfg.Dataset.Path != "" && !envSet("DATASET_PATH") {
		envCfg.Dataset.Path = fileCfg.Dataset.Path
	}
	if fileCfg.Dataset.Sheet != "" && !envSet("DATASET_SHEET") {
		envCfg.Dataset.Sheet = fileCfg.Dataset.Sheet
	}
	if fileCfg.Dataset.MaxRows != 0 && !envSet("DATASET_MAX_ROWS") {
		envCfg.Dataset.MaxRows = fileCfg.Dataset.MaxRows
	}
	if fileCfg.Dataset.ExportDir != "" && !envSet("DATASET_EXPORT_DIR") {
		envCfg.Dataset.ExportDir = fileCfg.Dataset.ExportDir
	}
	if len(fileCfg.Security.AllowedOrigins) > 0 && !envSet("SECURITY_ALLOWED_ORIGINS") {
		envCfg.Security.AllowedOrigins = fileCfg.Security.AllowedOrigins
	}
	if file.has("server", "max_header_bytes") && !envSet("SERVER_MAX_HEADER_BYTES") {
		envCfg.Server.MaxHeaderBytes = fileCfg.Server.MaxHeaderBytes
	}
	if file.has("security", "enable_cors") && !envSet("SECURITY_ENABLE_CORS") {
		envCfg.Security.EnableCORS = fileCfg.Security.EnableCORS
	}
	if file.has("security", "rate_limit", "enabled") && !envSet("SECURITY_RATE_LIMIT_ENABLED") {
		envCfg.Security.RateLimit.Enabled = fileCfg.Security.RateLimit.Enabled
	}
	if file.has("security", "rate_limit", "rps") && !envSet("SECURITY_RATE_LIMIT_RPS") {
		envCfg.Security.RateLimit.RPS = fileCfg.Security.RateLimit.RPS
	}
	if file.has("security", "rate_limit", "burst") && !envSet("SECURITY_RATE_LIMIT_BURST") {
		envCfg.Security.RateLimit.Burst = fileCfg.Security.RateLimit.Burst
	}
	if file.has("logging", "development") && !envSet("LOGGING_DEVELOPMENT") {
		envCfg.Logging.Development = fileCfg.Logging.Development
	}
	if file.has("dataset", "preload") && !envSet("DATASET_PRELOAD") {
		envCfg.Dataset.Preload = fileCfg.Dataset.Preload
	}
	return envCfg
}

func envSet(suffix string) bool {
	_, ok := os.LookupEnv("RETAILPULSE_" + suffix)
	return ok
}

// configFilePath returns the default config file location, overridable
// via RETAILPULSE_CONFIG.
func configFilePath() string {
	if path := os.Getenv("RETAILPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
