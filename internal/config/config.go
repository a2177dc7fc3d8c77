// Package config loads dexview configuration from an optional YAML file, an
// optional .env file and DEXVIEW_* environment variables, in that order of
// increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/logging"
	"github.com/Sternrassler/dexview/pkg/rangefetch"
)

// Config holds all configuration for dexview.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
	Viewer  ViewerConfig  `yaml:"viewer"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig holds catalog client configuration.
type CatalogConfig struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// ClientConfig converts to a catalog.Config.
func (c CatalogConfig) ClientConfig() catalog.Config {
	cfg := catalog.DefaultConfig(c.UserAgent)
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.Timeout
	cfg.Retry.MaxAttempts = c.MaxAttempts
	return cfg
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// LoggingConfig converts to a logging.Config writing to stderr.
func (l LogConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(strings.ToLower(l.Level))
	cfg.Pretty = l.Pretty
	return cfg
}

// ViewerConfig holds the range pre-filled into the form.
type ViewerConfig struct {
	DefaultStart int `yaml:"default_start"`
	DefaultEnd   int `yaml:"default_end"`
}

// Options selects the files Load reads. Empty paths are skipped.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Catalog: CatalogConfig{
			BaseURL:     catalog.DefaultBaseURL,
			UserAgent:   "dexview/0.1.0",
			Timeout:     30 * time.Second,
			MaxAttempts: 1,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Viewer: ViewerConfig{
			DefaultStart: 1,
			DefaultEnd:   20,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// .env file, then the process environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.loadYAML(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if opts.EnvFile != "" {
		// variables already set in the environment win over the file
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.Server.Host = getEnv("DEXVIEW_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("DEXVIEW_PORT", c.Server.Port, &errs)
	c.Server.RequestTimeout = getEnvAsDuration("DEXVIEW_REQUEST_TIMEOUT", c.Server.RequestTimeout, &errs)
	c.Server.ShutdownTimeout = getEnvAsDuration("DEXVIEW_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout, &errs)
	if origins := os.Getenv("DEXVIEW_CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	c.Catalog.BaseURL = getEnv("DEXVIEW_CATALOG_URL", c.Catalog.BaseURL)
	c.Catalog.UserAgent = getEnv("DEXVIEW_USER_AGENT", c.Catalog.UserAgent)
	c.Catalog.Timeout = getEnvAsDuration("DEXVIEW_CATALOG_TIMEOUT", c.Catalog.Timeout, &errs)
	c.Catalog.MaxAttempts = getEnvAsInt("DEXVIEW_CATALOG_MAX_ATTEMPTS", c.Catalog.MaxAttempts, &errs)

	c.Log.Level = getEnv("DEXVIEW_LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("DEXVIEW_LOG_PRETTY", c.Log.Pretty, &errs)

	c.Viewer.DefaultStart = getEnvAsInt("DEXVIEW_DEFAULT_START", c.Viewer.DefaultStart, &errs)
	c.Viewer.DefaultEnd = getEnvAsInt("DEXVIEW_DEFAULT_END", c.Viewer.DefaultEnd, &errs)

	return errors.Join(errs...)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required")
	}

	if c.Catalog.UserAgent == "" {
		return fmt.Errorf("catalog user agent is required")
	}

	if c.Catalog.MaxAttempts < 1 {
		return fmt.Errorf("catalog max attempts must be >= 1 (got %d)", c.Catalog.MaxAttempts)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if err := rangefetch.ValidateRange(c.Viewer.DefaultStart, c.Viewer.DefaultEnd); err != nil {
		return fmt.Errorf("viewer default range: %w", err)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvAsBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
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
