package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/dexview/pkg/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, catalog.DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, 1, cfg.Catalog.MaxAttempts)
	assert.Equal(t, 1, cfg.Viewer.DefaultStart)
	assert.Equal(t, 20, cfg.Viewer.DefaultEnd)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "dexview.yaml", `
server:
  port: 9090
  cors_origins: ["https://dex.example"]
catalog:
  base_url: http://localhost:9999/api/v2
  timeout: 5s
log:
  level: debug
  pretty: true
viewer:
  default_start: 152
  default_end: 251
`)

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://dex.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:9999/api/v2", cfg.Catalog.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "dexview/0.1.0", cfg.Catalog.UserAgent, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 152, cfg.Viewer.DefaultStart)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeFile(t, "dexview.yaml", "server:\n  prot: 9090\n")

	_, err := Load(Options{ConfigFile: path})
	assert.ErrorContains(t, err, "parse config file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.ErrorContains(t, err, "read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "dexview.yaml", "server:\n  port: 9090\n")
	t.Setenv("DEXVIEW_PORT", "7070")
	t.Setenv("DEXVIEW_CATALOG_TIMEOUT", "2s")
	t.Setenv("DEXVIEW_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "DEXVIEW_USER_AGENT=dexview-envfile/2.0\n")
	t.Cleanup(func() { os.Unsetenv("DEXVIEW_USER_AGENT") })

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "dexview-envfile/2.0", cfg.Catalog.UserAgent)

	// a missing .env file is not an error
	_, err = Load(Options{EnvFile: filepath.Join(t.TempDir(), ".env")})
	assert.NoError(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("DEXVIEW_PORT", "eighty")

	_, err := Load(Options{})
	assert.ErrorContains(t, err, "DEXVIEW_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port: 70000"},
		{name: "empty base url", mutate: func(c *Config) { c.Catalog.BaseURL = "" }, wantErr: "catalog base URL is required"},
		{name: "empty user agent", mutate: func(c *Config) { c.Catalog.UserAgent = "" }, wantErr: "catalog user agent is required"},
		{name: "zero attempts", mutate: func(c *Config) { c.Catalog.MaxAttempts = 0 }, wantErr: "catalog max attempts must be >= 1 (got 0)"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: `unknown log level "loud"`},
		{name: "oversized default range", mutate: func(c *Config) { c.Viewer.DefaultEnd = 500 }, wantErr: "viewer default range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCatalogConfig_ClientConfig(t *testing.T) {
	cc := CatalogConfig{BaseURL: "http://x", UserAgent: "ua", Timeout: time.Second, MaxAttempts: 3}

	got := cc.ClientConfig()
	assert.Equal(t, "http://x", got.BaseURL)
	assert.Equal(t, "ua", got.UserAgent)
	assert.Equal(t, time.Second, got.Timeout)
	assert.Equal(t, 3, got.Retry.MaxAttempts)
}
