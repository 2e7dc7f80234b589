package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "local", cfg.Embeddings.Provider)
	assert.Equal(t, 60.0, cfg.Search.RRFConstant)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.Database.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  path: /tmp/test-index.db
embeddings:
  provider: openai
  model: text-embedding-3-small
search:
  rrf_constant: 30
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test-index.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, 30.0, cfg.Search.RRFConstant)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset fields keep their defaults
	assert.Equal(t, 10000, cfg.Embeddings.CacheSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Embeddings.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CODESCOUT_DB_PATH", "/tmp/env.db")
	t.Setenv("CODESCOUT_EMBEDDINGS_PROVIDER", "openai")
	t.Setenv("CODESCOUT_API_KEY", "sk-env")
	t.Setenv("CODESCOUT_RRF_CONSTANT", "25.5")
	t.Setenv("CODESCOUT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, "sk-env", cfg.Embeddings.APIKey)
	assert.Equal(t, 25.5, cfg.Search.RRFConstant)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("CODESCOUT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.Embeddings.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "psychic" }, true},
		{"no provider disables embeddings", func(c *Config) { c.Embeddings.Provider = "" }, false},
		{"negative rrf", func(c *Config) { c.Search.RRFConstant = -1 }, true},
		{"negative workers", func(c *Config) { c.Indexing.Workers = -2 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
