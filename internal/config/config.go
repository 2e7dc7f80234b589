package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all codescout settings. Values resolve in layers: built-in
// defaults, then an optional YAML file, then CODESCOUT_* environment
// variables, later layers winning.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Search     SearchConfig     `yaml:"search"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	LogLevel   string           `yaml:"log_level"`
}

// DatabaseConfig locates the SQLite index.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider  string `yaml:"provider"`  // "openai", "local", or "" to disable
	APIKey    string `yaml:"api_key"`   // usually supplied via env, not the file
	BaseURL   string `yaml:"base_url"`  // OpenAI-compatible endpoint override
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	CacheSize int    `yaml:"cache_size"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	RRFConstant   float64 `yaml:"rrf_constant"`
	MaxResults    int     `yaml:"max_results"`
	CacheResults  bool    `yaml:"cache_results"`
	CacheTTLHours int     `yaml:"cache_ttl_hours"`
}

// IndexingConfig tunes the indexing pipeline.
type IndexingConfig struct {
	Workers      int  `yaml:"workers"`
	IncludeTests bool `yaml:"include_tests"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: defaultDBPath(),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "local",
			CacheSize: 10000,
		},
		Search: SearchConfig{
			RRFConstant:   60,
			MaxResults:    10,
			CacheResults:  true,
			CacheTTLHours: 1,
		},
		Indexing: IndexingConfig{
			Workers:      runtime.NumCPU(),
			IncludeTests: true,
		},
		LogLevel: "info",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codescout.db"
	}
	return filepath.Join(home, ".codescout", "index.db")
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment overrides apply; a named file that doesn't exist
// is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies CODESCOUT_* environment variables on top of the
// file values. API keys are also picked up from OPENAI_API_KEY so an
// existing environment works without a codescout-specific variable.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODESCOUT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CODESCOUT_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("CODESCOUT_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("CODESCOUT_EMBEDDINGS_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("CODESCOUT_EMBEDDINGS_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embeddings.Dimension = n
		}
	}
	if v := os.Getenv("CODESCOUT_API_KEY"); v != "" {
		c.Embeddings.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Embeddings.APIKey == "" {
		c.Embeddings.APIKey = v
	}
	if v := os.Getenv("CODESCOUT_RRF_CONSTANT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.RRFConstant = f
		}
	}
	if v := os.Getenv("CODESCOUT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Indexing.Workers = n
		}
	}
	if v := os.Getenv("CODESCOUT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	switch c.Embeddings.Provider {
	case "", "local", "openai":
	default:
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Search.RRFConstant < 0 {
		return fmt.Errorf("rrf_constant cannot be negative")
	}
	if c.Indexing.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
