package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FRAUDSIGHT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: FRAUDSIGHT_PROVIDER -> provider, and
	// FRAUDSIGHT_SERVER__PORT -> server.port for nested keys.
	if err := k.Load(env.Provider("FRAUDSIGHT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "FRAUDSIGHT_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI:   true,
	ProviderTogether: true,
	ProviderOllama:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, together, ollama", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.RoutingModel == "" {
		return fmt.Errorf("routing_model is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.RowLimit <= 0 {
		return fmt.Errorf("row_limit must be positive")
	}
	if c.QualityThreshold < 1 || c.QualityThreshold > 5 {
		return fmt.Errorf("quality_threshold must be between 1 and 5")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.QueryTimeoutSecs <= 0 {
		return fmt.Errorf("query_timeout_secs must be positive")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}

	return nil
}

// DatabasePath returns the path of the SQLite transaction database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "fraud.db")
}

// VectorDir returns the directory holding the persisted vector index.
func (c *Config) VectorDir() string {
	return filepath.Join(c.DataDir, "vectordb")
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderTogether:
		return "TOGETHER_API_KEY"
	default:
		return ""
	}
}
