package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderTogether {
		t.Errorf("expected default provider %q, got %q", ProviderTogether, cfg.Provider)
	}
	if cfg.TopK != 7 {
		t.Errorf("expected default top_k 7, got %d", cfg.TopK)
	}
	if cfg.QualityThreshold != 3 {
		t.Errorf("expected default quality_threshold 3, got %d", cfg.QualityThreshold)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected default max_attempts 3, got %d", cfg.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.fraudsight.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.RoutingModel = "gpt-4o-mini"
	original.DataDir = "custom-data"
	original.TopK = 5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.TopK != original.TopK {
		t.Errorf("top_k: got %d, want %d", loaded.TopK, original.TopK)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load with missing file should succeed, got %v", err)
	}
	if cfg.RowLimit != 100 {
		t.Errorf("expected default row_limit 100, got %d", cfg.RowLimit)
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("FRAUDSIGHT_MODEL", "override-model")
	os.Setenv("FRAUDSIGHT_TOP_K", "3")
	defer os.Unsetenv("FRAUDSIGHT_MODEL")
	defer os.Unsetenv("FRAUDSIGHT_TOP_K")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "override-model" {
		t.Errorf("expected env override model, got %q", cfg.Model)
	}
	if cfg.TopK != 3 {
		t.Errorf("expected env override top_k 3, got %d", cfg.TopK)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty provider", func(c *Config) { c.Provider = "" }, true},
		{"unknown provider", func(c *Config) { c.Provider = "bedrock" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"empty routing model", func(c *Config) { c.RoutingModel = "" }, true},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, true},
		{"threshold out of range", func(c *Config) { c.QualityThreshold = 6 }, true},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, true},
		{"negative rpm", func(c *Config) { c.RateLimitRPM = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ResolveBaseURL(); got != "https://api.together.xyz/v1" {
		t.Errorf("expected together base URL, got %q", got)
	}

	cfg.BaseURL = "http://localhost:9999/v1"
	if got := cfg.ResolveBaseURL(); got != "http://localhost:9999/v1" {
		t.Errorf("expected explicit base URL to win, got %q", got)
	}
}
