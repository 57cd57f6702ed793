package config

// ProviderType identifies an LLM provider. All supported providers expose an
// OpenAI-compatible chat completions API, differing only in base URL.
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderTogether ProviderType = "together"
	ProviderOllama   ProviderType = "ollama"
)

// Config is the top-level fraudsight configuration, corresponding to .fraudsight.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	RoutingModel   string       `yaml:"routing_model" koanf:"routing_model"`
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"`
	BaseURL        string       `yaml:"base_url" koanf:"base_url"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	TopK             int `yaml:"top_k" koanf:"top_k"`
	RowLimit         int `yaml:"row_limit" koanf:"row_limit"`
	QualityThreshold int `yaml:"quality_threshold" koanf:"quality_threshold"`
	MaxAttempts      int `yaml:"max_attempts" koanf:"max_attempts"`
	QueryTimeoutSecs int `yaml:"query_timeout_secs" koanf:"query_timeout_secs"`
	RateLimitRPM     int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Ingest IngestConfig `yaml:"ingest" koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}

// IngestConfig holds settings for the one-time data ingestion pipelines.
type IngestConfig struct {
	DatasetGlobs []string `yaml:"dataset_globs" koanf:"dataset_globs"` // CSV transaction exports
	ReportGlobs  []string `yaml:"report_globs" koanf:"report_globs"`   // fraud report text/markdown files
	Exclude      []string `yaml:"exclude" koanf:"exclude"`
	ChunkSize    int      `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap" koanf:"chunk_overlap"`
}
