package config

// DefaultExcludes are glob patterns skipped by the report ingestion pipeline.
var DefaultExcludes = []string{
	".git/**",
	"vendor/**",
	"node_modules/**",
	"*.lock",
	"*.min.js",
}

// providerBaseURLs maps each provider to its default API endpoint.
// An empty value means the client library's own default is used.
var providerBaseURLs = map[ProviderType]string{
	ProviderOpenAI:   "",
	ProviderTogether: "https://api.together.xyz/v1",
	ProviderOllama:   "http://localhost:11434/v1",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:         ProviderTogether,
		Model:            "meta-llama/Meta-Llama-3.1-405B-Instruct-Turbo",
		RoutingModel:     "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
		EmbeddingModel:   "togethercomputer/m2-bert-80M-8k-retrieval",
		DataDir:          "data",
		TopK:             7,
		RowLimit:         100,
		QualityThreshold: 3,
		MaxAttempts:      3,
		QueryTimeoutSecs: 10,
		RateLimitRPM:     60,
		Server: ServerConfig{
			Port: 8390,
		},
		Ingest: IngestConfig{
			DatasetGlobs: []string{"dataset/*.csv"},
			ReportGlobs:  []string{"reports/**/*.{txt,md}"},
			Exclude:      DefaultExcludes,
			ChunkSize:    1200,
			ChunkOverlap: 150,
		},
	}
}

// ResolveBaseURL returns the configured base URL, falling back to the
// provider's default endpoint.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return providerBaseURLs[c.Provider]
}
