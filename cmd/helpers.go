package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fraudsight/fraudsight/internal/agent"
	"github.com/fraudsight/fraudsight/internal/config"
	"github.com/fraudsight/fraudsight/internal/db"
	"github.com/fraudsight/fraudsight/internal/embeddings"
	"github.com/fraudsight/fraudsight/internal/llm"
	"github.com/fraudsight/fraudsight/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `fraudsight init` to create a config file", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates the embedder used at both index and
// query time.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(cfg.Provider))
	if apiKey == "" && cfg.Provider != config.ProviderOllama {
		return nil, fmt.Errorf("%s environment variable is required", config.APIKeyEnvVar(cfg.Provider))
	}
	return embeddings.NewOpenAIEmbedder(apiKey, cfg.ResolveBaseURL(), cfg.EmbeddingModel), nil
}

// openVectorStore creates the report index and loads persisted data when
// present. requireData makes a missing index an error instead of a warning.
func openVectorStore(ctx context.Context, cfg *config.Config, requireData bool) (vectordb.VectorStore, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	if err := store.Load(ctx, cfg.VectorDir()); err != nil {
		if requireData {
			return nil, fmt.Errorf("loading vector store from %s: %w\nRun `fraudsight ingest` first to build the index", cfg.VectorDir(), err)
		}
		logger.Warn().Err(err).Str("dir", cfg.VectorDir()).Msg("vector store not loaded, starting empty")
	}
	return store, nil
}

// buildAgent wires the full answer pipeline from config. The returned
// cleanup closes the database.
func buildAgent(ctx context.Context, cfg *config.Config) (*agent.Agent, func(), error) {
	provider, err := llm.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	store, err := openVectorStore(ctx, cfg, true)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	queryTimeout := time.Duration(cfg.QueryTimeoutSecs) * time.Second

	classifier := agent.NewClassifier(provider, cfg.RoutingModel, &logger)
	sqlTool := agent.NewSQLTool(provider, cfg.Model, database, cfg.RowLimit, queryTimeout, &logger)
	ragTool := agent.NewRAGTool(store, cfg.TopK, &logger)
	synthesizer := agent.NewSynthesizer(provider, cfg.Model, &logger)
	scorer := agent.NewScorer(provider, cfg.RoutingModel, &logger)

	a := agent.New(classifier, sqlTool, ragTool, synthesizer, scorer, agent.Options{
		QualityThreshold: cfg.QualityThreshold,
		MaxAttempts:      cfg.MaxAttempts,
	}, &logger)

	cleanup := func() { database.Close() }
	return a, cleanup, nil
}
