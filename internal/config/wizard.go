package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// providerModelDefaults lists the suggested chat/routing/embedding models for
// each provider, shown as wizard defaults.
var providerModelDefaults = map[ProviderType]struct {
	Model          string
	RoutingModel   string
	EmbeddingModel string
}{
	ProviderTogether: {
		Model:          "meta-llama/Meta-Llama-3.1-405B-Instruct-Turbo",
		RoutingModel:   "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
		EmbeddingModel: "togethercomputer/m2-bert-80M-8k-retrieval",
	},
	ProviderOpenAI: {
		Model:          "gpt-4o",
		RoutingModel:   "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	},
	ProviderOllama: {
		Model:          "llama3",
		RoutingModel:   "llama3",
		EmbeddingModel: "nomic-embed-text",
	},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. The caller decides where to save it.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to fraudsight! Let's configure your analysis agent.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"together", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	defaults := providerModelDefaults[provider]

	// 2. Models.
	modelPrompt := promptui.Prompt{
		Label:   "Synthesis model",
		Default: defaults.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	routingPrompt := promptui.Prompt{
		Label:   "Routing model (classification, SQL generation, scoring)",
		Default: defaults.RoutingModel,
	}
	routingModel, err := routingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("routing model: %w", err)
	}

	embeddingPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaults.EmbeddingModel,
	}
	embeddingModel, err := embeddingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	// 3. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database and vector index)",
		Default: "data",
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. Dataset CSV globs.
	datasetPrompt := promptui.Prompt{
		Label:   "Transaction CSV patterns (comma-separated globs)",
		Default: "dataset/*.csv",
	}
	datasetStr, err := datasetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dataset patterns: %w", err)
	}

	// 5. Fraud report globs.
	reportPrompt := promptui.Prompt{
		Label:   "Fraud report patterns (comma-separated globs)",
		Default: "reports/**/*.{txt,md}",
	}
	reportStr, err := reportPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("report patterns: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.RoutingModel = routingModel
	cfg.EmbeddingModel = embeddingModel
	cfg.DataDir = dataDir
	cfg.Ingest.DatasetGlobs = splitAndTrim(datasetStr)
	cfg.Ingest.ReportGlobs = splitAndTrim(reportStr)

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running fraudsight.\n", envVar)
		}
	}

	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace from each
// element, dropping empties.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
