package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	maxBatchSize = 100
	// maxInputChars bounds each input so long report chunks stay within the
	// embedding model's token limit.
	maxInputChars = 2000
)

// knownDimensions maps embedding model names to their vector sizes.
var knownDimensions = map[string]int{
	"text-embedding-3-small":                    1536,
	"text-embedding-3-large":                    3072,
	"togethercomputer/m2-bert-80M-8k-retrieval": 768,
	"nomic-embed-text":                          768,
}

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIEmbedder creates an embedder for the given endpoint and model.
// baseURL may be empty for the official OpenAI endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	dims := knownDimensions[model]
	if dims == 0 {
		dims = 1536
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return e.model
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dims
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = truncateRunes(t, maxInputChars)
	}

	allEmbeddings := make([][]float32, 0, len(truncated))

	// Batch up to maxBatchSize texts per API call.
	for i := 0; i < len(truncated); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(truncated) {
			end = len(truncated)
		}
		batch := truncated[i:end]

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}

		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("got %d embeddings, expected %d", len(resp.Data), len(batch))
		}

		for _, emb := range resp.Data {
			allEmbeddings = append(allEmbeddings, emb.Embedding)
		}
	}

	return allEmbeddings, nil
}

// truncateRunes bounds s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
