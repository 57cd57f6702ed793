package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/vectordb"
)

// RAGTool retrieves the passages closest to a question from the report
// index. It does not retry: a store failure surfaces to the orchestrator
// for degradation handling.
type RAGTool struct {
	store  vectordb.VectorStore
	topK   int
	logger *zerolog.Logger
}

// NewRAGTool creates the retrieval tool with the configured result count.
func NewRAGTool(store vectordb.VectorStore, topK int, logger *zerolog.Logger) *RAGTool {
	return &RAGTool{store: store, topK: topK, logger: logger}
}

// Search returns the top-k passages ranked by ascending cosine distance,
// with source metadata attached unmodified.
func (t *RAGTool) Search(ctx context.Context, query string) (*RAGResult, error) {
	results, err := t.store.Search(ctx, query, t.topK)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	out := &RAGResult{
		Chunks:    make([]string, 0, len(results)),
		Metadatas: make([]vectordb.PassageMetadata, 0, len(results)),
		Distances: make([]float32, 0, len(results)),
	}
	for _, r := range results {
		out.Chunks = append(out.Chunks, r.Document.Content)
		out.Metadatas = append(out.Metadatas, r.Document.Metadata)
		out.Distances = append(out.Distances, r.Distance)
	}

	t.logger.Info().Int("chunks", len(out.Chunks)).Msg("retrieved passages")
	return out, nil
}
