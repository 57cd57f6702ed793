package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/fraudsight/fraudsight/internal/embeddings"
)

const collectionName = "fraud_reports"

// ChromemStore implements VectorStore using chromem-go, which ranks by
// cosine similarity over normalized vectors.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedder:   embedder,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			// chromem reports similarity in [0,1]; callers rank by distance.
			Distance: 1 - r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	err := s.db.ImportFromFile(dir+"/chromem.gob.gz", "")
	if err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts PassageMetadata to a flat map[string]string for chromem.
func metadataToMap(m PassageMetadata) map[string]string {
	return map[string]string{
		"source":      m.Source,
		"page":        strconv.Itoa(m.Page),
		"section":     m.Section,
		"chunk_index": strconv.Itoa(m.ChunkIndex),
		"ingested_at": m.IngestedAt.Format(time.RFC3339),
	}
}

// mapToMetadata converts a flat map[string]string back to PassageMetadata.
func mapToMetadata(m map[string]string) PassageMetadata {
	page, _ := strconv.Atoi(m["page"])
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	ingestedAt, _ := time.Parse(time.RFC3339, m["ingested_at"])

	return PassageMetadata{
		Source:     m["source"],
		Page:       page,
		Section:    m["section"],
		ChunkIndex: chunkIndex,
		IngestedAt: ingestedAt,
	}
}
