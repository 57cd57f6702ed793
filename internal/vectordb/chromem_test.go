package vectordb

import (
	"context"
	"math"
	"testing"
	"time"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Similar texts produce similar vectors because shared characters contribute
// to the same positions in the vector.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func testDocs() []Document {
	now := time.Now()
	return []Document{
		{
			ID:      "p1",
			Content: "Card-not-present fraud accounts for the majority of losses in online transactions",
			Metadata: PassageMetadata{
				Source:     "Understanding Credit Card Frauds",
				Page:       4,
				Section:    "Fraud Methods",
				ChunkIndex: 0,
				IngestedAt: now,
			},
		},
		{
			ID:      "p2",
			Content: "Skimming devices capture magnetic stripe data at compromised terminals",
			Metadata: PassageMetadata{
				Source:     "Understanding Credit Card Frauds",
				Page:       6,
				Section:    "Fraud Methods",
				ChunkIndex: 1,
				IngestedAt: now,
			},
		},
		{
			ID:      "p3",
			Content: "Detection systems combine rule engines with machine learning models",
			Metadata: PassageMetadata{
				Source:     "Understanding Credit Card Frauds",
				Page:       11,
				Section:    "Detection",
				ChunkIndex: 2,
				IngestedAt: now,
			},
		},
	}
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	if err := store.AddDocuments(ctx, testDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if store.Count() != 3 {
		t.Fatalf("expected 3 documents, got %d", store.Count())
	}

	results, err := store.Search(ctx, "skimming devices capture stripe data", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Results must be ordered by ascending distance.
	if results[0].Distance > results[1].Distance {
		t.Errorf("results not ordered by ascending distance: %f > %f",
			results[0].Distance, results[1].Distance)
	}

	// Metadata must round-trip untouched.
	for _, r := range results {
		if r.Document.Metadata.Source != "Understanding Credit Card Frauds" {
			t.Errorf("source metadata lost: %q", r.Document.Metadata.Source)
		}
		if r.Document.Metadata.Page == 0 {
			t.Errorf("page metadata lost for %s", r.Document.ID)
		}
	}
}

func TestChromemStore_SearchEmptyStore(t *testing.T) {
	store, err := NewChromemStore(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	results, err := store.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestChromemStore_LimitClampedToCount(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.AddDocuments(ctx, testDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := store.Search(ctx, "fraud", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected limit clamped to 3, got %d", len(results))
	}
}

func TestChromemStore_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	embedder := &mockEmbedder{dims: 64}

	store, err := NewChromemStore(embedder)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.AddDocuments(ctx, testDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if err := store.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored, err := NewChromemStore(embedder)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 3 {
		t.Errorf("expected 3 documents after load, got %d", restored.Count())
	}
}
