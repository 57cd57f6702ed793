package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/fraudsight/fraudsight/internal/vectordb"
)

// stubStore returns fixed results; it records the limit it was asked for.
type stubStore struct {
	results   []vectordb.SearchResult
	err       error
	lastLimit int
}

func (s *stubStore) AddDocuments(context.Context, []vectordb.Document) error { return nil }
func (s *stubStore) Persist(context.Context, string) error                   { return nil }
func (s *stubStore) Load(context.Context, string) error                      { return nil }
func (s *stubStore) Count() int                                              { return len(s.results) }

func (s *stubStore) Search(_ context.Context, _ string, limit int) ([]vectordb.SearchResult, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func TestRAGToolSearchConvertsResults(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{
			Document: vectordb.Document{
				Content:  "Card-not-present fraud dominates online channels.",
				Metadata: vectordb.PassageMetadata{Source: "fraud_report.pdf", Page: 12},
			},
			Distance: 0.12,
		},
		{
			Document: vectordb.Document{
				Content:  "Skimming devices capture magnetic stripe data.",
				Metadata: vectordb.PassageMetadata{Source: "fraud_report.pdf", Page: 7},
			},
			Distance: 0.31,
		},
	}}
	tool := NewRAGTool(store, 7, testLogger())

	res, err := tool.Search(context.Background(), "what are the fraud methods?")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.lastLimit != 7 {
		t.Fatalf("limit = %d, want 7", store.lastLimit)
	}
	if len(res.Chunks) != 2 || len(res.Metadatas) != 2 || len(res.Distances) != 2 {
		t.Fatalf("parallel slice lengths = %d/%d/%d", len(res.Chunks), len(res.Metadatas), len(res.Distances))
	}
	if res.Metadatas[0].Page != 12 {
		t.Fatalf("metadata not preserved: %+v", res.Metadatas[0])
	}
	if res.Distances[0] >= res.Distances[1] {
		t.Fatalf("distances not ascending: %v", res.Distances)
	}
}

func TestRAGToolWrapsStoreFailure(t *testing.T) {
	cause := errors.New("collection not loaded")
	tool := NewRAGTool(&stubStore{err: cause}, 7, testLogger())

	_, err := tool.Search(context.Background(), "anything")
	var rerr *RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RetrievalError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not wrapped")
	}
}

func TestRAGToolEmptyIndex(t *testing.T) {
	tool := NewRAGTool(&stubStore{}, 7, testLogger())

	res, err := tool.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Chunks) != 0 {
		t.Fatalf("Chunks = %v, want empty", res.Chunks)
	}
}
