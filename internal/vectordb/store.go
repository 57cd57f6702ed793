package vectordb

import "context"

// VectorStore defines the interface for storing and searching report
// passages by embedding. The store is written only during ingestion and is
// read-only at question-answering time.
type VectorStore interface {
	// AddDocuments adds or updates passages in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns the limit closest passages to the query text, ordered
	// by ascending cosine distance.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of passages in the store.
	Count() int
}
