package vectordb

import "time"

// Document represents one report passage stored and searched by embedding.
type Document struct {
	ID       string
	Content  string
	Metadata PassageMetadata
}

// PassageMetadata holds provenance information for a report passage. It is
// attached unmodified to search results so answers can cite their sources.
type PassageMetadata struct {
	Source     string // report file or title the passage came from
	Page       int
	Section    string
	ChunkIndex int
	IngestedAt time.Time
}

// SearchResult pairs a retrieved passage with its cosine distance from the
// query. Lower distance means a closer match.
type SearchResult struct {
	Document Document
	Distance float32
}
