package agent

import (
	"fmt"

	"github.com/fraudsight/fraudsight/internal/vectordb"
)

// QueryType is the routing decision for a question.
type QueryType string

const (
	QueryTypeSQL     QueryType = "sql"
	QueryTypeRAG     QueryType = "rag"
	QueryTypeHybrid  QueryType = "hybrid"
	QueryTypeUnknown QueryType = "unknown"
)

// Classification is the intent classifier's decision: which tool(s) a
// question needs, plus optional free-text hints for each selected tool.
type Classification struct {
	QueryType     QueryType
	Reasoning     string
	SQLQueryHint  string
	RAGSearchHint string
}

// NeedsSQL reports whether the structured-query tool should run.
func (c Classification) NeedsSQL() bool {
	return c.QueryType == QueryTypeSQL || c.QueryType == QueryTypeHybrid
}

// NeedsRAG reports whether the retrieval tool should run.
func (c Classification) NeedsRAG() bool {
	return c.QueryType == QueryTypeRAG || c.QueryType == QueryTypeHybrid
}

// SQLResult holds the outcome of one structured-query pipeline run.
// A zero RowCount is a valid result, not an error.
type SQLResult struct {
	Query    string
	Columns  []string
	Rows     [][]any
	RowCount int
}

// RAGResult holds ranked passages from the vector index, ordered by
// ascending cosine distance. The three slices are parallel.
type RAGResult struct {
	Chunks    []string
	Metadatas []vectordb.PassageMetadata
	Distances []float32
}

// Exchange is one prior question/answer pair of the conversation.
type Exchange struct {
	Question string
	Answer   string
}

// DraftAnswer is a synthesized answer together with the evidence it was
// built from and the attempt that produced it.
type DraftAnswer struct {
	Text    string
	SQL     *SQLResult
	RAG     *RAGResult
	Attempt int
}

// QualityScore rates a draft answer against its evidence.
type QualityScore struct {
	Score              int // 1..5
	Reasoning          string
	HasHallucination   bool
	MissingInformation []string
}

// AttemptRecord is one full classify/tool/synthesize/score cycle. The
// orchestrator keeps every record for a question and picks the best at the
// end.
type AttemptRecord struct {
	Attempt         int // 1-based
	Classification  Classification
	Draft           *DraftAnswer
	Score           QualityScore
	DegradationNote string
}

// Confidence labels how much trust the final answer deserves.
type Confidence string

const (
	// ConfidenceConfident means the answer passed the quality gate with all
	// requested evidence available.
	ConfidenceConfident Confidence = "confident"
	// ConfidenceDegraded means one evidence source was unavailable and the
	// answer was built from what remained.
	ConfidenceDegraded Confidence = "degraded"
	// ConfidenceLow means retries were exhausted without reaching the
	// quality threshold.
	ConfidenceLow Confidence = "low"
	// ConfidenceUnavailable means no tool produced evidence and no answer
	// could be synthesized.
	ConfidenceUnavailable Confidence = "unavailable"
)

// Outcome is the final result of processing one question.
type Outcome struct {
	Answer     string
	QueryType  QueryType
	SQL        *SQLResult
	RAG        *RAGResult
	Score      *QualityScore
	Sources    []string
	Confidence Confidence
	Attempts   int
}

// EventKind discriminates the events emitted while a question is processed.
type EventKind string

const (
	EventStep     EventKind = "step"
	EventFragment EventKind = "fragment"
	EventOutcome  EventKind = "outcome"
)

// Event is one element of the progress stream: a step-status notification,
// an incremental synthesis fragment, or the single terminal outcome.
type Event struct {
	Kind     EventKind
	Step     string // step name for EventStep ("classify", "sql", "rag", ...)
	Label    string // human-readable status text for EventStep
	Detail   string
	Fragment string   // for EventFragment
	Outcome  *Outcome // for EventOutcome
}

// QueryError reports a structured-query pipeline failure with the stage
// that produced it.
type QueryError struct {
	Stage  string // "generate", "validate", "safety", "execute", "exhausted"
	Detail string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query pipeline %s: %s", e.Stage, e.Detail)
}

// RetrievalError reports a vector store connectivity failure.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("document retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
