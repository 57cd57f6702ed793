package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/llm"
)

const classificationPrompt = `You are a query classifier for a fraud analysis system. Classify the user's question into one of three categories:

1. "sql" - Questions about statistical data, counts, rates, trends, aggregations, or specific transaction data from the fraud_transactions database table. Examples: fraud rates over time, merchant categories with most fraud, average amounts, geographic patterns.

2. "rag" - Questions about concepts, methods, definitions, explanations, or qualitative information from a document about credit card fraud. Examples: what are the methods of fraud, what are the components of a detection system, how does fraud work.

3. "hybrid" - Questions that need BOTH statistical data AND document knowledge. Examples: comparing dataset statistics with document claims, questions about specific report statistics.

Respond with ONLY a JSON object (no markdown, no code blocks):
{
    "query_type": "sql" or "rag" or "hybrid",
    "reasoning": "brief explanation",
    "sql_query_hint": "what to query if sql is needed, or empty string",
    "rag_search_hint": "what to search if rag is needed, or empty string"
}`

// Classifier decides which tool(s) a question requires. It never fails: a
// malformed model response falls back to keyword heuristics.
type Classifier struct {
	provider llm.Provider
	model    string
	logger   *zerolog.Logger
}

// NewClassifier creates an intent classifier using the given routing model.
func NewClassifier(provider llm.Provider, model string, logger *zerolog.Logger) *Classifier {
	return &Classifier{provider: provider, model: model, logger: logger}
}

// classificationResponse is the JSON shape the model is asked to return.
type classificationResponse struct {
	QueryType     string `json:"query_type"`
	Reasoning     string `json:"reasoning"`
	SQLQueryHint  string `json:"sql_query_hint"`
	RAGSearchHint string `json:"rag_search_hint"`
}

// Classify routes a question. History provides context for follow-up
// questions ("and per month?").
func (c *Classifier) Classify(ctx context.Context, question string, history []Exchange) Classification {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: classificationPrompt}}
	for _, ex := range boundHistory(history) {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: ex.Question},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Answer},
		)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   512,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("classification call failed, using keyword fallback")
		return fallbackClassification(question)
	}

	var parsed classificationResponse
	if err := json.Unmarshal([]byte(stripMarkdownCodeBlock(resp.Content)), &parsed); err != nil {
		c.logger.Warn().Err(err).Str("content", resp.Content).Msg("unparseable classification, using keyword fallback")
		return fallbackClassification(question)
	}

	qt := QueryType(parsed.QueryType)
	switch qt {
	case QueryTypeSQL, QueryTypeRAG, QueryTypeHybrid:
	default:
		c.logger.Warn().Str("query_type", parsed.QueryType).Msg("unknown query type, using keyword fallback")
		return fallbackClassification(question)
	}

	result := Classification{
		QueryType:     qt,
		Reasoning:     parsed.Reasoning,
		SQLQueryHint:  parsed.SQLQueryHint,
		RAGSearchHint: parsed.RAGSearchHint,
	}
	c.logger.Info().
		Str("query_type", string(result.QueryType)).
		Str("reasoning", result.Reasoning).
		Msg("question classified")
	return result
}

var (
	sqlKeywords = []string{
		"how many", "count", "rate", "trend", "average", "total",
		"highest", "lowest", "most", "least", "percentage", "monthly",
		"daily", "yearly", "over time", "fluctuate", "merchant", "category",
		"transaction", "amount", "which", "top", "statistics",
	}
	ragKeywords = []string{
		"what are", "explain", "describe", "methods", "components",
		"according to", "authors", "definition", "how does", "why",
		"detection system", "techniques", "strategies",
	}
	hybridKeywords = []string{
		"report", "compared to", "share of total", "cross-border",
	}
)

// fallbackClassification is a deterministic keyword heuristic used when the
// model's structured output cannot be parsed. It always yields a decision.
func fallbackClassification(question string) Classification {
	q := strings.ToLower(question)

	score := func(keywords []string) int {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				n++
			}
		}
		return n
	}

	sqlScore := score(sqlKeywords)
	ragScore := score(ragKeywords)
	hybridScore := score(hybridKeywords)

	var qt QueryType
	switch {
	case hybridScore > 0:
		qt = QueryTypeHybrid
	case sqlScore > ragScore:
		qt = QueryTypeSQL
	case ragScore > 0:
		qt = QueryTypeRAG
	default:
		qt = QueryTypeHybrid
	}

	result := Classification{
		QueryType: qt,
		Reasoning: "keyword-based fallback classification",
	}
	if result.NeedsSQL() {
		result.SQLQueryHint = question
	}
	if result.NeedsRAG() {
		result.RAGSearchHint = question
	}
	return result
}
