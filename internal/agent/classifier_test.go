package agent

import (
	"context"
	"testing"
)

func TestClassifyParsesModelDecision(t *testing.T) {
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: `{"query_type": "sql", "reasoning": "asks for a count", "sql_query_hint": "count fraud by month", "rag_search_hint": ""}`},
	}}
	c := NewClassifier(provider, "routing-model", testLogger())

	got := c.Classify(context.Background(), "How many fraudulent transactions happened per month?", nil)

	if got.QueryType != QueryTypeSQL {
		t.Fatalf("QueryType = %q, want %q", got.QueryType, QueryTypeSQL)
	}
	if got.SQLQueryHint != "count fraud by month" {
		t.Fatalf("SQLQueryHint = %q", got.SQLQueryHint)
	}
	if !got.NeedsSQL() || got.NeedsRAG() {
		t.Fatalf("NeedsSQL/NeedsRAG = %v/%v, want true/false", got.NeedsSQL(), got.NeedsRAG())
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "```json\n{\"query_type\": \"rag\", \"reasoning\": \"conceptual\", \"sql_query_hint\": \"\", \"rag_search_hint\": \"fraud methods\"}\n```"},
	}}
	c := NewClassifier(provider, "routing-model", testLogger())

	got := c.Classify(context.Background(), "What are the methods of credit card fraud?", nil)
	if got.QueryType != QueryTypeRAG {
		t.Fatalf("QueryType = %q, want %q", got.QueryType, QueryTypeRAG)
	}
}

func TestClassifyFallsBackOnUnparseableOutput(t *testing.T) {
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "I think this is a statistical question about counts."},
	}}
	c := NewClassifier(provider, "routing-model", testLogger())

	got := c.Classify(context.Background(), "How many transactions had the highest amount per merchant?", nil)

	if got.QueryType != QueryTypeSQL {
		t.Fatalf("fallback QueryType = %q, want %q", got.QueryType, QueryTypeSQL)
	}
	if got.SQLQueryHint == "" {
		t.Fatal("fallback should carry the question as hint")
	}
}

func TestClassifyFallsBackOnProviderError(t *testing.T) {
	provider := &scriptedProvider{responses: nil} // exhausted immediately
	c := NewClassifier(provider, "routing-model", testLogger())

	got := c.Classify(context.Background(), "Explain how does a fraud detection system work", nil)
	if got.QueryType != QueryTypeRAG {
		t.Fatalf("fallback QueryType = %q, want %q", got.QueryType, QueryTypeRAG)
	}
}

func TestFallbackClassification(t *testing.T) {
	tests := []struct {
		question string
		want     QueryType
	}{
		{"How many fraudulent transactions are there in total?", QueryTypeSQL},
		{"What are the methods criminals use, explain each", QueryTypeRAG},
		{"How does the fraud rate in our data compared to the report?", QueryTypeHybrid},
		{"hm", QueryTypeHybrid}, // no keyword hits defaults to both tools
	}
	for _, tt := range tests {
		got := fallbackClassification(tt.question)
		if got.QueryType != tt.want {
			t.Errorf("fallbackClassification(%q) = %q, want %q", tt.question, got.QueryType, tt.want)
		}
	}
}

func TestClassifyIncludesHistory(t *testing.T) {
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: `{"query_type": "sql", "reasoning": "followup", "sql_query_hint": "monthly", "rag_search_hint": ""}`},
	}}
	c := NewClassifier(provider, "routing-model", testLogger())

	history := []Exchange{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
		{Question: "q4", Answer: "a4"},
	}
	c.Classify(context.Background(), "and per month?", history)

	req := provider.requests[0]
	// system + 3 bounded exchanges (2 messages each) + question
	if len(req.Messages) != 1+3*2+1 {
		t.Fatalf("message count = %d, want %d", len(req.Messages), 8)
	}
	if req.Messages[1].Content != "q2" {
		t.Fatalf("oldest exchange kept = %q, want q2", req.Messages[1].Content)
	}
}
