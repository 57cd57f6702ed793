package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/db"
	"github.com/fraudsight/fraudsight/internal/llm"
)

// maxGenerationAttempts bounds query regeneration inside one pipeline run.
// This is separate from the orchestrator's outer retry loop.
const maxGenerationAttempts = 3

const sqlSystemPrompt = `You are an expert SQL query generator for SQLite databases.
You will be given a natural language question and must generate a valid SQLite SELECT query.

%s

RULES:
1. ONLY generate SELECT statements. Never use INSERT, UPDATE, DELETE, DROP, ALTER, or PRAGMA.
2. Use strftime() for date grouping. Examples:
   - Monthly: strftime('%%Y-%%m', trans_date_trans_time)
   - Daily: strftime('%%Y-%%m-%%d', trans_date_trans_time)
   - Yearly: strftime('%%Y', trans_date_trans_time)
3. Always include appropriate WHERE clauses when filtering.
4. Use LIMIT 100 for non-aggregation queries.
5. Use ROUND() for decimal values.
6. For fraud rate calculations: ROUND(AVG(is_fraud) * 100, 2) or ROUND(CAST(SUM(is_fraud) AS REAL) / COUNT(*) * 100, 2)

EXAMPLES:

Question: "What is the monthly fraud rate?"
SQL: SELECT strftime('%%Y-%%m', trans_date_trans_time) AS month, ROUND(AVG(is_fraud) * 100, 2) AS fraud_rate_pct FROM fraud_transactions GROUP BY month ORDER BY month

Question: "Which categories have the most fraud?"
SQL: SELECT category, COUNT(*) AS fraud_count, ROUND(CAST(COUNT(*) AS REAL) / (SELECT COUNT(*) FROM fraud_transactions WHERE is_fraud = 1) * 100, 2) AS pct_of_total_fraud FROM fraud_transactions WHERE is_fraud = 1 GROUP BY category ORDER BY fraud_count DESC LIMIT 10

Question: "What is the average fraudulent transaction amount?"
SQL: SELECT ROUND(AVG(amt), 2) AS avg_fraud_amount FROM fraud_transactions WHERE is_fraud = 1

OUTPUT FORMAT:
Return ONLY the SQL query, nothing else. No markdown, no explanation, no code blocks.`

// denyListPattern matches mutation and administrative keywords. A match is
// a hard rejection regardless of where the keyword appears.
var denyListPattern = regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|CREATE|PRAGMA|ATTACH|DETACH|REPLACE|TRUNCATE)\b`)

// SQLTool turns a natural-language question into a validated, executed,
// read-only query against the transaction store.
type SQLTool struct {
	provider llm.Provider
	model    string
	store    *db.DB
	rowLimit int
	timeout  time.Duration
	logger   *zerolog.Logger
}

// NewSQLTool creates the structured-query pipeline.
func NewSQLTool(provider llm.Provider, model string, store *db.DB, rowLimit int, timeout time.Duration, logger *zerolog.Logger) *SQLTool {
	return &SQLTool{
		provider: provider,
		model:    model,
		store:    store,
		rowLimit: rowLimit,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run executes the five-stage pipeline: generate, statically validate,
// safety-gate, execute, format. Validation and safety failures feed their
// reason back into the generation prompt, up to maxGenerationAttempts total
// generations; a runtime failure gets one corrective regeneration.
func (t *SQLTool) Run(ctx context.Context, question string) (*SQLResult, error) {
	var (
		lastErr     string
		feedback    string
		prevQuery   string
		execRetried bool
	)

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		// Stage 1: generate.
		query, err := t.generate(ctx, question, prevQuery, feedback)
		if err != nil {
			return nil, &QueryError{Stage: "generate", Detail: err.Error()}
		}
		t.logger.Info().Int("attempt", attempt).Str("query", query).Msg("generated query")

		// Stage 2: static validation against the query planner.
		if err := t.validate(ctx, query); err != nil {
			lastErr = err.Error()
			feedback = fmt.Sprintf("The previous query failed validation: %s", lastErr)
			prevQuery = query
			t.logger.Warn().Int("attempt", attempt).Str("reason", lastErr).Msg("query validation failed")
			continue
		}

		// Stage 3: safety gate. Deny-listed keywords are a hard rejection.
		if match := denyListPattern.FindString(query); match != "" {
			lastErr = fmt.Sprintf("query contains forbidden keyword %q (only read-only SELECT is allowed)", match)
			feedback = fmt.Sprintf("The previous query was rejected: %s", lastErr)
			prevQuery = query
			t.logger.Warn().Int("attempt", attempt).Str("keyword", match).Msg("query rejected by safety gate")
			continue
		}

		// Stage 4: execute with a bounded timeout.
		columns, rows, err := t.store.Query(ctx, query, t.timeout)
		if err != nil {
			lastErr = err.Error()
			if execRetried {
				return nil, &QueryError{Stage: "execute", Detail: lastErr}
			}
			// One corrective regeneration with the engine's error text.
			execRetried = true
			feedback = fmt.Sprintf("The previous query failed at execution time: %s", lastErr)
			prevQuery = query
			t.logger.Warn().Int("attempt", attempt).Str("reason", lastErr).Msg("query execution failed")
			continue
		}

		// Stage 5: format. An empty result set is a valid outcome.
		if len(rows) > t.rowLimit {
			rows = rows[:t.rowLimit]
		}
		return &SQLResult{
			Query:    query,
			Columns:  columns,
			Rows:     rows,
			RowCount: len(rows),
		}, nil
	}

	return nil, &QueryError{Stage: "exhausted", Detail: lastErr}
}

// generate produces query text from the question, the schema description,
// and optional failure feedback from a prior attempt.
func (t *SQLTool) generate(ctx context.Context, question, prevQuery, feedback string) (string, error) {
	userContent := fmt.Sprintf("Generate a SQLite SELECT query for this question:\n\n%s", question)
	if feedback != "" {
		userContent = fmt.Sprintf("%s\n\nPrevious query:\n%s\n\n%s\nGenerate a corrected query.", userContent, prevQuery, feedback)
	}

	resp, err := t.provider.Complete(ctx, llm.CompletionRequest{
		Model: t.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(sqlSystemPrompt, db.SchemaDescription())},
			{Role: llm.RoleUser, Content: userContent},
		},
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	return normalizeQuery(resp.Content), nil
}

// validate dry-runs the query against the planner and enforces the
// SELECT-only shape before any execution risk.
func (t *SQLTool) validate(ctx context.Context, query string) error {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return fmt.Errorf("query must start with SELECT")
	}
	if err := t.store.Explain(ctx, query); err != nil {
		return fmt.Errorf("syntax check failed: %w", err)
	}
	return nil
}

// normalizeQuery strips markdown fences and trailing semicolons from
// generated query text.
func normalizeQuery(raw string) string {
	q := stripMarkdownCodeBlock(raw)
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, ";")
	return strings.TrimSpace(q)
}
