package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fraudsight/fraudsight/internal/db"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seed := `INSERT INTO fraud_transactions
		(trans_date_trans_time, merchant, category, amt, is_fraud)
		VALUES
		('2019-01-01 00:00:18', 'fraud_Rippin', 'misc_net', 4.97, 0),
		('2019-01-02 12:30:00', 'fraud_Heller', 'grocery_pos', 107.23, 1),
		('2019-02-10 08:15:42', 'fraud_Lind', 'entertainment', 220.11, 1),
		('2019-02-11 19:02:05', 'fraud_Kub', 'gas_transport', 45.00, 0),
		('2019-03-05 23:59:59', 'fraud_Keeling', 'grocery_pos', 351.93, 1)`
	if _, err := store.Exec(seed); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	return store
}

func newTestSQLTool(store *db.DB, provider *scriptedProvider) *SQLTool {
	return NewSQLTool(provider, "model", store, 100, 5*time.Second, testLogger())
}

func TestSQLToolRunsValidQuery(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "SELECT category, COUNT(*) AS n FROM fraud_transactions WHERE is_fraud = 1 GROUP BY category ORDER BY n DESC"},
	}}
	tool := newTestSQLTool(store, provider)

	res, err := tool.Run(context.Background(), "which categories have the most fraud?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RowCount != 2 {
		t.Fatalf("RowCount = %d, want 2", res.RowCount)
	}
	if res.Columns[0] != "category" || res.Columns[1] != "n" {
		t.Fatalf("Columns = %v", res.Columns)
	}
	if res.Rows[0][0] != "grocery_pos" {
		t.Fatalf("top category = %v, want grocery_pos", res.Rows[0][0])
	}
}

func TestSQLToolStripsFencesAndSemicolon(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "```sql\nSELECT COUNT(*) AS total FROM fraud_transactions;\n```"},
	}}
	tool := newTestSQLTool(store, provider)

	res, err := tool.Run(context.Background(), "how many transactions?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(res.Query, "```") || strings.HasSuffix(res.Query, ";") {
		t.Fatalf("query not normalized: %q", res.Query)
	}
	if res.Rows[0][0] != int64(5) {
		t.Fatalf("count = %v, want 5", res.Rows[0][0])
	}
}

func TestSQLToolRegeneratesAfterDeniedKeyword(t *testing.T) {
	store := newTestStore(t)
	// Valid SELECT shape, still matches the keyword gate. The gate is
	// deliberately coarse: any occurrence rejects.
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "SELECT 'DROP' AS op FROM fraud_transactions LIMIT 1"},
		{content: "SELECT COUNT(*) AS total FROM fraud_transactions"},
	}}
	tool := newTestSQLTool(store, provider)

	res, err := tool.Run(context.Background(), "count transactions")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RowCount != 1 {
		t.Fatalf("RowCount = %d, want 1", res.RowCount)
	}
	if provider.callCount() != 2 {
		t.Fatalf("generation calls = %d, want 2", provider.callCount())
	}
	// The second generation must carry the rejection feedback.
	second := provider.requests[1].Messages[1].Content
	if !strings.Contains(second, "rejected") {
		t.Fatalf("regeneration prompt lacks feedback: %q", second)
	}

	var n int
	if err := store.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM fraud_transactions").Scan(&n); err != nil {
		t.Fatalf("table gone after denied query: %v", err)
	}
}

func TestSQLToolRejectsNonSelect(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "WITH x AS (SELECT 1) SELECT * FROM x"},
		{content: "SELECT 1"},
	}}
	tool := newTestSQLTool(store, provider)

	res, err := tool.Run(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// First response fails the SELECT-prefix check, second passes.
	if res.Query != "SELECT 1" {
		t.Fatalf("Query = %q", res.Query)
	}
}

func TestSQLToolExhaustsGenerationAttempts(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "SELECT * FROM no_such_table"},
		{content: "SELECT * FROM still_missing"},
		{content: "SELECT bogus_column FROM fraud_transactions"},
	}}
	tool := newTestSQLTool(store, provider)

	_, err := tool.Run(context.Background(), "bad luck")
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
	if qerr.Stage != "exhausted" {
		t.Fatalf("Stage = %q, want exhausted", qerr.Stage)
	}
	if provider.callCount() != maxGenerationAttempts {
		t.Fatalf("generation calls = %d, want %d", provider.callCount(), maxGenerationAttempts)
	}
}

func TestSQLToolTruncatesToRowLimit(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "SELECT merchant FROM fraud_transactions"},
	}}
	tool := NewSQLTool(provider, "model", store, 2, 5*time.Second, testLogger())

	res, err := tool.Run(context.Background(), "list merchants")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RowCount != 2 || len(res.Rows) != 2 {
		t.Fatalf("RowCount/len = %d/%d, want 2/2", res.RowCount, len(res.Rows))
	}
}

func TestSQLToolEmptyResultIsNotError(t *testing.T) {
	store := newTestStore(t)
	provider := &scriptedProvider{responses: []scriptedResponse{
		{content: "SELECT merchant FROM fraud_transactions WHERE amt > 99999"},
	}}
	tool := newTestSQLTool(store, provider)

	res, err := tool.Run(context.Background(), "huge transactions")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RowCount != 0 {
		t.Fatalf("RowCount = %d, want 0", res.RowCount)
	}
}

func TestDenyListPattern(t *testing.T) {
	blocked := []string{
		"SELECT 1; drop table x",
		"SELECT * FROM t WHERE c = 1 UNION SELECT name FROM sqlite_master; DELETE FROM t",
		"insert into t values (1)",
		"PRAGMA table_info(fraud_transactions)",
		"SELECT 1 ATTACH DATABASE 'x' AS y",
	}
	for _, q := range blocked {
		if denyListPattern.FindString(q) == "" {
			t.Errorf("deny list missed %q", q)
		}
	}

	allowed := []string{
		"SELECT updated_total FROM fraud_transactions", // substring, not keyword
		"SELECT category, COUNT(*) FROM fraud_transactions GROUP BY category",
	}
	for _, q := range allowed {
		if m := denyListPattern.FindString(q); m != "" {
			t.Errorf("deny list false positive %q on %q", m, q)
		}
	}
}
