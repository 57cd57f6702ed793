package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB over the fraud transaction store.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema defines the transaction table. The indexes back the filters the
// query generator is prompted to use: fraud flag, category, and time range.
const schema = `
CREATE TABLE IF NOT EXISTS fraud_transactions (
    row_index            INTEGER,
    trans_date_trans_time TEXT NOT NULL,
    cc_num               INTEGER,
    merchant             TEXT,
    category             TEXT,
    amt                  REAL,
    first                TEXT,
    last                 TEXT,
    gender               TEXT,
    street               TEXT,
    city                 TEXT,
    state                TEXT,
    zip                  INTEGER,
    lat                  REAL,
    long                 REAL,
    city_pop             INTEGER,
    job                  TEXT,
    dob                  TEXT,
    trans_num            TEXT,
    unix_time            INTEGER,
    merch_lat            REAL,
    merch_long           REAL,
    is_fraud             INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trans_date ON fraud_transactions(trans_date_trans_time);
CREATE INDEX IF NOT EXISTS idx_is_fraud ON fraud_transactions(is_fraud);
CREATE INDEX IF NOT EXISTS idx_category ON fraud_transactions(category);
CREATE INDEX IF NOT EXISTS idx_merchant ON fraud_transactions(merchant);
`

// Explain dry-runs the given query against the query planner without
// executing it, surfacing syntax and unknown-column errors.
func (d *DB) Explain(ctx context.Context, query string) error {
	query = strings.TrimSuffix(strings.TrimSpace(query), ";")
	rows, err := d.QueryContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return err
	}
	return rows.Close()
}

// Query executes a read-only query with the given timeout and returns
// column names and rows. Byte slices are converted to strings so results
// serialize cleanly.
func (d *DB) Query(ctx context.Context, query string, timeout time.Duration) ([]string, [][]any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, result, nil
}

// Stats summarizes the loaded dataset.
type Stats struct {
	TotalRows  int
	FraudCount int
	MinDate    string
	MaxDate    string
	Categories []string
}

// Validate returns summary statistics, confirming the table is populated.
func (d *DB) Validate(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := d.QueryRowContext(ctx, "SELECT COUNT(*) FROM fraud_transactions").Scan(&s.TotalRows); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}
	if err := d.QueryRowContext(ctx, "SELECT COUNT(*) FROM fraud_transactions WHERE is_fraud = 1").Scan(&s.FraudCount); err != nil {
		return nil, fmt.Errorf("counting fraud rows: %w", err)
	}
	if s.TotalRows > 0 {
		if err := d.QueryRowContext(ctx,
			"SELECT MIN(trans_date_trans_time), MAX(trans_date_trans_time) FROM fraud_transactions",
		).Scan(&s.MinDate, &s.MaxDate); err != nil {
			return nil, fmt.Errorf("reading date range: %w", err)
		}
	}

	rows, err := d.QueryContext(ctx, "SELECT DISTINCT category FROM fraud_transactions ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat sql.NullString
		if err := rows.Scan(&cat); err != nil {
			return nil, err
		}
		if cat.Valid {
			s.Categories = append(s.Categories, cat.String)
		}
	}

	return &s, rows.Err()
}
