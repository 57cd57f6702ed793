package agent

import (
	"fmt"
	"strings"
)

// maxTableRows bounds how many rows of a result set are rendered into
// prompts and terminal output.
const maxTableRows = 20

// FormatRowsAsTable renders columns and rows as a fixed-width text table.
func FormatRowsAsTable(columns []string, rows [][]any) string {
	if len(rows) == 0 {
		return "No results found."
	}

	displayRows := rows
	if len(displayRows) > maxTableRows {
		displayRows = displayRows[:maxTableRows]
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	cells := make([][]string, len(displayRows))
	for r, row := range displayRows {
		cells[r] = make([]string, len(columns))
		for i := range columns {
			var val string
			if i < len(row) {
				val = fmt.Sprint(row[i])
			}
			cells[r][i] = val
			if len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}

	var lines []string
	header := make([]string, len(columns))
	sep := make([]string, len(columns))
	for i, c := range columns {
		header[i] = pad(c, widths[i])
		sep[i] = strings.Repeat("-", widths[i])
	}
	lines = append(lines, strings.Join(header, " | "), strings.Join(sep, "-+-"))

	for _, row := range cells {
		padded := make([]string, len(row))
		for i, v := range row {
			padded[i] = pad(v, widths[i])
		}
		lines = append(lines, strings.Join(padded, " | "))
	}

	if len(rows) > maxTableRows {
		lines = append(lines, fmt.Sprintf("... and %d more rows", len(rows)-maxTableRows))
	}

	return strings.Join(lines, "\n")
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

// renderSQLEvidence formats a structured-query result for prompt context.
func renderSQLEvidence(res *SQLResult) string {
	return fmt.Sprintf("## SQL Query Results\nQuery: %s\nRows returned: %d\n\n%s",
		res.Query, res.RowCount, FormatRowsAsTable(res.Columns, res.Rows))
}

// renderRAGEvidence formats retrieved passages with their citations.
func renderRAGEvidence(res *RAGResult) string {
	var parts []string
	for i, chunk := range res.Chunks {
		meta := res.Metadatas[i]
		parts = append(parts, fmt.Sprintf("[Source: %s, Page %d]\n%s", meta.Source, meta.Page, chunk))
	}
	return "## Document Context\n" + strings.Join(parts, "\n\n---\n\n")
}

// citedSources builds the user-visible source list for an answer.
func citedSources(sqlRes *SQLResult, ragRes *RAGResult) []string {
	var sources []string

	if sqlRes != nil && sqlRes.RowCount > 0 {
		sources = append(sources, fmt.Sprintf("SQL: %s", sqlRes.Query))
	}

	if ragRes != nil && len(ragRes.Chunks) > 0 {
		seen := map[string]bool{}
		for _, meta := range ragRes.Metadatas {
			key := fmt.Sprintf("%s, Page %d", meta.Source, meta.Page)
			if meta.Page > 0 && !seen[key] {
				seen[key] = true
				sources = append(sources, fmt.Sprintf("Document: %s", key))
			}
		}
	}

	return sources
}
