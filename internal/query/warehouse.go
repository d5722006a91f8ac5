package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"slidesmith/internal/llm"
	"slidesmith/internal/llmtool"
)

// Warehouse answers natural-language questions against a SQL warehouse: the
// model translates the question into a single SELECT grounded on a schema
// snapshot, and the statement runs read-only through database/sql.
type Warehouse struct {
	db          *sql.DB
	llm         llm.LLMClient
	schema      string
	callTimeout time.Duration
}

// NewWarehouse opens the warehouse via the pgx stdlib driver and captures a
// schema snapshot used to ground SQL generation.
func NewWarehouse(ctx context.Context, dsn string, cli llm.LLMClient) (*Warehouse, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	w := &Warehouse{db: db, llm: cli, callTimeout: 30 * time.Second}
	if w.schema, err = snapshotSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query: schema snapshot: %w", err)
	}
	return w, nil
}

func (w *Warehouse) Close() error { return w.db.Close() }

var sqlPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Translate a natural-language data question into one SQL SELECT statement.",
	Background: "The statement runs read-only against the warehouse schema provided in the input.",
	OutputFields: []llmtool.PromptField{
		{Name: "sql", Type: "string", Required: true, Description: "A single SELECT (or WITH ... SELECT) statement. Empty string when the schema cannot answer the question."},
	},
	Constraints: []string{
		"SELECT or WITH statements only; no DDL/DML.",
		"Use only tables and columns present in the schema snapshot.",
		"Limit result sets to at most 100 rows.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious())

// Query translates the question to SQL and executes it. An unanswerable
// question yields empty rows, not an error.
func (w *Warehouse) Query(ctx context.Context, question string) (Rows, error) {
	input := map[string]any{
		"question": question,
		"schema":   w.schema,
	}
	prompt, err := llmtool.Render(sqlPromptSpec, input)
	if err != nil {
		return nil, err
	}
	raw, err := w.llm.GenerateJSON(llm.WithPhase(ctx, "sql"), prompt, input)
	if err != nil {
		return nil, err
	}
	var out struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(llmtool.CleanFences(string(raw))), &out); err != nil {
		return nil, fmt.Errorf("query: SQL JSON invalid: %w\nraw: %s", err, string(raw))
	}
	stmt := strings.TrimSpace(out.SQL)
	if stmt == "" {
		return Rows{}, nil
	}
	if !readOnly(stmt) {
		return nil, fmt.Errorf("query: refusing non-SELECT statement: %.80s", stmt)
	}

	ctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()
	rows, err := w.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out2, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[query] %d rows for %q", len(out2), question)
	return out2, nil
}

func readOnly(stmt string) bool {
	head := strings.ToUpper(strings.TrimSpace(stmt))
	return strings.HasPrefix(head, "SELECT") || strings.HasPrefix(head, "WITH")
}

func scanRows(rows *sql.Rows) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out Rows
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
			} else {
				rec[c] = vals[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// snapshotSchema lists public tables and columns as "table(col type, ...)"
// lines for the SQL prompt.
func snapshotSchema(ctx context.Context, db *sql.DB) (string, error) {
	const q = `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols := map[string][]string{}
	var order []string
	for rows.Next() {
		var table, col, typ string
		if err := rows.Scan(&table, &col, &typ); err != nil {
			return "", err
		}
		if _, ok := cols[table]; !ok {
			order = append(order, table)
		}
		cols[table] = append(cols[table], col+" "+typ)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	var buf strings.Builder
	for _, t := range order {
		fmt.Fprintf(&buf, "%s(%s)\n", t, strings.Join(cols[t], ", "))
	}
	return buf.String(), nil
}
