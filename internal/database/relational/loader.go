package relational

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	nodesTable = "nodes"
	edgesTable = "edges"
)

// ErrMissingColumn marks a table whose header lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

var (
	nodeColumns = []string{"id", "kind", "name"}
	edgeColumns = []string{"source", "target", "metaedge"}
)

// LoadError reports a fatal problem reading an input table.
type LoadError struct {
	Path   string
	Column string // set when a required column is missing
	Err    error
}

func (e *LoadError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadNodes reads a tab-separated nodes file with at least the columns
// id, kind and name into the nodes table and returns the row count.
func (r *Repo) LoadNodes(ctx context.Context, path string) (int64, error) {
	return r.loadTable(ctx, nodesTable, path, nodeColumns)
}

// LoadEdges reads a tab-separated edges file with at least the columns
// source, target and metaedge into the edges table and returns the row count.
// Header names match case-insensitively, so "Source" is accepted.
func (r *Repo) LoadEdges(ctx context.Context, path string) (int64, error) {
	return r.loadTable(ctx, edgesTable, path, edgeColumns)
}

// Load reads both tables and returns their summary.
func (r *Repo) Load(ctx context.Context, nodesPath, edgesPath string) (GraphStats, error) {
	if _, err := r.LoadNodes(ctx, nodesPath); err != nil {
		return GraphStats{}, err
	}
	if _, err := r.LoadEdges(ctx, edgesPath); err != nil {
		return GraphStats{}, err
	}
	return r.Stats(ctx)
}

func (r *Repo) loadTable(ctx context.Context, table, path string, required []string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, &LoadError{Path: path, Err: err}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	source := readTSV(path)

	header, err := r.header(ctx, source)
	if err != nil {
		return 0, &LoadError{Path: path, Err: err}
	}

	selects := make([]string, 0, len(required))
	for _, col := range required {
		actual, ok := matchColumn(header, col)
		if !ok {
			return 0, &LoadError{Path: path, Column: col, Err: ErrMissingColumn}
		}
		selects = append(selects, fmt.Sprintf("coalesce(%s, '') AS %s", quoteIdent(actual), col))
	}

	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT %s FROM %s",
		table, strings.Join(selects, ", "), source)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return 0, &LoadError{Path: path, Err: err}
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	// The views depend on both tables, so they are (re)built once the second
	// table is in place.
	if r.markLoaded(table) {
		if err := r.createViews(ctx); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// header returns the column names of a table expression without reading rows.
func (r *Repo) header(ctx context.Context, source string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+source+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// readTSV builds a read_csv table function call for a headed, tab-separated
// file with every column read as text.
func readTSV(path string) string {
	return fmt.Sprintf("read_csv(%s, delim = '\t', header = true, all_varchar = true)", quoteLiteral(path))
}

func matchColumn(header []string, want string) (string, bool) {
	for _, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return h, true
		}
	}
	return "", false
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
