package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotLoaded is returned when a query runs before both tables are loaded.
var ErrNotLoaded = errors.New("graph tables not loaded")

var (
	_ QueryEngine = (*Repo)(nil)
	_ GraphSource = (*Repo)(nil)
)

// Repo owns the nodes/edges tables of one DuckDB database and answers the
// questions over them. It implements QueryEngine and GraphSource.
type Repo struct {
	db      *sql.DB
	timeout time.Duration

	mu     sync.RWMutex
	loaded map[string]bool
}

// NewRepo wraps an open database. A zero timeout disables per-query deadlines.
func NewRepo(db *sql.DB, timeout time.Duration) *Repo {
	return &Repo{
		db:      db,
		timeout: timeout,
		loaded:  make(map[string]bool),
	}
}

// Ready reports whether both tables are loaded.
func (r *Repo) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded[nodesTable] && r.loaded[edgesTable]
}

// markLoaded records a loaded table and reports whether both are now present.
func (r *Repo) markLoaded(table string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded[table] = true
	return r.loaded[nodesTable] && r.loaded[edgesTable]
}

func (r *Repo) requireLoaded() error {
	if !r.Ready() {
		return ErrNotLoaded
	}
	return nil
}

func (r *Repo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// Nodes returns every row of the nodes table. DuckDB preserves insertion
// order for plain scans, so rows come back in file order.
func (r *Repo) Nodes(ctx context.Context) ([]Node, error) {
	if err := r.requireLoaded(); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, kind, name FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("query nodes failed: %w", err)
	}
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Kind, &n.Name); err != nil {
			return nil, fmt.Errorf("scan node failed: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return nodes, nil
}

// Edges returns every row of the edges table in file order.
func (r *Repo) Edges(ctx context.Context) ([]Edge, error) {
	if err := r.requireLoaded(); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT source, target, metaedge FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("query edges failed: %w", err)
	}
	defer rows.Close()

	edges := []Edge{}
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Metaedge); err != nil {
			return nil, fmt.Errorf("scan edge failed: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return edges, nil
}
