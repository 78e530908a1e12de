// Package graph mirrors the loaded Hetionet tables into Neo4j and answers
// the drug statistics questions in Cypher.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hetiostats/internal/database/relational"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 1000

// GraphClient defines the interface for graph database operations.
type GraphClient interface {
	Close(ctx context.Context) error
	Reset(ctx context.Context) error
	IngestGraph(ctx context.Context, nodes []relational.Node, edges []relational.Edge) error
	ExecuteCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// Neo4jClient implements GraphClient for Neo4j.
type Neo4jClient struct {
	driver    neo4j.DriverWithContext
	dbName    string
	batchSize int
	logger    *slog.Logger
}

// Option configures a Neo4jClient.
type Option func(*Neo4jClient)

// WithBatchSize sets the rows per ingest statement. Values <= 0 are ignored.
func WithBatchSize(n int) Option {
	return func(c *Neo4jClient) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithLogger sets the logger used for ingest progress.
func WithLogger(l *slog.Logger) Option {
	return func(c *Neo4jClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewNeo4jClient creates a new Neo4j client and verifies connectivity.
func NewNeo4jClient(ctx context.Context, uri, username, password, dbName string, opts ...Option) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	c := &Neo4jClient{
		driver:    driver,
		dbName:    dbName,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// resetGraph deletes in batches so a full Hetionet graph never has to fit in
// one transaction. CALL IN TRANSACTIONS only runs in an auto-commit query.
const resetGraph = `MATCH (n) CALL { WITH n DETACH DELETE n } IN TRANSACTIONS OF 10000 ROWS`

// Reset deletes all data in the graph.
func (c *Neo4jClient) Reset(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	res, err := session.Run(ctx, resetGraph, nil)
	if err != nil {
		return fmt.Errorf("reset graph: %w", err)
	}
	if _, err := res.Consume(ctx); err != nil {
		return fmt.Errorf("reset graph: %w", err)
	}
	return nil
}

const (
	entityConstraint = `CREATE CONSTRAINT entity_id IF NOT EXISTS
		FOR (e:Entity) REQUIRE e.id IS UNIQUE`

	mergeNodes = `
		UNWIND $rows AS row
		MERGE (e:Entity {id: row.id})
		SET e.name = row.name, e.kind = row.kind
	`

	// Edges are CREATEd so duplicate rows stay duplicated. Endpoints missing
	// from the node table are merged without a kind.
	createEdges = `
		UNWIND $rows AS row
		MERGE (s:Entity {id: row.source})
		MERGE (t:Entity {id: row.target})
		CREATE (s)-[:REL {metaedge: row.metaedge}]->(t)
	`
)

// IngestGraph writes nodes as (:Entity {id, name, kind}) and edges as
// [:REL {metaedge}] in batches of the configured size. Each batch commits
// in its own transaction.
func (c *Neo4jClient) IngestGraph(ctx context.Context, nodes []relational.Node, edges []relational.Edge) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, entityConstraint, nil); err != nil {
		return fmt.Errorf("create entity constraint: %w", err)
	}

	write := func(ctx context.Context, query string, rows []map[string]any) error {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, map[string]any{"rows": rows})
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		return err
	}

	start := time.Now()
	n, err := writeBatches(ctx, write, mergeNodes, nodeRows(nodes), c.batchSize)
	if err != nil {
		return fmt.Errorf("ingest nodes: %w", err)
	}
	c.logger.Debug("graph nodes ingested", "rows", len(nodes), "batches", n)

	n, err = writeBatches(ctx, write, createEdges, edgeRows(edges), c.batchSize)
	if err != nil {
		return fmt.Errorf("ingest edges: %w", err)
	}
	c.logger.Info("graph ingested",
		"nodes", len(nodes),
		"edges", len(edges),
		"edge_batches", n,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

type batchWriter func(ctx context.Context, query string, rows []map[string]any) error

// writeBatches sends rows to write in consecutive slices of at most size
// rows and returns the number of batches written.
func writeBatches(ctx context.Context, write batchWriter, query string, rows []map[string]any, size int) (int, error) {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := 0
	for start := 0; start < len(rows); start += size {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		end := min(start+size, len(rows))
		if err := write(ctx, query, rows[start:end]); err != nil {
			return batches, fmt.Errorf("batch %d: %w", batches, err)
		}
		batches++
	}
	return batches, nil
}

func nodeRows(nodes []relational.Node) []map[string]any {
	rows := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		rows[i] = map[string]any{"id": n.ID, "name": n.Name, "kind": n.Kind}
	}
	return rows
}

func edgeRows(edges []relational.Edge) []map[string]any {
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{"source": e.Source, "target": e.Target, "metaedge": e.Metaedge}
	}
	return rows
}
