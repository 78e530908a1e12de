// Package database owns the lifetime of the stores behind a run: the DuckDB
// tables, the optional in-memory engine and the optional Neo4j graph.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hetiostats/internal/config"
	"hetiostats/internal/database/graph"
	"hetiostats/internal/database/relational"
	"hetiostats/internal/engine"
)

// ErrEngineUnavailable is returned when the configured engine cannot be
// served by the session, such as cypher without a graph connection.
var ErrEngineUnavailable = errors.New("query engine unavailable")

const graphCloseTimeout = 10 * time.Second

// Session holds every resource acquired for one run. Close releases them.
type Session struct {
	cfg    config.Config
	logger *slog.Logger

	duck   relational.DatabaseClient
	repo   *relational.Repo
	memory *engine.MemoryEngine
	graph  graph.GraphClient
	stats  relational.GraphStats

	closeOnce sync.Once
	closeErr  error
}

type sessionOptions struct {
	logger      *slog.Logger
	graphClient graph.GraphClient
	ingest      bool
}

// Option configures OpenSession.
type Option func(*sessionOptions)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithGraphClient uses g instead of dialing Neo4j from the config. The
// session takes ownership and closes it.
func WithGraphClient(g graph.GraphClient) Option {
	return func(o *sessionOptions) { o.graphClient = g }
}

// WithGraphIngest replaces the graph contents with the loaded tables during
// OpenSession. The cypher engine always ingests.
func WithGraphIngest(enabled bool) Option {
	return func(o *sessionOptions) { o.ingest = enabled }
}

// OpenSession opens DuckDB, loads both tables and prepares the configured
// engine. On any failure it releases whatever it had acquired.
func OpenSession(ctx context.Context, cfg config.Config, opts ...Option) (_ *Session, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := sessionOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{cfg: cfg, logger: o.logger, graph: o.graphClient}
	defer func() {
		if err != nil {
			if cerr := s.Close(); cerr != nil {
				s.logger.Warn("session cleanup failed", "error", cerr)
			}
		}
	}()

	duckOpts := []relational.DuckDBOption{
		relational.WithThreads(cfg.DuckDBThreads),
		relational.WithMemoryLimit(cfg.DuckDBMemoryGB),
		relational.WithTimeout(cfg.QueryTimeout),
	}
	var duck *relational.DuckDBClient
	if cfg.DuckDBPath != "" {
		duck, err = relational.NewFileDB(cfg.DuckDBPath, duckOpts...)
	} else {
		duck, err = relational.NewInMemoryDB(duckOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	s.duck = duck
	if err = s.Ping(ctx); err != nil {
		return nil, err
	}
	dc := s.duck.Config()
	s.logger.Debug("duckdb opened", "path", cfg.DuckDBPath, "threads", dc.Threads, "memory_gb", dc.MemoryLimitGB)

	s.repo = relational.NewRepo(s.duck.DB(), cfg.QueryTimeout)
	start := time.Now()
	s.stats, err = s.repo.Load(ctx, cfg.NodesPath, cfg.EdgesPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tables loaded",
		"nodes", s.stats.Nodes,
		"edges", s.stats.Edges,
		"compounds", s.stats.Compounds,
		"qualifying_edges", s.stats.QualifyingEdges,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if cfg.Engine == config.EngineMemory {
		if s.memory, err = engine.NewMemoryEngineFromSource(ctx, s.repo); err != nil {
			return nil, fmt.Errorf("build memory engine: %w", err)
		}
	}

	needGraph := o.ingest || cfg.Engine == config.EngineCypher
	if needGraph && s.graph == nil {
		if !cfg.GraphEnabled() {
			return nil, fmt.Errorf("graph ingest: %w: no neo4j uri configured", ErrEngineUnavailable)
		}
		client, err := graph.NewNeo4jClient(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase,
			graph.WithBatchSize(cfg.Neo4jBatchSize),
			graph.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.graph = client
	}
	if needGraph {
		if err = s.IngestGraph(ctx); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// IngestGraph clears the graph and writes the loaded tables into it.
func (s *Session) IngestGraph(ctx context.Context) error {
	if s.graph == nil {
		return fmt.Errorf("graph ingest: %w", ErrEngineUnavailable)
	}
	nodes, err := s.repo.Nodes(ctx)
	if err != nil {
		return err
	}
	edges, err := s.repo.Edges(ctx)
	if err != nil {
		return err
	}
	if err := s.graph.Reset(ctx); err != nil {
		return err
	}
	return s.graph.IngestGraph(ctx, nodes, edges)
}

// Engine returns the query engine selected by the config.
func (s *Session) Engine() (relational.QueryEngine, error) {
	return s.EngineFor(s.cfg.Engine)
}

// EngineFor returns the named engine if the session can serve it.
func (s *Session) EngineFor(name string) (relational.QueryEngine, error) {
	switch name {
	case config.EngineDuckDB:
		return s.repo, nil
	case config.EngineMemory:
		if s.memory == nil {
			return nil, fmt.Errorf("%s: %w", name, ErrEngineUnavailable)
		}
		return s.memory, nil
	case config.EngineCypher:
		if s.graph == nil {
			return nil, fmt.Errorf("%s: %w", name, ErrEngineUnavailable)
		}
		return graph.NewCypherEngine(s.graph), nil
	default:
		return nil, fmt.Errorf("unknown engine %q: %w", name, ErrEngineUnavailable)
	}
}

// Ping checks that DuckDB still answers.
func (s *Session) Ping(ctx context.Context) error {
	if s.duck == nil {
		return fmt.Errorf("ping duckdb: %w", ErrEngineUnavailable)
	}
	if err := s.duck.Ping(ctx); err != nil {
		return fmt.Errorf("ping duckdb: %w", err)
	}
	return nil
}

// Stats returns the summary computed at load time.
func (s *Session) Stats() relational.GraphStats { return s.stats }

// Repo returns the DuckDB repository.
func (s *Session) Repo() *relational.Repo { return s.repo }

// Graph returns the graph client, or nil when no graph is attached.
func (s *Session) Graph() graph.GraphClient { return s.graph }

// Config returns the configuration the session was opened with.
func (s *Session) Config() config.Config { return s.cfg }

// Close releases the graph client and DuckDB. It is safe to call more than
// once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.graph != nil {
			ctx, cancel := context.WithTimeout(context.Background(), graphCloseTimeout)
			if err := s.graph.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close graph: %w", err))
			}
			cancel()
		}
		if s.duck != nil {
			if err := s.duck.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close duckdb: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
