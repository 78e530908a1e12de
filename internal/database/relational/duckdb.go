package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// =============================================================================
// DATABASE CLIENT INTERFACE
// =============================================================================

// DatabaseClient defines the contract for database operations.
type DatabaseClient interface {
	// DB returns the underlying sql.DB instance.
	DB() *sql.DB
	// Close releases database resources.
	Close() error
	// Configure sets database-specific options.
	Configure(opts DatabaseConfig) error
	// Config returns the effective options.
	Config() DatabaseConfig
	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}

// DatabaseConfig holds configuration options for the database.
type DatabaseConfig struct {
	Threads       int           // Number of threads for DuckDB (0 = size from host)
	MemoryLimitGB int           // Memory limit in GB (0 = size from host)
	Timeout       time.Duration // Query timeout (0 = no timeout)
}

// =============================================================================
// DUCKDB CLIENT IMPLEMENTATION
// =============================================================================

var _ DatabaseClient = (*DuckDBClient)(nil)

// DuckDBClient manages the physical connection to a DuckDB database.
type DuckDBClient struct {
	db     *sql.DB
	config DatabaseConfig
}

// DuckDBOption configures the DuckDB client.
type DuckDBOption func(*DuckDBClient)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Threads = n
	}
}

// WithMemoryLimit sets the DuckDB memory limit in GB.
func WithMemoryLimit(gb int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.MemoryLimitGB = gb
	}
}

// WithTimeout sets the query timeout.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Timeout = d
	}
}

// NewDuckDBClient creates a new DuckDB client.
// If dsn is empty, an in-memory database is created.
// DSN examples:
//   - "" or ":memory:" for in-memory database
//   - "/path/to/file.db" for file-based database
func NewDuckDBClient(dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	client := &DuckDBClient{}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.config = withHostDefaults(client.config)

	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx := context.Background()
	if client.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.config.Timeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// One connection, so the PRAGMAs below hold for every query.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	client.db = db

	if err := client.Configure(client.config); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}

	return client, nil
}

// DB returns the underlying sql.DB instance.
func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

// Config returns the effective configuration.
func (c *DuckDBClient) Config() DatabaseConfig {
	return c.config
}

// Close releases database resources.
func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Configure applies database configuration options.
func (c *DuckDBClient) Configure(cfg DatabaseConfig) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if cfg.Threads > 0 {
		_, err := c.db.Exec(fmt.Sprintf("PRAGMA threads=%d", cfg.Threads))
		if err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}

	if cfg.MemoryLimitGB > 0 {
		_, err := c.db.Exec(fmt.Sprintf("PRAGMA memory_limit='%dGB'", cfg.MemoryLimitGB))
		if err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}

	c.config = cfg
	return nil
}

// Ping verifies database connectivity.
func (c *DuckDBClient) Ping(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.db.PingContext(ctx)
}

// =============================================================================
// FACTORY FUNCTIONS
// =============================================================================

// NewInMemoryDB creates a new in-memory DuckDB database.
func NewInMemoryDB(opts ...DuckDBOption) (*DuckDBClient, error) {
	return NewDuckDBClient(":memory:", opts...)
}

// NewFileDB creates a new file-based DuckDB database.
func NewFileDB(path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	return NewDuckDBClient(path, opts...)
}

// withHostDefaults fills unset sizing from the host: every logical CPU and
// half of the currently available memory. Host lookup failures leave DuckDB's own
// defaults in place.
func withHostDefaults(cfg DatabaseConfig) DatabaseConfig {
	if cfg.Threads == 0 {
		if n, err := cpu.Counts(true); err == nil && n > 0 {
			cfg.Threads = n
		}
	}
	if cfg.MemoryLimitGB == 0 {
		if vm, err := mem.VirtualMemory(); err == nil {
			cfg.MemoryLimitGB = int(vm.Available / 2 / (1 << 30))
		}
	}
	return cfg
}
