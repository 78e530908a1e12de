// Package config holds the runtime configuration for hetiostats.
//
// Values are layered: Default() < YAML file < .env file < environment < CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Engine names accepted by the Engine field.
const (
	EngineDuckDB = "duckdb"
	EngineMemory = "memory"
	EngineCypher = "cypher"
)

// Config contains every tunable of a hetiostats run.
// Use Default() to get sensible defaults, then override as needed.
type Config struct {
	// Input tables
	NodesPath string `yaml:"nodes_path"` // Tab-separated nodes table (default: "nodes.tsv")
	EdgesPath string `yaml:"edges_path"` // Tab-separated edges table (default: "edges.tsv")

	// Query engine
	Engine         string        `yaml:"engine"`           // duckdb, memory or cypher (default: duckdb)
	DuckDBPath     string        `yaml:"duckdb_path"`      // Empty means in-memory
	DuckDBThreads  int           `yaml:"duckdb_threads"`   // 0 = size from host
	DuckDBMemoryGB int           `yaml:"duckdb_memory_gb"` // 0 = size from host
	QueryTimeout   time.Duration `yaml:"query_timeout"`    // 0 = no timeout
	TopN           int           `yaml:"top_n"`            // Rows displayed per question (default: 5)

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Graph export
	Neo4jURI       string `yaml:"neo4j_uri"`
	Neo4jUser      string `yaml:"neo4j_user"`
	Neo4jPassword  string `yaml:"neo4j_password"`
	Neo4jDatabase  string `yaml:"neo4j_database"`
	Neo4jBatchSize int    `yaml:"neo4j_batch_size"`

	// Question answering
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		NodesPath: "nodes.tsv",
		EdgesPath: "edges.tsv",

		Engine: EngineDuckDB,
		TopN:   5,

		LogLevel: "info",

		Neo4jUser:      "neo4j",
		Neo4jDatabase:  "neo4j",
		Neo4jBatchSize: 1000,

		GeminiModel: "flash",
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env
// file in the working directory and the process environment. The result is
// not validated; callers apply their own overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// A missing .env is normal; anything else is not.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return cfg.FromEnv()
}

// FromEnv returns a copy of the config with environment overrides applied.
// A numeric or duration variable that does not parse is a *ConfigError.
func (c Config) FromEnv() (Config, error) {
	var err error
	c.NodesPath = getenv("HETIO_NODES_PATH", c.NodesPath)
	c.EdgesPath = getenv("HETIO_EDGES_PATH", c.EdgesPath)
	c.Engine = getenv("HETIO_ENGINE", c.Engine)
	c.DuckDBPath = getenv("DUCKDB_PATH", c.DuckDBPath)
	if c.DuckDBThreads, err = getenvInt("HETIO_DUCKDB_THREADS", c.DuckDBThreads); err != nil {
		return Config{}, err
	}
	if c.DuckDBMemoryGB, err = getenvInt("HETIO_DUCKDB_MEMORY_GB", c.DuckDBMemoryGB); err != nil {
		return Config{}, err
	}
	if c.QueryTimeout, err = getenvDuration("HETIO_QUERY_TIMEOUT", c.QueryTimeout); err != nil {
		return Config{}, err
	}
	if c.TopN, err = getenvInt("HETIO_TOP_N", c.TopN); err != nil {
		return Config{}, err
	}
	c.LogLevel = getenv("HETIO_LOG_LEVEL", c.LogLevel)

	c.Neo4jURI = getenv("NEO4J_URI", c.Neo4jURI)
	c.Neo4jUser = getenv("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPassword = getenv("NEO4J_PASSWORD", c.Neo4jPassword)
	c.Neo4jDatabase = getenv("NEO4J_DATABASE", c.Neo4jDatabase)
	if c.Neo4jBatchSize, err = getenvInt("NEO4J_BATCH_SIZE", c.Neo4jBatchSize); err != nil {
		return Config{}, err
	}

	c.GeminiAPIKey = getenv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getenv("GEMINI_MODEL", c.GeminiModel)
	return c, nil
}

// WithInputs returns a copy of the config reading the given tables.
// Empty arguments keep the current value.
func (c Config) WithInputs(nodesPath, edgesPath string) Config {
	if nodesPath != "" {
		c.NodesPath = nodesPath
	}
	if edgesPath != "" {
		c.EdgesPath = edgesPath
	}
	return c
}

// WithEngine returns a copy of the config using the named engine.
func (c Config) WithEngine(name string) Config {
	c.Engine = strings.ToLower(strings.TrimSpace(name))
	return c
}

// WithLogLevel returns a copy of the config with a modified log level.
func (c Config) WithLogLevel(level string) Config {
	c.LogLevel = level
	return c
}

// GraphEnabled reports whether a Neo4j endpoint is configured.
func (c Config) GraphEnabled() bool {
	return c.Neo4jURI != ""
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if c.NodesPath == "" {
		return &ConfigError{Field: "NodesPath", Message: "must not be empty"}
	}
	if c.EdgesPath == "" {
		return &ConfigError{Field: "EdgesPath", Message: "must not be empty"}
	}
	switch c.Engine {
	case EngineDuckDB, EngineMemory:
	case EngineCypher:
		if !c.GraphEnabled() {
			return &ConfigError{Field: "Engine", Message: "cypher requires Neo4jURI"}
		}
	default:
		return &ConfigError{Field: "Engine", Message: fmt.Sprintf("unknown engine %q", c.Engine)}
	}
	if c.TopN <= 0 {
		return &ConfigError{Field: "TopN", Message: "must be positive"}
	}
	if c.DuckDBThreads < 0 {
		return &ConfigError{Field: "DuckDBThreads", Message: "must not be negative"}
	}
	if c.DuckDBMemoryGB < 0 {
		return &ConfigError{Field: "DuckDBMemoryGB", Message: "must not be negative"}
	}
	if c.QueryTimeout < 0 {
		return &ConfigError{Field: "QueryTimeout", Message: "must not be negative"}
	}
	if c.GraphEnabled() && c.Neo4jBatchSize <= 0 {
		return &ConfigError{Field: "Neo4jBatchSize", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &ConfigError{Field: key, Message: fmt.Sprintf("%q is not an integer", v)}
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return def, &ConfigError{Field: key, Message: fmt.Sprintf("%q is not a duration", v)}
	}
	return d, nil
}
