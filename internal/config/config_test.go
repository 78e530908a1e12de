package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "nodes.tsv", cfg.NodesPath)
	assert.Equal(t, "edges.tsv", cfg.EdgesPath)
	assert.Equal(t, EngineDuckDB, cfg.Engine)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 1000, cfg.Neo4jBatchSize)
	assert.False(t, cfg.GraphEnabled())
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c Config) Config
		field   string
		wantErr bool
	}{
		{
			name:   "valid default config",
			mutate: func(c Config) Config { return c },
		},
		{
			name:   "memory engine",
			mutate: func(c Config) Config { return c.WithEngine("Memory") },
		},
		{
			name:    "unknown engine",
			mutate:  func(c Config) Config { return c.WithEngine("sqlite") },
			field:   "Engine",
			wantErr: true,
		},
		{
			name:    "cypher without neo4j",
			mutate:  func(c Config) Config { return c.WithEngine(EngineCypher) },
			field:   "Engine",
			wantErr: true,
		},
		{
			name: "cypher with neo4j",
			mutate: func(c Config) Config {
				c.Neo4jURI = "neo4j://localhost:7687"
				return c.WithEngine(EngineCypher)
			},
		},
		{
			name:    "empty nodes path",
			mutate:  func(c Config) Config { c.NodesPath = ""; return c },
			field:   "NodesPath",
			wantErr: true,
		},
		{
			name:    "zero top n",
			mutate:  func(c Config) Config { c.TopN = 0; return c },
			field:   "TopN",
			wantErr: true,
		},
		{
			name:    "negative threads",
			mutate:  func(c Config) Config { c.DuckDBThreads = -1; return c },
			field:   "DuckDBThreads",
			wantErr: true,
		},
		{
			name: "graph with zero batch",
			mutate: func(c Config) Config {
				c.Neo4jURI = "neo4j://localhost:7687"
				c.Neo4jBatchSize = 0
				return c
			},
			field:   "Neo4jBatchSize",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(Default()).Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_WithInputsKeepsEmpty(t *testing.T) {
	cfg := Default().WithInputs("data/nodes.tsv", "")
	assert.Equal(t, "data/nodes.tsv", cfg.NodesPath)
	assert.Equal(t, "edges.tsv", cfg.EdgesPath)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("HETIO_NODES_PATH", "/data/hetionet-nodes.tsv")
	t.Setenv("HETIO_ENGINE", EngineMemory)
	t.Setenv("HETIO_TOP_N", "10")
	t.Setenv("HETIO_QUERY_TIMEOUT", "45s")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")

	cfg, err := Default().FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/data/hetionet-nodes.tsv", cfg.NodesPath)
	assert.Equal(t, EngineMemory, cfg.Engine)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.GraphEnabled())
}

func TestConfig_FromEnvMalformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"HETIO_TOP_N", "abc"},
		{"HETIO_DUCKDB_THREADS", "not-a-number"},
		{"HETIO_DUCKDB_MEMORY_GB", "4GB"},
		{"HETIO_QUERY_TIMEOUT", "soon"},
		{"NEO4J_BATCH_SIZE", "1e3"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Default().FromEnv()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Field)
			assert.Contains(t, cfgErr.Error(), tt.value)
		})
	}
}

func TestLoad_MalformedEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HETIO_TOP_N", "abc")

	_, err := Load("")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "HETIO_TOP_N", cfgErr.Field)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hetio.yaml")
	yamlDoc := `
nodes_path: /srv/nodes.tsv
edges_path: /srv/edges.tsv
engine: memory
top_n: 3
query_timeout: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Chdir(dir)
	t.Setenv("HETIO_TOP_N", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/nodes.tsv", cfg.NodesPath)
	assert.Equal(t, EngineMemory, cfg.Engine)
	assert.Equal(t, 2*time.Minute, cfg.QueryTimeout)
	assert.Equal(t, 7, cfg.TopN, "environment overrides the file")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HETIO_EDGES_PATH=from-dotenv.tsv\n"), 0o644))
	t.Chdir(dir)
	// Register for cleanup; godotenv sets the variable directly.
	t.Setenv("HETIO_EDGES_PATH", "")
	os.Unsetenv("HETIO_EDGES_PATH")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.tsv", cfg.EdgesPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_DefersValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HETIO_ENGINE", "sqlite")
	t.Setenv("HETIO_TOP_N", "0")

	cfg, err := Load("")
	require.NoError(t, err, "lower layers may be overridden before validation")
	assert.Equal(t, "sqlite", cfg.Engine)

	var cfgErr *ConfigError
	require.ErrorAs(t, cfg.Validate(), &cfgErr)
	assert.Equal(t, "Engine", cfgErr.Field)

	cfg = cfg.WithEngine(EngineDuckDB)
	cfg.TopN = 3
	require.NoError(t, cfg.Validate())
}
