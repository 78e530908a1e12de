package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hetiostats/internal/config"
	"hetiostats/internal/database"
	"hetiostats/internal/database/relational"
	"hetiostats/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGraphClient records ingest calls.
type MockGraphClient struct {
	resets  int
	closed  int
	nodes   []relational.Node
	edges   []relational.Edge
	ingestE error
}

func (m *MockGraphClient) Close(ctx context.Context) error { m.closed++; return nil }
func (m *MockGraphClient) Reset(ctx context.Context) error { m.resets++; return nil }
func (m *MockGraphClient) IngestGraph(ctx context.Context, nodes []relational.Node, edges []relational.Edge) error {
	m.nodes, m.edges = nodes, edges
	return m.ingestE
}

func (m *MockGraphClient) ExecuteCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func sampleConfig(t *testing.T, engine string) config.Config {
	t.Helper()
	nodesPath, edgesPath := testutil.WriteSample(t, t.TempDir())
	return config.Default().
		WithInputs(nodesPath, edgesPath).
		WithEngine(engine)
}

// TestOpenSession_EndToEnd loads the sample tables and answers through the
// configured engine.
func TestOpenSession_EndToEnd(t *testing.T) {
	for _, name := range []string{config.EngineDuckDB, config.EngineMemory} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, err := database.OpenSession(ctx, sampleConfig(t, name))
			require.NoError(t, err)
			defer s.Close()

			assert.EqualValues(t, 11, s.Stats().Nodes)
			assert.EqualValues(t, 15, s.Stats().Edges)
			assert.Nil(t, s.Graph())

			e, err := s.Engine()
			require.NoError(t, err)
			q1, err := e.DrugGeneCounts(ctx, relational.DefaultTopN)
			require.NoError(t, err)
			assert.Equal(t, testutil.SampleDrugGeneCounts, q1)

			q2, err := e.DiseaseDrugDistribution(ctx, relational.DefaultTopN)
			require.NoError(t, err)
			assert.Equal(t, testutil.SampleDistribution, q2)
		})
	}
}

func TestOpenSession_FileDatabase(t *testing.T) {
	cfg := sampleConfig(t, config.EngineDuckDB)
	cfg.DuckDBPath = filepath.Join(t.TempDir(), "hetio.duckdb")

	s, err := database.OpenSession(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()), "a closed session no longer answers")
}

func TestOpenSession_GraphIngest(t *testing.T) {
	mock := &MockGraphClient{}
	s, err := database.OpenSession(context.Background(), sampleConfig(t, config.EngineDuckDB),
		database.WithGraphClient(mock),
		database.WithGraphIngest(true))
	require.NoError(t, err)

	assert.Equal(t, 1, mock.resets)
	assert.Equal(t, testutil.SampleNodes, mock.nodes)
	assert.Equal(t, testutil.SampleEdges, mock.edges)

	cypher, err := s.EngineFor(config.EngineCypher)
	require.NoError(t, err)
	assert.NotNil(t, cypher)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, mock.closed)
}

func TestOpenSession_UnavailableEngines(t *testing.T) {
	s, err := database.OpenSession(context.Background(), sampleConfig(t, config.EngineDuckDB))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.EngineFor(config.EngineMemory)
	assert.ErrorIs(t, err, database.ErrEngineUnavailable)
	_, err = s.EngineFor(config.EngineCypher)
	assert.ErrorIs(t, err, database.ErrEngineUnavailable)
	assert.ErrorIs(t, s.IngestGraph(context.Background()), database.ErrEngineUnavailable)
}

func TestOpenSession_IngestWithoutGraph(t *testing.T) {
	_, err := database.OpenSession(context.Background(), sampleConfig(t, config.EngineDuckDB),
		database.WithGraphIngest(true))
	assert.ErrorIs(t, err, database.ErrEngineUnavailable)
}

func TestOpenSession_ReleasesOnFailure(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		mock := &MockGraphClient{}
		cfg := config.Default().WithInputs(filepath.Join(t.TempDir(), "nope.tsv"), "edges.tsv")

		_, err := database.OpenSession(context.Background(), cfg, database.WithGraphClient(mock))
		var loadErr *relational.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, 1, mock.closed)
	})

	t.Run("ingest failure", func(t *testing.T) {
		boom := errors.New("neo4j down")
		mock := &MockGraphClient{ingestE: boom}

		_, err := database.OpenSession(context.Background(), sampleConfig(t, config.EngineDuckDB),
			database.WithGraphClient(mock),
			database.WithGraphIngest(true))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, mock.closed)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default().WithEngine("sqlite")
		_, err := database.OpenSession(context.Background(), cfg)
		var cfgErr *config.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}
