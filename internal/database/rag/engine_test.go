package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hetiostats/internal/engine"
	"hetiostats/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	replies []string
	errs    []error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	var reply string
	var err error
	if i < len(g.replies) {
		reply = g.replies[i]
	}
	if i < len(g.errs) {
		err = g.errs[i]
	}
	return reply, err
}

type fakeRunner struct {
	query string
	rows  []map[string]any
	err   error
}

func (f *fakeRunner) ExecuteCypher(_ context.Context, query string, _ map[string]any) ([]map[string]any, error) {
	f.query = query
	return f.rows, f.err
}

func sampleEngine() *engine.MemoryEngine {
	return engine.NewMemoryEngine(testutil.SampleNodes, testutil.SampleEdges)
}

func TestCleanCypherQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MATCH (n) RETURN n", "MATCH (n) RETURN n"},
		{"```cypher\nMATCH (n) RETURN n\n```", "MATCH (n) RETURN n"},
		{"```\nMATCH (n) RETURN n```", "MATCH (n) RETURN n"},
		{"  \n MATCH (n) RETURN n \n", "MATCH (n) RETURN n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanCypherQuery(tt.in))
	}
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-pro-latest", ResolveModel("pro").Name)
	assert.Equal(t, AvailableModels["flash"], ResolveModel("unknown"))
}

func TestAsk_StatisticsOnly(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"  Aspirin has the most genes. "}}
	e := NewEngine(gen, sampleEngine(), nil, nil)

	answer, err := e.Ask(context.Background(), "Which drug binds the most genes?")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin has the most genes.", answer)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Which drug binds the most genes?")
	assert.Contains(t, prompt, `"name": "Aspirin"`)
	assert.Contains(t, prompt, `"qualifying_edges": 12`)
	assert.NotContains(t, prompt, "graph_rows")
}

func TestAsk_WithGraphRows(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"```cypher\nMATCH (c:Entity {kind: 'Compound'}) RETURN c.name LIMIT 25\n```",
		"Five compounds.",
	}}
	runner := &fakeRunner{rows: []map[string]any{{"c.name": "Aspirin"}}}
	e := NewEngine(gen, sampleEngine(), runner, nil)

	answer, err := e.Ask(context.Background(), "Name some compounds")
	require.NoError(t, err)
	assert.Equal(t, "Five compounds.", answer)

	assert.Equal(t, "MATCH (c:Entity {kind: 'Compound'}) RETURN c.name LIMIT 25", runner.query)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Name some compounds")
	assert.Contains(t, gen.prompts[1], `"graph_rows"`)
	assert.Contains(t, gen.prompts[1], "MATCH (c:Entity")
}

func TestAsk_GraphFailureFallsBackToStatistics(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"MATCH broken", "answer"}}
	runner := &fakeRunner{err: errors.New("syntax error")}
	e := NewEngine(gen, sampleEngine(), runner, nil)

	answer, err := e.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
	assert.False(t, strings.Contains(gen.prompts[1], `"cypher"`))
}

func TestAsk_Errors(t *testing.T) {
	t.Run("empty response", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{ErrEmptyResponse}}
		answer, err := NewEngine(gen, sampleEngine(), nil, nil).Ask(context.Background(), "q")
		require.NoError(t, err)
		assert.Contains(t, answer, "Unable to generate")
	})

	t.Run("generator failure", func(t *testing.T) {
		boom := errors.New("quota")
		gen := &scriptedGenerator{errs: []error{boom}}
		_, err := NewEngine(gen, sampleEngine(), nil, nil).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("query failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gen := &scriptedGenerator{}
		_, err := NewEngine(gen, sampleEngine(), nil, nil).Ask(ctx, "q")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, gen.prompts)
	})
}
