package relational_test

import (
	"context"
	"testing"

	"hetiostats/internal/database/relational"
	"hetiostats/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoadedRepo creates an in-memory DuckDB with the given graph loaded.
func newLoadedRepo(t *testing.T, nodes []relational.Node, edges []relational.Edge) *relational.Repo {
	t.Helper()

	client, err := relational.NewDuckDBClient("", relational.WithThreads(2), relational.WithMemoryLimit(1))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	nodesPath, edgesPath := testutil.WriteGraph(t, t.TempDir(), nodes, edges)

	repo := relational.NewRepo(client.DB(), 0)
	_, err = repo.Load(context.Background(), nodesPath, edgesPath)
	require.NoError(t, err)
	return repo
}

func TestRepo_DrugGeneCounts(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)

	got, err := repo.DrugGeneCounts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleDrugGeneCounts, got)

	top2, err := repo.DrugGeneCounts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleDrugGeneCounts[:2], top2)
}

func TestRepo_CompoundWithoutEdgesIsAbsent(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)

	got, err := repo.DrugGeneCounts(context.Background(), 0)
	require.NoError(t, err)
	for _, row := range got {
		assert.NotEqual(t, "Compound::DB03", row.ID)
	}
}

func TestRepo_DiseaseDrugDistribution(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)

	got, err := repo.DiseaseDrugDistribution(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleDistribution, got)
}

func TestRepo_TopGeneDrugs(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)

	got, err := repo.TopGeneDrugs(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []relational.DrugGeneName{
		{Name: "Aspirin", NumGenes: 3},
		{Name: "Ibuprofen", NumGenes: 2},
		{Name: "Zileuton", NumGenes: 2},
		{Name: "Metformin", NumGenes: 0},
	}, got)
}

func TestRepo_TargetsWithDrugCount(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)
	ctx := context.Background()

	two, err := repo.TargetsWithDrugCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []relational.TargetDrugCount{
		{TargetID: "Disease::D1", TargetName: "asthma", NumDrugs: 2},
		{TargetID: "Disease::D2", TargetName: "gout", NumDrugs: 2},
	}, two)

	one, err := repo.TargetsWithDrugCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []relational.TargetDrugCount{
		{TargetID: "Gene::G3", TargetName: "", NumDrugs: 1},
	}, one)

	none, err := repo.TargetsWithDrugCount(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepo_Stats(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, relational.GraphStats{
		Nodes:           11,
		Edges:           15,
		Compounds:       5,
		Diseases:        3,
		QualifyingEdges: 12,
	}, stats)
}

func TestRepo_SpecExamples(t *testing.T) {
	nodes := []relational.Node{
		{ID: "C1", Name: "one", Kind: relational.KindCompound},
		{ID: "C2", Name: "two", Kind: relational.KindCompound},
		{ID: "D1", Name: "d-one", Kind: relational.KindDisease},
		{ID: "D2", Name: "d-two", Kind: relational.KindDisease},
		{ID: "G1", Name: "g-one", Kind: relational.KindGene},
		{ID: "G2", Name: "g-two", Kind: relational.KindGene},
	}

	t.Run("gene and disease counts", func(t *testing.T) {
		repo := newLoadedRepo(t, nodes, []relational.Edge{
			{Source: "C1", Target: "D1", Metaedge: "CtD"},
			{Source: "C1", Target: "G1", Metaedge: "CbG"},
			{Source: "C1", Target: "G2", Metaedge: "CbG"},
		})
		got, err := repo.DrugGeneCounts(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, []relational.DrugGeneCount{
			{ID: "C1", Name: "one", NumGenes: 2, NumDiseases: 1},
		}, got)
	})

	t.Run("distinct drugs per disease", func(t *testing.T) {
		repo := newLoadedRepo(t, nodes, []relational.Edge{
			{Source: "C1", Target: "D1", Metaedge: "CtD"},
			{Source: "C2", Target: "D1", Metaedge: "CtD"},
			{Source: "C1", Target: "D2", Metaedge: "CtD"},
		})
		got, err := repo.DiseaseDrugDistribution(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, []relational.DrugCountBucket{
			{NumDrugs: 1, NumDiseases: 1},
			{NumDrugs: 2, NumDiseases: 1},
		}, got)
	})
}

func TestRepo_NoCompounds(t *testing.T) {
	nodes := []relational.Node{{ID: "D1", Name: "d", Kind: relational.KindDisease}}
	edges := []relational.Edge{{Source: "X", Target: "D1", Metaedge: "CtD"}}
	repo := newLoadedRepo(t, nodes, edges)

	q1, err := repo.DrugGeneCounts(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, q1)

	q2, err := repo.DiseaseDrugDistribution(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, q2)
}

func TestRepo_Idempotent(t *testing.T) {
	repo := newLoadedRepo(t, testutil.SampleNodes, testutil.SampleEdges)
	ctx := context.Background()

	first, err := repo.DrugGeneCounts(ctx, 0)
	require.NoError(t, err)
	second, err := repo.DrugGeneCounts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRepo_NotLoaded(t *testing.T) {
	client, err := relational.NewInMemoryDB()
	require.NoError(t, err)
	defer client.Close()

	repo := relational.NewRepo(client.DB(), 0)
	_, err = repo.DrugGeneCounts(context.Background(), 5)
	assert.ErrorIs(t, err, relational.ErrNotLoaded)
	_, err = repo.Nodes(context.Background())
	assert.ErrorIs(t, err, relational.ErrNotLoaded)
}
