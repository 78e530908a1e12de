package output

import (
	"context"
	"errors"
	"testing"

	"hetiostats/internal/database/relational"
	"hetiostats/internal/engine"
	"hetiostats/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingEngine fails Q2 and blocks the other queries until canceled.
type failingEngine struct {
	relational.QueryEngine
	err error
}

func (f failingEngine) DrugGeneCounts(ctx context.Context, _ int) ([]relational.DrugGeneCount, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f failingEngine) DiseaseDrugDistribution(context.Context, int) ([]relational.DrugCountBucket, error) {
	return nil, f.err
}

func (f failingEngine) TopGeneDrugs(ctx context.Context, _ int) ([]relational.DrugGeneName, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunReport(t *testing.T) {
	e := engine.NewMemoryEngine(testutil.SampleNodes, testutil.SampleEdges)

	r, err := RunReport(context.Background(), e, 0)
	require.NoError(t, err)

	_, err = uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, relational.DefaultTopN, r.Limit)
	assert.Equal(t, testutil.SampleDrugGeneCounts, r.Q1)
	assert.Equal(t, testutil.SampleDistribution, r.Q2)
	assert.Equal(t, relational.ProjectGeneNames(r.Q1), r.Q3)
	assert.False(t, r.GeneratedAt.IsZero())

	r2, err := RunReport(context.Background(), e, 2)
	require.NoError(t, err)
	assert.NotEqual(t, r.RunID, r2.RunID)
	assert.Len(t, r2.Q1, 2)
	assert.Len(t, r2.Q2, 2)
	assert.Len(t, r2.Q3, 2)
}

func TestRunReport_FailureCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	_, err := RunReport(context.Background(), failingEngine{err: boom}, 5)
	assert.ErrorIs(t, err, boom)
}

func TestBuildReportView(t *testing.T) {
	r := &Report{
		RunID: "run-1",
		Limit: 5,
		Q1:    []relational.DrugGeneCount{{ID: "C1", Name: "one", NumGenes: 2, NumDiseases: 1}},
		Q2:    []relational.DrugCountBucket{{NumDrugs: 1, NumDiseases: 4}},
		Q3:    []relational.DrugGeneName{{Name: "one", NumGenes: 2}},
	}

	v := BuildReportView(r)
	assert.Equal(t, "run-1", v.RunID)
	require.Len(t, v.Tables, 3)

	assert.Equal(t, "Q1: Top 5 drugs by number of genes associated", v.Tables[0].Title)
	assert.Equal(t, "Q2: Top 5 groups by number of diseases associated with x drugs", v.Tables[1].Title)
	assert.Equal(t, "Q3: Top 5 drug names by number of genes associated", v.Tables[2].Title)

	q1 := v.TableByID(TableQ1)
	require.NotNil(t, q1)
	assert.Equal(t, []string{"id", "name", "num_genes", "num_diseases"}, q1.Columns)
	assert.Equal(t, [][]string{{"C1", "one", "2", "1"}}, q1.Rows)

	assert.Equal(t, [][]string{{"1", "4"}}, v.TableByID(TableQ2).Rows)
	assert.Equal(t, [][]string{{"one", "2"}}, v.TableByID(TableQ3).Rows)
	assert.Nil(t, v.TableByID("q4"))
}

func TestBuildReportView_EmptyResults(t *testing.T) {
	v := BuildReportView(&Report{Limit: 5})
	for _, tbl := range v.Tables {
		assert.Empty(t, tbl.Rows)
		assert.NotEmpty(t, tbl.Title)
	}
}
