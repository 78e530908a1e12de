package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"hetiostats/internal/database/relational"
)

var _ relational.QueryEngine = (*MemoryEngine)(nil)

// MemoryEngine answers the questions over slices held in memory. The filter
// and join stages run once at construction; queries only read their output,
// so a MemoryEngine is safe for concurrent use.
type MemoryEngine struct {
	stats     relational.GraphStats
	drugs     []relational.DrugGeneCount
	perTarget map[string]int64
	diseases  map[string]string
}

// NewMemoryEngine builds an engine from loaded nodes and edges. The inputs
// are not retained or modified.
func NewMemoryEngine(nodes []relational.Node, edges []relational.Edge) *MemoryEngine {
	compounds := FilterNodesByKind(nodes, relational.KindCompound)
	diseases := FilterNodesByKind(nodes, relational.KindDisease)
	treatments := FilterEdgesByMetaedge(edges, relational.TreatmentMetaedges)
	joined := JoinTreatments(compounds, treatments)

	names := make(map[string]string, len(diseases))
	for _, d := range diseases {
		if cur, ok := names[d.ID]; !ok || d.Name < cur {
			names[d.ID] = d.Name
		}
	}

	return &MemoryEngine{
		stats: relational.GraphStats{
			Nodes:           int64(len(nodes)),
			Edges:           int64(len(edges)),
			Compounds:       int64(len(compounds)),
			Diseases:        int64(len(diseases)),
			QualifyingEdges: int64(len(treatments)),
		},
		drugs:     CountDrugGenes(joined),
		perTarget: DrugsPerTarget(joined),
		diseases:  names,
	}
}

// NewMemoryEngineFromSource reads the full tables from src and builds an
// engine over them.
func NewMemoryEngineFromSource(ctx context.Context, src relational.GraphSource) (*MemoryEngine, error) {
	nodes, err := src.Nodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	edges, err := src.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return NewMemoryEngine(nodes, edges), nil
}

func (m *MemoryEngine) DrugGeneCounts(ctx context.Context, limit int) ([]relational.DrugGeneCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return TopN(m.drugs, limit), nil
}

func (m *MemoryEngine) DiseaseDrugDistribution(ctx context.Context, limit int) ([]relational.DrugCountBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return TopN(DistributeByDrugCount(m.perTarget), limit), nil
}

func (m *MemoryEngine) TopGeneDrugs(ctx context.Context, n int) ([]relational.DrugGeneName, error) {
	top, err := m.DrugGeneCounts(ctx, n)
	if err != nil {
		return nil, err
	}
	return relational.ProjectGeneNames(top), nil
}

func (m *MemoryEngine) TargetsWithDrugCount(ctx context.Context, numDrugs int64) ([]relational.TargetDrugCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]relational.TargetDrugCount, 0)
	for target, n := range m.perTarget {
		if n != numDrugs {
			continue
		}
		out = append(out, relational.TargetDrugCount{
			TargetID:   target,
			TargetName: m.diseases[target],
			NumDrugs:   n,
		})
	}
	slices.SortFunc(out, func(a, b relational.TargetDrugCount) int {
		return cmp.Compare(a.TargetID, b.TargetID)
	})
	return out, nil
}

func (m *MemoryEngine) Stats(ctx context.Context) (relational.GraphStats, error) {
	if err := ctx.Err(); err != nil {
		return relational.GraphStats{}, err
	}
	return m.stats, nil
}
