// Package relational loads the node and edge tables into DuckDB and answers
// the drug statistics questions with SQL.
package relational

import (
	"context"
)

// =============================================================================
// CORE INTERFACES
// =============================================================================

// QueryEngine answers the fixed questions over a loaded graph.
// A limit <= 0 means no limit.
type QueryEngine interface {
	// DrugGeneCounts returns Q1 rows ordered by num_genes desc, id asc.
	DrugGeneCounts(ctx context.Context, limit int) ([]DrugGeneCount, error)
	// DiseaseDrugDistribution returns Q2 rows ordered by num_diseases desc, num_drugs asc.
	DiseaseDrugDistribution(ctx context.Context, limit int) ([]DrugCountBucket, error)
	// TopGeneDrugs returns the (name, num_genes) projection of the first n Q1 rows.
	TopGeneDrugs(ctx context.Context, n int) ([]DrugGeneName, error)
	// TargetsWithDrugCount lists the targets treated by exactly numDrugs compounds.
	TargetsWithDrugCount(ctx context.Context, numDrugs int64) ([]TargetDrugCount, error)
	// Stats summarises the loaded tables.
	Stats(ctx context.Context) (GraphStats, error)
}

// GraphSource exposes the loaded tables as Go values.
type GraphSource interface {
	Nodes(ctx context.Context) ([]Node, error)
	Edges(ctx context.Context) ([]Edge, error)
}
