package graph

import (
	"context"
	"fmt"

	"hetiostats/internal/database/relational"
)

var _ relational.QueryEngine = (*CypherEngine)(nil)

// CypherRunner executes read queries. Neo4jClient satisfies it.
type CypherRunner interface {
	ExecuteCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// CypherEngine answers the questions over a graph written by IngestGraph.
type CypherEngine struct {
	runner CypherRunner
}

func NewCypherEngine(runner CypherRunner) *CypherEngine {
	return &CypherEngine{runner: runner}
}

const (
	drugGeneCountsQuery = `
		MATCH (c:Entity {kind: $compound})-[r:REL]->(:Entity)
		WHERE r.metaedge IN $treatments
		WITH c.id AS id, c.name AS name,
			sum(CASE WHEN r.metaedge IN $genes THEN 1 ELSE 0 END) AS num_genes,
			sum(CASE WHEN r.metaedge IN $diseases THEN 1 ELSE 0 END) AS num_diseases
		RETURN id, name, num_genes, num_diseases
		ORDER BY num_genes DESC, id ASC, name ASC
	`

	distributionQuery = `
		MATCH (c:Entity {kind: $compound})-[r:REL]->(t:Entity)
		WHERE r.metaedge IN $treatments
		WITH t.id AS target, count(DISTINCT c.id) AS num_drugs
		WITH num_drugs, count(target) AS num_diseases
		RETURN num_drugs, num_diseases
		ORDER BY num_diseases DESC, num_drugs ASC
	`

	targetsQuery = `
		MATCH (c:Entity {kind: $compound})-[r:REL]->(t:Entity)
		WHERE r.metaedge IN $treatments
		WITH t, count(DISTINCT c.id) AS num_drugs
		WHERE num_drugs = $num_drugs
		RETURN t.id AS target_id,
			CASE WHEN t.kind = $disease THEN coalesce(t.name, '') ELSE '' END AS target_name,
			num_drugs
		ORDER BY target_id ASC
	`

	statsQuery = `
		CALL { MATCH (n:Entity) WHERE n.kind IS NOT NULL RETURN count(n) AS nodes }
		CALL { MATCH (:Entity)-[r:REL]->(:Entity) RETURN count(r) AS edges }
		CALL { MATCH (n:Entity {kind: $compound}) RETURN count(n) AS compounds }
		CALL { MATCH (n:Entity {kind: $disease}) RETURN count(n) AS diseases }
		CALL {
			MATCH (:Entity)-[r:REL]->(:Entity)
			WHERE r.metaedge IN $treatments
			RETURN count(r) AS qualifying
		}
		RETURN nodes, edges, compounds, diseases, qualifying
	`
)

func baseParams() map[string]any {
	return map[string]any{
		"compound":   relational.KindCompound,
		"disease":    relational.KindDisease,
		"treatments": relational.TreatmentMetaedges,
		"genes":      relational.GeneMetaedges,
		"diseases":   relational.DiseaseMetaedges,
	}
}

// withLimit appends a LIMIT clause when limit > 0.
func withLimit(query string, params map[string]any, limit int) string {
	if limit <= 0 {
		return query
	}
	params["limit"] = limit
	return query + " LIMIT $limit"
}

func (e *CypherEngine) DrugGeneCounts(ctx context.Context, limit int) ([]relational.DrugGeneCount, error) {
	params := baseParams()
	rows, err := e.runner.ExecuteCypher(ctx, withLimit(drugGeneCountsQuery, params, limit), params)
	if err != nil {
		return nil, fmt.Errorf("query drug gene counts failed: %w", err)
	}

	out := make([]relational.DrugGeneCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, relational.DrugGeneCount{
			ID:          asString(r["id"]),
			Name:        asString(r["name"]),
			NumGenes:    asInt64(r["num_genes"]),
			NumDiseases: asInt64(r["num_diseases"]),
		})
	}
	return out, nil
}

func (e *CypherEngine) DiseaseDrugDistribution(ctx context.Context, limit int) ([]relational.DrugCountBucket, error) {
	params := baseParams()
	rows, err := e.runner.ExecuteCypher(ctx, withLimit(distributionQuery, params, limit), params)
	if err != nil {
		return nil, fmt.Errorf("query disease distribution failed: %w", err)
	}

	out := make([]relational.DrugCountBucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, relational.DrugCountBucket{
			NumDrugs:    asInt64(r["num_drugs"]),
			NumDiseases: asInt64(r["num_diseases"]),
		})
	}
	return out, nil
}

func (e *CypherEngine) TopGeneDrugs(ctx context.Context, n int) ([]relational.DrugGeneName, error) {
	top, err := e.DrugGeneCounts(ctx, n)
	if err != nil {
		return nil, err
	}
	return relational.ProjectGeneNames(top), nil
}

func (e *CypherEngine) TargetsWithDrugCount(ctx context.Context, numDrugs int64) ([]relational.TargetDrugCount, error) {
	params := baseParams()
	params["num_drugs"] = numDrugs
	rows, err := e.runner.ExecuteCypher(ctx, targetsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("query targets failed: %w", err)
	}

	out := make([]relational.TargetDrugCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, relational.TargetDrugCount{
			TargetID:   asString(r["target_id"]),
			TargetName: asString(r["target_name"]),
			NumDrugs:   asInt64(r["num_drugs"]),
		})
	}
	return out, nil
}

func (e *CypherEngine) Stats(ctx context.Context) (relational.GraphStats, error) {
	rows, err := e.runner.ExecuteCypher(ctx, statsQuery, baseParams())
	if err != nil {
		return relational.GraphStats{}, fmt.Errorf("query stats failed: %w", err)
	}
	if len(rows) != 1 {
		return relational.GraphStats{}, fmt.Errorf("query stats: expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	return relational.GraphStats{
		Nodes:           asInt64(r["nodes"]),
		Edges:           asInt64(r["edges"]),
		Compounds:       asInt64(r["compounds"]),
		Diseases:        asInt64(r["diseases"]),
		QualifyingEdges: asInt64(r["qualifying"]),
	}, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
