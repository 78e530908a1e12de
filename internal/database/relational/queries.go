package relational

import (
	"context"
	"fmt"
	"strings"
)

// createViews defines the filter and join stages over the loaded tables.
// Views keep every query reading the same base relation.
func (r *Repo) createViews(ctx context.Context) error {
	views := []string{
		fmt.Sprintf(`CREATE OR REPLACE VIEW compounds AS
			SELECT id, kind, name FROM nodes WHERE kind = %s`, quoteLiteral(KindCompound)),
		fmt.Sprintf(`CREATE OR REPLACE VIEW diseases AS
			SELECT id, kind, name FROM nodes WHERE kind = %s`, quoteLiteral(KindDisease)),
		fmt.Sprintf(`CREATE OR REPLACE VIEW treatments AS
			SELECT source, target, metaedge FROM edges WHERE metaedge IN (%s)`, inList(TreatmentMetaedges)),
		`CREATE OR REPLACE VIEW joined_treatments AS
			SELECT c.id, c.name, t.metaedge, t.target
			FROM compounds c
			JOIN treatments t ON c.id = t.source`,
		`CREATE OR REPLACE VIEW target_drug_counts AS
			SELECT target, count(DISTINCT id) AS num_drugs
			FROM joined_treatments
			GROUP BY target`,
	}
	for _, v := range views {
		if _, err := r.db.ExecContext(ctx, v); err != nil {
			return fmt.Errorf("create view failed: %w", err)
		}
	}
	return nil
}

// DrugGeneCounts answers Q1: per compound, the number of gene and disease
// relationships, ordered by num_genes descending then id ascending.
func (r *Repo) DrugGeneCounts(ctx context.Context, limit int) ([]DrugGeneCount, error) {
	if err := r.requireLoaded(); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT
			id,
			name,
			count(*) FILTER (WHERE metaedge IN (%s)) AS num_genes,
			count(*) FILTER (WHERE metaedge IN (%s)) AS num_diseases
		FROM joined_treatments
		GROUP BY id, name
		ORDER BY num_genes DESC, id ASC, name ASC
	`, inList(GeneMetaedges), inList(DiseaseMetaedges))

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query drug gene counts failed: %w", err)
	}
	defer rows.Close()

	result := []DrugGeneCount{}
	for rows.Next() {
		var d DrugGeneCount
		if err := rows.Scan(&d.ID, &d.Name, &d.NumGenes, &d.NumDiseases); err != nil {
			return nil, fmt.Errorf("scan drug gene count failed: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// DiseaseDrugDistribution answers Q2: how many targets are reached by
// exactly num_drugs distinct compounds, ordered by num_diseases descending
// then num_drugs ascending.
func (r *Repo) DiseaseDrugDistribution(ctx context.Context, limit int) ([]DrugCountBucket, error) {
	if err := r.requireLoaded(); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT num_drugs, count(target) AS num_diseases
		FROM target_drug_counts
		GROUP BY num_drugs
		ORDER BY num_diseases DESC, num_drugs ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query disease distribution failed: %w", err)
	}
	defer rows.Close()

	result := []DrugCountBucket{}
	for rows.Next() {
		var b DrugCountBucket
		if err := rows.Scan(&b.NumDrugs, &b.NumDiseases); err != nil {
			return nil, fmt.Errorf("scan bucket failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// TopGeneDrugs answers Q3 by projecting the first n Q1 rows.
func (r *Repo) TopGeneDrugs(ctx context.Context, n int) ([]DrugGeneName, error) {
	top, err := r.DrugGeneCounts(ctx, n)
	if err != nil {
		return nil, err
	}
	return ProjectGeneNames(top), nil
}

// TargetsWithDrugCount lists the targets with exactly numDrugs distinct
// compounds, named from the Disease nodes where one matches.
func (r *Repo) TargetsWithDrugCount(ctx context.Context, numDrugs int64) ([]TargetDrugCount, error) {
	if err := r.requireLoaded(); err != nil {
		return nil, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.target, coalesce(d.name, '') AS target_name, p.num_drugs
		FROM target_drug_counts p
		LEFT JOIN (SELECT id, min(name) AS name FROM diseases GROUP BY id) d
			ON d.id = p.target
		WHERE p.num_drugs = ?
		ORDER BY p.target ASC
	`, numDrugs)
	if err != nil {
		return nil, fmt.Errorf("query targets failed: %w", err)
	}
	defer rows.Close()

	result := []TargetDrugCount{}
	for rows.Next() {
		var t TargetDrugCount
		if err := rows.Scan(&t.TargetID, &t.TargetName, &t.NumDrugs); err != nil {
			return nil, fmt.Errorf("scan target failed: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// Stats summarises the loaded tables.
func (r *Repo) Stats(ctx context.Context) (GraphStats, error) {
	if err := r.requireLoaded(); err != nil {
		return GraphStats{}, err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var s GraphStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM nodes),
			(SELECT count(*) FROM edges),
			(SELECT count(*) FROM compounds),
			(SELECT count(*) FROM diseases),
			(SELECT count(*) FROM treatments)
	`).Scan(&s.Nodes, &s.Edges, &s.Compounds, &s.Diseases, &s.QualifyingEdges)
	if err != nil {
		return GraphStats{}, fmt.Errorf("query stats failed: %w", err)
	}
	return s, nil
}

func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteLiteral(v)
	}
	return strings.Join(quoted, ", ")
}
