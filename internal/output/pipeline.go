package output

import (
	"context"
	"fmt"
	"time"

	"hetiostats/internal/database/relational"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Report bundles the answers of one run.
type Report struct {
	RunID       string                       `json:"run_id"`
	Limit       int                          `json:"limit"`
	Q1          []relational.DrugGeneCount   `json:"q1"`
	Q2          []relational.DrugCountBucket `json:"q2"`
	Q3          []relational.DrugGeneName    `json:"q3"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// RunReport answers the three questions concurrently against one engine.
// The first failure cancels the other queries and fails the report.
// A limit <= 0 uses relational.DefaultTopN.
func RunReport(ctx context.Context, e relational.QueryEngine, limit int) (*Report, error) {
	if limit <= 0 {
		limit = relational.DefaultTopN
	}
	r := &Report{RunID: uuid.NewString(), Limit: limit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.DrugGeneCounts(gctx, limit)
		if err != nil {
			return fmt.Errorf("q1: %w", err)
		}
		r.Q1 = rows
		return nil
	})
	g.Go(func() error {
		rows, err := e.DiseaseDrugDistribution(gctx, limit)
		if err != nil {
			return fmt.Errorf("q2: %w", err)
		}
		r.Q2 = rows
		return nil
	})
	g.Go(func() error {
		rows, err := e.TopGeneDrugs(gctx, limit)
		if err != nil {
			return fmt.Errorf("q3: %w", err)
		}
		r.Q3 = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.GeneratedAt = time.Now().UTC()
	return r, nil
}
