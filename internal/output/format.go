package output

import (
	"fmt"
	"strconv"
)

// Table IDs to avoid hardcoded strings
const (
	TableQ1 = "q1"
	TableQ2 = "q2"
	TableQ3 = "q3"
)

// Header formats, filled with the row limit.
const (
	HeaderQ1 = "Q1: Top %d drugs by number of genes associated"
	HeaderQ2 = "Q2: Top %d groups by number of diseases associated with x drugs"
	HeaderQ3 = "Q3: Top %d drug names by number of genes associated"
)

// UI/view-model types (no printing here)
type Table struct {
	ID      string
	Title   string
	Columns []string
	Rows    [][]string
}

type ReportView struct {
	RunID  string
	Tables []Table
}

// BuildReportView converts a report into labelled display tables, one per
// question, in question order.
func BuildReportView(r *Report) ReportView {
	q1 := Table{
		ID:      TableQ1,
		Title:   fmt.Sprintf(HeaderQ1, r.Limit),
		Columns: []string{"id", "name", "num_genes", "num_diseases"},
	}
	for _, row := range r.Q1 {
		q1.Rows = append(q1.Rows, []string{row.ID, row.Name, itoa(row.NumGenes), itoa(row.NumDiseases)})
	}

	q2 := Table{
		ID:      TableQ2,
		Title:   fmt.Sprintf(HeaderQ2, r.Limit),
		Columns: []string{"num_drugs", "num_diseases"},
	}
	for _, row := range r.Q2 {
		q2.Rows = append(q2.Rows, []string{itoa(row.NumDrugs), itoa(row.NumDiseases)})
	}

	q3 := Table{
		ID:      TableQ3,
		Title:   fmt.Sprintf(HeaderQ3, r.Limit),
		Columns: []string{"name", "num_genes"},
	}
	for _, row := range r.Q3 {
		q3.Rows = append(q3.Rows, []string{row.Name, itoa(row.NumGenes)})
	}

	return ReportView{
		RunID:  r.RunID,
		Tables: []Table{q1, q2, q3},
	}
}

func (v ReportView) TableByID(id string) *Table {
	for i := range v.Tables {
		if v.Tables[i].ID == id {
			return &v.Tables[i]
		}
	}
	return nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
