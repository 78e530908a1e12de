package state

import (
	"time"

	"hetiostats/internal/database/relational"
	"hetiostats/internal/output"
)

type Page int

const (
	PageMenu Page = iota
	PageQ1      // drugs by gene count
	PageQ2      // disease distribution
	PageQ3      // drug names by gene count
	PageConsole // full report as printed by the CLI
	PageSummary // dataset statistics
)

// AppState holds the latest report and what the user drilled into.
type AppState struct {
	Report      *output.Report
	View        output.ReportView
	Stats       relational.GraphStats
	Loading     bool
	LastUpdate  time.Time
	Err         error
	CurrentPage Page

	// Q2 drill-down: the targets behind the selected bucket.
	DrillNumDrugs int64
	DrillTargets  []relational.TargetDrugCount
	DrillErr      error
}
