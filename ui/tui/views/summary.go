package views

import (
	"strconv"

	"hetiostats/ui/tui/state"
	"hetiostats/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// SummaryView shows the size of the loaded dataset next to the run metadata.
type SummaryView struct{}

func (v SummaryView) Render(s state.AppState, props ViewProps) string {
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("Dataset Summary"),
	)

	st := s.Stats
	dataset := RenderCard("Hetionet",
		[]string{"Nodes", "Edges", "Compounds", "Diseases", "Qualifying edges"},
		[]string{fmtInt(st.Nodes), fmtInt(st.Edges), fmtInt(st.Compounds), fmtInt(st.Diseases), fmtInt(st.QualifyingEdges)},
	)

	runID, updated, limit := "-", "-", "-"
	if s.Report != nil {
		runID = s.Report.RunID
		limit = strconv.Itoa(s.Report.Limit)
	}
	if !s.LastUpdate.IsZero() {
		updated = s.LastUpdate.Format("15:04:05")
	}
	run := RenderCard("Last run",
		[]string{"Run ID", "Updated", "Rows shown"},
		[]string{runID, updated, limit},
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, dataset, run)
	if status := RenderStatus(s.Err, false, ""); status != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, lipgloss.NewStyle().PaddingLeft(2).Render(status))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		lipgloss.NewStyle().Foreground(styles.Subtle).Render("\nPress 'b' to go back"),
	)
}

func fmtInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
