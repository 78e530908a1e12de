package views

import (
	"fmt"
	"strings"

	"hetiostats/internal/output"
	"hetiostats/ui/tui/state"
	"hetiostats/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// maxDrillRows caps how many targets the drill-down panel lists.
const maxDrillRows = 15

type DistributionView struct{}

func (v DistributionView) Render(s state.AppState, props ViewProps) string {
	title := "Distribution"
	if t := s.View.TableByID(output.TableQ2); t != nil {
		title = t.Title
	}
	header := MenuHeaderStyle.Width(props.Width).Render(title)

	if status := RenderStatus(s.Err, s.Loading, props.SpinnerView); status != "" {
		return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.NewStyle().Padding(1, 2).Render(status))
	}

	table := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Highlight).
		Padding(0, 1).
		Margin(1, 1).
		Render(props.TableView)

	content := lipgloss.JoinHorizontal(lipgloss.Top, table, props.ChartView)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		content,
		renderDrill(s),
		styles.HintStyle.Render("[↑/↓] Move • [Enter] List targets • Press 'b' to go back"),
	)
}

func renderDrill(s state.AppState) string {
	if s.DrillErr != nil {
		return lipgloss.NewStyle().PaddingLeft(2).Render(
			styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", s.DrillErr)))
	}
	if s.DrillNumDrugs == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Targets treated by exactly %d drugs (%d)\n", s.DrillNumDrugs, len(s.DrillTargets))
	for i, t := range s.DrillTargets {
		if i == maxDrillRows {
			fmt.Fprintf(&b, "... %d more", len(s.DrillTargets)-maxDrillRows)
			break
		}
		fmt.Fprintf(&b, "%-22s %s\n", t.TargetID, t.TargetName)
	}
	return styles.CardStyle.Render(strings.TrimRight(b.String(), "\n"))
}
