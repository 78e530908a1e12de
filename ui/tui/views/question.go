package views

import (
	"hetiostats/ui/tui/state"
	"hetiostats/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// QuestionView shows one answer table. Title is the table's header line.
type QuestionView struct {
	Title string
}

func (v QuestionView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render(v.Title)

	body := props.TableView
	if status := RenderStatus(s.Err, s.Loading, props.SpinnerView); status != "" {
		body = status
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Highlight).
		Padding(0, 1).
		Margin(1, 2).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		box,
		styles.HintStyle.Render("[↑/↓] Move • Press 'b' to go back"),
	)
}
