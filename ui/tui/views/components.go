package views

import (
	"fmt"

	"hetiostats/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// RenderCard draws a titled card of label/value lines.
func RenderCard(title string, labels []string, values []string) string {
	content := ""
	for i, label := range labels {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		content += fmt.Sprintf("%-16s : %s\n", label, styles.ValueStyle.Render(value))
	}
	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(title),
			content,
		),
	)
}

// RenderStatus shows the loading spinner or the last error, if any.
func RenderStatus(err error, loading bool, spinnerView string) string {
	switch {
	case err != nil:
		return styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", err))
	case loading:
		return spinnerView + " Running queries..."
	default:
		return ""
	}
}
