package console

import (
	"fmt"
	"io"

	"hetiostats/internal/output"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	emptyStyle  = lipgloss.NewStyle().Faint(true)
)

// Print renders every table of the view, each preceded by its header line.
func Print(w io.Writer, view output.ReportView) {
	for _, t := range view.Tables {
		fmt.Fprintln(w, titleStyle.Render(t.Title))
		fmt.Fprintln(w, Render(t))
		fmt.Fprintln(w)
	}
}

// Render draws a single table. Tables without rows render a placeholder.
func Render(t output.Table) string {
	if len(t.Rows) == 0 {
		return emptyStyle.Render("(no rows)")
	}

	numeric := numericColumns(t)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col < len(numeric) && numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
	return tbl.String()
}

// numericColumns marks the columns whose cells are all integers.
func numericColumns(t output.Table) []bool {
	numeric := make([]bool, len(t.Columns))
	for c := range numeric {
		numeric[c] = true
		for _, row := range t.Rows {
			if c >= len(row) || !isInteger(row[c]) {
				numeric[c] = false
				break
			}
		}
	}
	return numeric
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
