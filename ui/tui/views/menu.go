package views

import (
	"fmt"
	"math"

	"hetiostats/ui/tui/state"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MenuOptions are the selectable entries, in page order.
var MenuOptions = []string{
	"Drugs by Associated Genes (Q1)",
	"Diseases by Drug Count (Q2)",
	"Drug Names by Associated Genes (Q3)",
	"Console Report View",
	"Dataset Summary",
}

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	// 1. Header
	header := MenuHeaderStyle.Width(props.Width).Render("HETIOSTATS // DRUG STATISTICS")

	// 2. Menu Items
	var menuItems []string
	listStartY := 6

	for i, option := range MenuOptions {
		// Animation Logic
		dist := math.Abs(float64(i) - props.AnimCursor)
		selectionStrength := 0.0
		if dist < 1.0 {
			selectionStrength = 1.0 - dist
		}

		// Mouse Gradient Logic
		itemCenterY := listStartY + (i * 3) + 1
		mouseDistY := math.Abs(float64(props.MouseY - itemCenterY))

		borderColor := BaseColor
		if mouseDistY < 10 {
			ratio := 1.0 - (mouseDistY / 10.0)
			if ratio > 0.5 {
				borderColor = lipgloss.Color("#aaa")
			}
		}

		if selectionStrength > 0.1 || i == props.MenuCursor {
			borderColor = BrandColor
		}

		popOut := int(selectionStrength * 2)

		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + popOut).
			Width(44)

		if i == props.MenuCursor {
			boxStyle = boxStyle.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			boxStyle = boxStyle.Foreground(lipgloss.Color("#AAA"))
		}

		text := fmt.Sprintf("%02d. %s", i+1, option)
		menuItems = append(menuItems, zone.Mark(MenuZoneID(i), boxStyle.Render(text)))
	}

	// 3. Construct Menu Box
	menuList := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	menuContent := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(BrandColor).Render("QUESTIONS"),
		CopyStyle.Render("Select a question to inspect its answer."),
		menuList,
	)

	menuBox := MenuBoxStyle.Render(menuContent)

	// 4. Footer
	status := RenderStatus(s.Err, s.Loading, props.SpinnerView)
	if status == "" && !s.LastUpdate.IsZero() {
		status = lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).
			Render(fmt.Sprintf("Report %s • %s", s.View.RunID, s.LastUpdate.Format("15:04:05")))
	}
	controlsText := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).
		Render("\n[↑/↓] Navigate • [Enter] Select • [R] Rerun • [Q] Quit")

	footer := lipgloss.NewStyle().PaddingLeft(2).Render(
		lipgloss.JoinVertical(lipgloss.Left, status, controlsText),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		menuBox,
		footer,
	)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// MenuZoneID is the bubblezone id of the i-th menu entry.
func MenuZoneID(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

var (
	BrandColor = lipgloss.Color("#f27b24")
	BaseColor  = lipgloss.Color("#444")

	MenuHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(BrandColor).
			Align(lipgloss.Left).
			Padding(1, 2)

	MenuBoxStyle = lipgloss.NewStyle().
			Padding(1, 0).
			MarginTop(1)

	CopyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true).
			MarginBottom(1).
			PaddingLeft(2)
)
