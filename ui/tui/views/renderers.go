package views

import (
	"hetiostats/ui/tui/state"
)

func RenderMenu(s state.AppState, width, height, cursor int, animCursor float64, mouseX, mouseY int, spinnerView string) string {
	v := MenuView{}
	return v.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		MenuCursor:  cursor,
		AnimCursor:  animCursor,
		MouseX:      mouseX,
		MouseY:      mouseY,
		SpinnerView: spinnerView,
	})
}

func RenderQuestion(s state.AppState, title, tableView, spinnerView string, width int) string {
	v := QuestionView{Title: title}
	return v.Render(s, ViewProps{
		Width:       width,
		TableView:   tableView,
		SpinnerView: spinnerView,
	})
}

func RenderDistribution(s state.AppState, tableView, chartView, spinnerView string, width int) string {
	v := DistributionView{}
	return v.Render(s, ViewProps{
		Width:       width,
		TableView:   tableView,
		ChartView:   chartView,
		SpinnerView: spinnerView,
	})
}

func RenderConsole(s state.AppState, content string, width, height, scrollY int) string {
	v := ConsoleView{}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
		Content: content,
	})
}

func RenderSummary(s state.AppState, spinnerView string) string {
	v := SummaryView{}
	return v.Render(s, ViewProps{
		SpinnerView: spinnerView,
	})
}
