package tui

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"hetiostats/internal/database/relational"
	"hetiostats/internal/output"
	"hetiostats/ui/console"
	"hetiostats/ui/tui/components"
	"hetiostats/ui/tui/state"
	"hetiostats/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	ctx            context.Context
	engine         relational.QueryEngine
	limit          int
	state          state.AppState
	spinner        spinner.Model
	table          table.Model
	chart          *components.BucketChart
	consoleText    string
	menuCursor     int
	animCursor     float64
	velocity       float64 // Physics velocity
	spring         harmonica.Spring
	consoleScrollY int
	mouseX         int
	mouseY         int
	quitting       bool
	width          int
	height         int
}

// Messages
type AnimateMsg time.Time

type ReportLoadedMsg struct {
	Report *output.Report
	Stats  relational.GraphStats
	Err    error
}

type TargetsLoadedMsg struct {
	NumDrugs int64
	Targets  []relational.TargetDrugCount
	Err      error
}

func InitialModel(ctx context.Context, e relational.QueryEngine, limit int) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Increased frequency (12.0) for faster response and damping (0.9) to prevent overshoot
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		ctx:     ctx,
		engine:  e,
		limit:   limit,
		spinner: s,
		table:   table.New(),
		chart:   components.NewBucketChart(40, 12),
		spring:  spring,
		state: state.AppState{
			Loading:     true,
			CurrentPage: state.PageMenu,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		loadReportCmd(m.ctx, m.engine, m.limit),
		animateCmd(),
	)
}

// Commands
func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func loadReportCmd(ctx context.Context, e relational.QueryEngine, limit int) tea.Cmd {
	return func() tea.Msg {
		report, err := output.RunReport(ctx, e, limit)
		if err != nil {
			return ReportLoadedMsg{Err: err}
		}
		stats, err := e.Stats(ctx)
		return ReportLoadedMsg{Report: report, Stats: stats, Err: err}
	}
}

func loadTargetsCmd(ctx context.Context, e relational.QueryEngine, numDrugs int64) tea.Cmd {
	return func() tea.Msg {
		targets, err := e.TargetsWithDrugCount(ctx, numDrugs)
		return TargetsLoadedMsg{NumDrugs: numDrugs, Targets: targets, Err: err}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case ReportLoadedMsg:
		return m.handleReportLoadedMsg(msg)

	case TargetsLoadedMsg:
		return m.handleTargetsLoadedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		if m.state.Loading {
			return m, nil
		}
		m.state.Loading = true
		m.state.Err = nil
		return m, loadReportCmd(m.ctx, m.engine, m.limit)
	}

	if m.state.CurrentPage == state.PageMenu {
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			m.navigateTo(m.menuCursor)
		}
		return m, nil
	}

	if msg.String() == "b" || msg.String() == "esc" || msg.String() == "backspace" {
		m.state.CurrentPage = state.PageMenu
		m.consoleScrollY = 0
		return m, nil
	}

	switch m.state.CurrentPage {
	case state.PageConsole:
		switch msg.String() {
		case "up", "k":
			if m.consoleScrollY > 0 {
				m.consoleScrollY--
			}
		case "down", "j":
			m.consoleScrollY++
		}
		return m, nil

	case state.PageQ2:
		if msg.String() == "enter" {
			return m, m.drillIntoSelected()
		}
		fallthrough

	case state.PageQ1, state.PageQ3:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

// drillIntoSelected lists the targets of the highlighted Q2 bucket.
func (m *MainModel) drillIntoSelected() tea.Cmd {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return nil
	}
	numDrugs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return nil
	}
	return loadTargetsCmd(m.ctx, m.engine, numDrugs)
}

func (m *MainModel) navigateTo(cursor int) {
	switch cursor {
	case 0:
		m.state.CurrentPage = state.PageQ1
	case 1:
		m.state.CurrentPage = state.PageQ2
	case 2:
		m.state.CurrentPage = state.PageQ3
	case 3:
		m.state.CurrentPage = state.PageConsole
	case 4:
		m.state.CurrentPage = state.PageSummary
	}
	m.refreshTable()
}

// refreshTable points the interactive table at the current page's answer.
func (m *MainModel) refreshTable() {
	var id string
	switch m.state.CurrentPage {
	case state.PageQ1:
		id = output.TableQ1
	case state.PageQ2:
		id = output.TableQ2
	case state.PageQ3:
		id = output.TableQ3
	default:
		return
	}
	if t := m.state.View.TableByID(id); t != nil {
		m.table = newTable(*t)
	}
}

func newTable(t output.Table) table.Model {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		for i, cell := range r {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
		rows = append(rows, table.Row(r))
	}

	columns := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = table.Column{Title: c, Width: widths[i] + 2}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(views.BrandColor).
		Bold(false)

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
		table.WithStyles(styles),
	)
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 6
	if newW > 10 {
		m.chart.Resize(newW, 12)
	}
	return m, nil
}

func (m *MainModel) handleReportLoadedMsg(msg ReportLoadedMsg) (tea.Model, tea.Cmd) {
	m.state.Loading = false
	if msg.Err != nil {
		m.state.Err = msg.Err
		return m, nil
	}

	m.state.Err = nil
	m.state.Report = msg.Report
	m.state.View = output.BuildReportView(msg.Report)
	m.state.Stats = msg.Stats
	m.state.LastUpdate = time.Now()
	m.state.DrillNumDrugs = 0
	m.state.DrillTargets = nil
	m.state.DrillErr = nil

	var buf bytes.Buffer
	console.Print(&buf, m.state.View)
	m.consoleText = buf.String()

	m.chart.SetBuckets(msg.Report.Q2)
	m.refreshTable()
	return m, nil
}

func (m *MainModel) handleTargetsLoadedMsg(msg TargetsLoadedMsg) (tea.Model, tea.Cmd) {
	m.state.DrillNumDrugs = msg.NumDrugs
	m.state.DrillTargets = msg.Targets
	m.state.DrillErr = msg.Err
	return m, nil
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range views.MenuOptions {
			if zone.Get(views.MenuZoneID(i)).InBounds(msg) {
				m.menuCursor = i
				m.navigateTo(i)
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	spin := m.spinner.View()
	switch m.state.CurrentPage {
	case state.PageQ1, state.PageQ3:
		title := views.MenuOptions[0]
		id := output.TableQ1
		if m.state.CurrentPage == state.PageQ3 {
			title, id = views.MenuOptions[2], output.TableQ3
		}
		if t := m.state.View.TableByID(id); t != nil {
			title = t.Title
		}
		return views.RenderQuestion(m.state, title, m.table.View(), spin, m.width)
	case state.PageQ2:
		return views.RenderDistribution(m.state, m.table.View(), m.chart.View(), spin, m.width)
	case state.PageConsole:
		return views.RenderConsole(m.state, m.consoleText, m.width, m.height, m.consoleScrollY)
	case state.PageSummary:
		return views.RenderSummary(m.state, spin)
	default:
		return views.RenderMenu(m.state, m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY, spin)
	}
}

// Start runs the report browser until the user quits.
func Start(ctx context.Context, e relational.QueryEngine, limit int) error {
	m := InitialModel(ctx, e, limit)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
