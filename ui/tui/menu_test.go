package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hetiostats/internal/database/relational"
	"hetiostats/internal/engine"
	"hetiostats/internal/testutil"
	"hetiostats/ui/tui/state"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() MainModel {
	e := engine.NewMemoryEngine(testutil.SampleNodes, testutil.SampleEdges)
	return InitialModel(context.Background(), e, relational.DefaultTopN)
}

// loaded returns a model that has already received its first report.
func loaded(t *testing.T) *MainModel {
	t.Helper()
	model := newTestModel()
	msg := loadReportCmd(model.ctx, model.engine, model.limit)()
	updated, _ := model.Update(msg)
	return updated.(*MainModel)
}

func TestMenuNavigation(t *testing.T) {
	model := newTestModel()

	// Initial state
	if model.menuCursor != 0 {
		t.Errorf("Expected initial menu cursor 0, got %d", model.menuCursor)
	}
	if model.state.CurrentPage != state.PageMenu {
		t.Errorf("Expected initial page PageMenu, got %v", model.state.CurrentPage)
	}

	// Test Down Navigation
	cmd := tea.KeyMsg{Type: tea.KeyDown, Runes: []rune{}, Alt: false}
	updatedModel, _ := model.Update(cmd)
	m := updatedModel.(*MainModel)

	if m.menuCursor != 1 {
		t.Errorf("Expected menu cursor 1 after Down key, got %d", m.menuCursor)
	}

	// Test Up Navigation
	cmd = tea.KeyMsg{Type: tea.KeyUp, Runes: []rune{}, Alt: false}
	updatedModel, _ = m.Update(cmd)
	m = updatedModel.(*MainModel)

	if m.menuCursor != 0 {
		t.Errorf("Expected menu cursor 0 after Up key, got %d", m.menuCursor)
	}

	// Cursor stops at the last entry
	for i := 0; i < 10; i++ {
		updatedModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = updatedModel.(*MainModel)
	}
	if m.menuCursor != 4 {
		t.Errorf("Expected menu cursor clamped to 4, got %d", m.menuCursor)
	}
}

func TestMenuAnimationLogic(t *testing.T) {
	model := newTestModel()

	// Move cursor to 1
	model.menuCursor = 1

	if model.animCursor != 0 {
		t.Errorf("Expected initial animCursor 0, got %f", model.animCursor)
	}

	// The spring physics should move animCursor towards menuCursor (1.0)
	animateMsg := AnimateMsg(time.Now())
	updatedModel, _ := model.Update(animateMsg)
	m := updatedModel.(*MainModel)

	if m.animCursor <= 0 {
		t.Errorf("Expected animCursor to increase after animation frame, got %f", m.animCursor)
	}
	if m.animCursor >= 1.0 {
		t.Errorf("Expected animCursor to not reach target immediately, got %f", m.animCursor)
	}

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)
	prevCursor := m.animCursor

	updatedModel, _ = m.Update(animateMsg)
	m = updatedModel.(*MainModel)

	if m.animCursor <= prevCursor {
		t.Errorf("Expected animCursor to continue increasing, got %f (prev %f)", m.animCursor, prevCursor)
	}
}

func TestPageTransition(t *testing.T) {
	model := newTestModel()

	// Select the console report
	model.menuCursor = 3
	cmd := tea.KeyMsg{Type: tea.KeyEnter, Runes: []rune{}, Alt: false}
	updatedModel, _ := model.Update(cmd)
	m := updatedModel.(*MainModel)

	if m.state.CurrentPage != state.PageConsole {
		t.Errorf("Expected page to change to PageConsole, got %v", m.state.CurrentPage)
	}

	// Go Back
	cmd = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}, Alt: false}
	updatedModel, _ = m.Update(cmd)
	m = updatedModel.(*MainModel)

	if m.state.CurrentPage != state.PageMenu {
		t.Errorf("Expected page to change back to PageMenu, got %v", m.state.CurrentPage)
	}
}

func TestReportLoaded(t *testing.T) {
	m := loaded(t)

	require.NoError(t, m.state.Err)
	assert.False(t, m.state.Loading)
	require.NotNil(t, m.state.Report)
	assert.Equal(t, testutil.SampleDrugGeneCounts, m.state.Report.Q1)
	assert.Equal(t, testutil.SampleDistribution, m.chart.Buckets)
	assert.Contains(t, m.consoleText, "Q1: Top 5 drugs by number of genes associated")
	assert.Positive(t, m.state.Stats.Compounds)

	m.navigateTo(0)
	assert.Equal(t, state.PageQ1, m.state.CurrentPage)
	assert.Len(t, m.table.Rows(), len(testutil.SampleDrugGeneCounts))
	assert.Equal(t, testutil.SampleDrugGeneCounts[0].ID, m.table.SelectedRow()[0])
}

func TestReportLoadFailure(t *testing.T) {
	model := newTestModel()
	updated, _ := model.Update(ReportLoadedMsg{Err: errors.New("boom")})
	m := updated.(*MainModel)

	assert.False(t, m.state.Loading)
	assert.EqualError(t, m.state.Err, "boom")
	assert.Nil(t, m.state.Report)
}

func TestDistributionDrillDown(t *testing.T) {
	m := loaded(t)
	m.navigateTo(1)
	require.Equal(t, state.PageQ2, m.state.CurrentPage)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TargetsLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)

	want := testutil.SampleDistribution[0].NumDrugs
	assert.Equal(t, want, msg.NumDrugs)
	assert.Len(t, msg.Targets, int(testutil.SampleDistribution[0].NumDiseases))
	for _, target := range msg.Targets {
		assert.Equal(t, want, target.NumDrugs)
	}

	updated, _ := m.Update(msg)
	m = updated.(*MainModel)
	assert.Equal(t, want, m.state.DrillNumDrugs)
}

func TestRerunWhileLoadingIsIgnored(t *testing.T) {
	model := newTestModel()
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)

	m := loaded(t)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.NotNil(t, cmd)
	assert.True(t, m.state.Loading)
}

func TestViewRendersEveryPage(t *testing.T) {
	zone.NewGlobal()
	m := loaded(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Contains(t, m.View(), "HETIOSTATS")

	for i, want := range []string{"Q1:", "Q2:", "Q3:", "Console Report View", "Dataset Summary"} {
		m.navigateTo(i)
		if got := m.View(); !strings.Contains(got, want) {
			t.Errorf("page %d missing %q", i, want)
		}
	}
}
