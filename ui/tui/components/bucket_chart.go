package components

import (
	"strconv"

	"hetiostats/internal/database/relational"
	"hetiostats/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ Component = (*BucketChart)(nil)

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f27b24"))

// BucketChart draws the disease distribution as one bar per drug count.
type BucketChart struct {
	Chart   barchart.Model
	Buckets []relational.DrugCountBucket
	Width   int
	Height  int
}

func NewBucketChart(width, height int) *BucketChart {
	return &BucketChart{
		Chart:  barchart.New(width, height),
		Width:  width,
		Height: height,
	}
}

func (c *BucketChart) Init() tea.Cmd {
	return nil
}

// SetBuckets replaces the plotted data.
func (c *BucketChart) SetBuckets(buckets []relational.DrugCountBucket) {
	c.Buckets = buckets
}

func (c *BucketChart) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *BucketChart) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

// BarData converts the buckets into chart bars labelled by drug count.
func (c *BucketChart) BarData() []barchart.BarData {
	data := make([]barchart.BarData, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		data = append(data, barchart.BarData{
			Label: strconv.FormatInt(b.NumDrugs, 10),
			Values: []barchart.BarValue{{
				Name:  "diseases",
				Value: float64(b.NumDiseases),
				Style: barStyle,
			}},
		})
	}
	return data
}

func (c *BucketChart) View() string {
	c.Chart.Clear()
	c.Chart.PushAll(c.BarData())
	c.Chart.Draw()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Diseases per drug count"),
			c.Chart.View(),
		),
	)
}
