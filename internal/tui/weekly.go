package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
)

type weeklyModel struct {
	classifier classify.Classifier
	width      int
	height     int

	loaded bool
	err    error
	now    time.Time
	stats  activity.WeekStats

	chart barchart.Model
}

func newWeeklyModel(c classify.Classifier) weeklyModel {
	return weeklyModel{
		classifier: c,
		chart:      barchart.New(60, 12),
	}
}

func (r *weeklyModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.loaded && r.err == nil {
		r.buildChart()
	}
}

func (r *weeklyModel) setData(msg snapshotMsg) {
	r.loaded = true
	r.err = msg.err
	r.now = msg.now
	if msg.err != nil {
		return
	}
	r.stats = activity.AnalyzeWeek(msg.snap.Visits, r.classifier, msg.now)
	r.buildChart()
}

func (r weeklyModel) update(msg tea.Msg) (weeklyModel, tea.Cmd) {
	return r, nil
}

// buildChart stacks each day's visits by category.
func (r *weeklyModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, day := range r.stats.Days {
		counts := map[classify.Category]int{}
		for _, v := range r.stats.ByDay[day] {
			counts[r.classifier.Classify(v.Domain)]++
		}

		var values []barchart.BarValue
		for _, cat := range classify.Categories {
			if counts[cat] == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  string(cat),
				Value: float64(counts[cat]),
				Style: lipgloss.NewStyle().Foreground(categoryColor(cat)),
			})
		}

		label := day
		if t, err := activity.ParseDateKey(day); err == nil {
			label = t.Format("Mon 02")
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r weeklyModel) view() string {
	w := r.width - 4

	if !r.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}
	if r.err != nil {
		return renderErrorState(w)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Weekly Summary"), "  ",
		mutedStyle.Render(fmt.Sprintf("last 7 days to %s", r.now.Format("Jan 02, 2006"))),
	)
	total := lipgloss.JoinVertical(lipgloss.Left,
		statValueStyle.Render(fmt.Sprintf("%d", r.stats.TotalVisits)),
		mutedStyle.Render("Total Visits"),
	)

	if r.stats.TotalVisits == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", total, "", mutedStyle.Render("No activity recorded yet"),
		))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", total, "",
			r.renderBreakdown(w), "",
			r.chart.View(), "",
			r.renderDays(),
		),
	)
}

func (r weeklyModel) renderBreakdown(w int) string {
	rows := []string{titleStyle.Render("Category Breakdown")}
	barWidth := max(min(w-30, 40), 10)
	for _, share := range r.stats.Breakdown() {
		rows = append(rows, fmt.Sprintf("  %s %s %3d%%",
			categoryTag(string(share.Category)),
			progressBar(share.Percent, barWidth),
			share.Percent,
		))
	}
	return strings.Join(rows, "\n")
}

func (r weeklyModel) renderDays() string {
	rows := []string{titleStyle.Render("Daily Activity")}
	for _, day := range r.stats.Days {
		label := day
		if t, err := activity.ParseDateKey(day); err == nil {
			label = t.Format("Monday, Jan 2")
		}
		rows = append(rows, fmt.Sprintf("  %-22s %s", label,
			highlightStyle.Render(fmt.Sprintf("%d visits", len(r.stats.ByDay[day])))))
	}
	return strings.Join(rows, "\n")
}
