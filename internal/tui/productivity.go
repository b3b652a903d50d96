package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
)

type productivityModel struct {
	svc    *activity.Service
	width  int
	height int

	loaded  bool
	err     error
	metrics activity.Metrics

	chart barchart.Model

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	productiveHours *string
	learningHours   *string
}

func newProductivityModel(svc *activity.Service) productivityModel {
	ph, lh := "", ""
	return productivityModel{
		svc:             svc,
		metrics:         activity.Metrics{Goals: activity.DefaultGoals()},
		chart:           barchart.New(40, 8),
		productiveHours: &ph,
		learningHours:   &lh,
	}
}

func (p *productivityModel) setSize(w, h int) {
	p.width = w
	p.height = h
	if p.loaded && p.err == nil {
		p.buildChart()
	}
}

func (p *productivityModel) setData(msg snapshotMsg) {
	p.loaded = true
	p.err = msg.err
	if msg.err != nil {
		return
	}
	p.metrics = activity.ComputeMetrics(msg.snap.Ledger, msg.snap.Goals, p.svc.Classifier(), msg.now)
	p.buildChart()
}

func (p productivityModel) update(msg tea.Msg) (productivityModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Goals), key.Matches(msg, keys.Enter):
			return p.showForm()
		}
	}
	return p, nil
}

func validateHours(s string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || h < 0 {
		return errors.New("enter a number of hours, e.g. 1.5")
	}
	return nil
}

func (p productivityModel) showForm() (productivityModel, tea.Cmd) {
	goals := p.metrics.Goals
	*p.productiveHours = strconv.FormatFloat(float64(goals.ProductiveTime)/3600, 'f', -1, 64)
	*p.learningHours = strconv.FormatFloat(float64(goals.LearningTime)/3600, 'f', -1, 64)

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Productive time goal (hours)").Value(p.productiveHours).Validate(validateHours),
			huh.NewInput().Title("Learning time goal (hours)").Value(p.learningHours).Validate(validateHours),
		).Title("Daily Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p productivityModel) updateForm(msg tea.Msg) (productivityModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.saveGoals(*p.productiveHours, *p.learningHours)
	}

	return p, cmd
}

func (p productivityModel) saveGoals(productive, learning string) tea.Cmd {
	return func() tea.Msg {
		ph, err1 := strconv.ParseFloat(strings.TrimSpace(productive), 64)
		lh, err2 := strconv.ParseFloat(strings.TrimSpace(learning), 64)
		if err := errors.Join(err1, err2); err != nil {
			return statusMsg{text: "Goals must be numbers of hours", isError: true}
		}
		goals, err := activity.GoalsFromHours(ph, lh)
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		if err := p.svc.SaveGoals(context.Background(), goals); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return changedMsg{text: "Goals saved"}
	}
}

// buildChart draws today's seconds per category as hours.
func (p *productivityModel) buildChart() {
	chartWidth := max(min(p.width-8, 60), 20)
	p.chart = barchart.New(chartWidth, 8)

	var bars []barchart.BarData
	for _, cat := range classify.Categories {
		bars = append(bars, barchart.BarData{
			Label: string(cat),
			Values: []barchart.BarValue{{
				Name:  string(cat),
				Value: float64(p.metrics.ByCategory[cat]) / float64(time.Hour/time.Second),
				Style: lipgloss.NewStyle().Foreground(categoryColor(cat)),
			}},
		})
	}
	p.chart.PushAll(bars)
	p.chart.Draw()
}

func (p productivityModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Set Daily Goals")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}
	if !p.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}
	if p.err != nil {
		return renderErrorState(w)
	}

	m := p.metrics
	barWidth := max(min(w-40, 40), 10)

	metrics := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Productivity")+"  "+mutedStyle.Render(m.Date),
		"",
		fmt.Sprintf("  Productive time  %s", highlightStyle.Render(formatSpent(m.ProductiveTime))),
		fmt.Sprintf("  Learning time    %s", highlightStyle.Render(formatSpent(m.LearningTime))),
		fmt.Sprintf("  Tracked total    %s", mutedStyle.Render(formatSeconds(m.Total))),
	)

	goals := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Goal Progress"),
		"",
		fmt.Sprintf("  Productive %s %3d%%  %s", progressBar(m.ProductiveProgress, barWidth), m.ProductiveProgress,
			mutedStyle.Render("of "+formatHours(m.Goals.ProductiveTime))),
		fmt.Sprintf("  Learning   %s %3d%%  %s", progressBar(m.LearningProgress, barWidth), m.LearningProgress,
			mutedStyle.Render("of "+formatHours(m.Goals.LearningTime))),
	)

	var legend []string
	for _, cat := range classify.Categories {
		dot := lipgloss.NewStyle().Foreground(categoryColor(cat)).Render("●")
		legend = append(legend, fmt.Sprintf("%s %s %s", dot, cat, mutedStyle.Render(formatSpent(m.ByCategory[cat]))))
	}
	chart := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Time Distribution")+"  "+mutedStyle.Render("(hours)"),
		p.chart.View(),
		"  "+strings.Join(legend, "   "),
	)

	hint := mutedStyle.Render("  g: set goals")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, metrics, "", goals, "", chart, "", hint),
	)
}
