package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
)

// maxDailyRows caps the visit list so the view fits small terminals.
const maxDailyRows = 50

type dailyModel struct {
	classifier classify.Classifier
	width      int
	height     int

	loaded  bool
	err     error
	now     time.Time
	summary activity.DailySummary
	visits  []activity.VisitRecord
}

func newDailyModel(c classify.Classifier) dailyModel {
	return dailyModel{classifier: c}
}

func (d *dailyModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dailyModel) setData(msg snapshotMsg) {
	d.loaded = true
	d.err = msg.err
	d.now = msg.now
	if msg.err != nil {
		return
	}
	d.visits = activity.Today(msg.snap.Visits, msg.now)
	d.summary = activity.Summarize(msg.snap.Visits, msg.snap.Tasks, msg.now)
}

func (d dailyModel) update(msg tea.Msg) (dailyModel, tea.Cmd) {
	return d, nil
}

func (d dailyModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if !d.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}
	if d.err != nil {
		return renderErrorState(w)
	}

	summaryPanel := d.renderSummaryPanel(w)
	if len(d.visits) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, summaryPanel,
			renderEmptyState("Today's Activity", "No activity recorded yet", "Your browsing activity will appear here", w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, summaryPanel, d.renderVisitsPanel(w))
}

func (d dailyModel) renderSummaryPanel(w int) string {
	visits := lipgloss.JoinVertical(lipgloss.Center,
		statValueStyle.Render(fmt.Sprintf("%d", d.summary.Visits)),
		mutedStyle.Render("Sites Visited"),
	)
	tasks := lipgloss.JoinVertical(lipgloss.Center,
		statValueStyle.Render(fmt.Sprintf("%d%%", d.summary.TaskCompletion)),
		mutedStyle.Render(fmt.Sprintf("Tasks Done (%d/%d)", d.summary.CompletedTasks, d.summary.Tasks)),
	)
	cell := lipgloss.NewStyle().Width((w - 6) / 2).Align(lipgloss.Center)
	row := lipgloss.JoinHorizontal(lipgloss.Top, cell.Render(visits), cell.Render(tasks))

	title := titleStyle.Render("Today") + "  " + mutedStyle.Render(d.now.Format("Monday, Jan 2"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", row))
}

func (d dailyModel) renderVisitsPanel(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Today's Activity"))

	shown := d.visits
	if len(shown) > maxDailyRows {
		shown = shown[:maxDailyRows]
	}
	titleWidth := max(w-52, 10)
	for _, v := range shown {
		cat := d.classifier.Classify(v.Domain)
		icon := lipgloss.NewStyle().Foreground(categoryColor(cat)).Bold(true).
			Render(strings.ToUpper(firstRune(v.Domain)))
		title := v.Title
		if title == "" {
			title = v.URL
		}
		row := fmt.Sprintf("  %s %-10s %-24s %s %s",
			icon,
			formatTimeAgo(v.Timestamp, d.now),
			truncate(v.Domain, 24),
			categoryTag(string(cat)),
			truncate(title, titleWidth),
		)
		rows = append(rows, row)
	}
	if extra := len(d.visits) - len(shown); extra > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … and %d more", extra)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return "?"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
