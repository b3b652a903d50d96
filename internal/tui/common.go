package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDaily viewState = iota
	viewWeekly
	viewProductivity
	viewTasks
)

var viewNames = []string{"Daily", "Weekly", "Productivity", "Tasks"}

// --- Messages ---

// snapshotMsg carries a fresh read of every collection.
type snapshotMsg struct {
	snap activity.Snapshot
	now  time.Time
	err  error
}

// changedMsg reports a successful write; the app reloads after it.
type changedMsg struct {
	text string
}

type statusMsg struct {
	text    string
	isError bool
}

type refreshMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// formatSpent renders whole minutes as "45m", "2h" or "1h 30m".
func formatSpent(secs int64) string {
	minutes := secs / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// formatTimeAgo renders how long before now t was.
func formatTimeAgo(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// progressBar draws pct (0-100) as a bar of the given width.
func progressBar(pct, width int) string {
	if width < 1 {
		width = 1
	}
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

// renderErrorState is shown in place of a view whose data failed to load.
func renderErrorState(w int) string {
	return errorPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("Something went wrong"),
		mutedStyle.Render("Please try again later"),
	))
}

func renderEmptyState(title, text, subtext string, w int) string {
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		mutedStyle.Render(text),
		mutedStyle.Render(subtext),
	))
}
