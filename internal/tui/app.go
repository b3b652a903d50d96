package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/export"
)

// Options configures the popup. Zero values use the defaults.
type Options struct {
	RefreshInterval time.Duration
	// ExportDir receives exported files, the home directory when empty.
	ExportDir string
	Now       func() time.Time
}

const defaultRefreshInterval = time.Minute

var exportFormats = []string{"Visits CSV", "Time ledger CSV", "JSON snapshot"}

// App is the root Bubble Tea model.
type App struct {
	svc    *activity.Service
	opts   Options
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	daily        dailyModel
	weekly       weeklyModel
	productivity productivityModel
	tasks        tasksModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(svc *activity.Service, opts Options) App {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	c := svc.Classifier()
	return App{
		svc:          svc,
		opts:         opts,
		activeView:   viewDaily,
		daily:        newDailyModel(c),
		weekly:       newWeeklyModel(c),
		productivity: newProductivityModel(svc),
		tasks:        newTasksModel(svc, opts.Now),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.tick())
}

// load reads every collection once; all views render from the same read.
func (a App) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.svc.Snapshot(context.Background())
		return snapshotMsg{snap: snap, now: a.opts.Now(), err: err}
	}
}

func (a App) tick() tea.Cmd {
	return tea.Tick(a.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.daily.setSize(a.width, contentHeight)
		a.weekly.setSize(a.width, contentHeight)
		a.productivity.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.load()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDaily
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewWeekly
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProductivity
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case snapshotMsg:
		a.daily.setData(msg)
		a.weekly.setData(msg)
		a.productivity.setData(msg)
		a.tasks.setData(msg)
		return a, nil

	case refreshMsg:
		return a, tea.Batch(a.load(), a.tick())

	case changedMsg:
		a.status, a.isError = msg.text, false
		return a, a.load()

	case statusMsg:
		a.status, a.isError = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.isError = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDaily:
		a.daily, cmd = a.daily.update(msg)
	case viewWeekly:
		a.weekly, cmd = a.weekly.update(msg)
	case viewProductivity:
		a.productivity, cmd = a.productivity.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewProductivity:
		return a.productivity.formActive
	case viewTasks:
		return a.tasks.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDaily:
		content = a.daily.view()
	case viewWeekly:
		content = a.weekly.view()
	case viewProductivity:
		content = a.productivity.view()
	case viewTasks:
		content = a.tasks.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tabtrackr")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		style := mutedStyle
		if a.isError {
			style = errorStyle
		}
		right = style.Render(" " + a.status)
	}

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.svc.Snapshot(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dir := a.opts.ExportDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		now := a.opts.Now()
		dateStr := now.Format("2006-01-02")

		var path string
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("tabtrackr-visits-%s.csv", dateStr))
			err = export.VisitsToCSV(snap.Visits, path)
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("tabtrackr-ledger-%s.csv", dateStr))
			err = export.LedgerToCSV(snap.Ledger, a.svc.Classifier(), path)
		default:
			path = filepath.Join(dir, fmt.Sprintf("tabtrackr-snapshot-%s.json", dateStr))
			err = export.ToJSON(snap, path, now)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
