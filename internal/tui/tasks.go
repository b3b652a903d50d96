package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tabtrackr/internal/activity"
)

type tasksModel struct {
	svc    *activity.Service
	now    func() time.Time
	open   func(string) error
	width  int
	height int

	loaded bool
	err    error
	tasks  []activity.Task
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName     *string
	formURL      *string
	formCategory *string
}

func newTasksModel(svc *activity.Service, now func() time.Time) tasksModel {
	name, url, cat := "", "", activity.TaskCategories[0]
	return tasksModel{
		svc:          svc,
		now:          now,
		open:         openURL,
		formName:     &name,
		formURL:      &url,
		formCategory: &cat,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *tasksModel) setData(msg snapshotMsg) {
	p.loaded = true
	p.err = msg.err
	if msg.err != nil {
		return
	}
	p.tasks = activity.TodayTasks(msg.snap.Tasks, msg.now)
	if p.cursor >= len(p.tasks) {
		p.cursor = max(0, len(p.tasks)-1)
	}
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(msgKey, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
	case key.Matches(msgKey, keys.New):
		return p.showNewTaskForm()
	case key.Matches(msgKey, keys.Toggle):
		if len(p.tasks) > 0 {
			return p, p.toggle(p.tasks[p.cursor].ID)
		}
	case key.Matches(msgKey, keys.Open), key.Matches(msgKey, keys.Enter):
		if len(p.tasks) > 0 {
			return p, p.openTask(p.tasks[p.cursor])
		}
	}
	return p, nil
}

func (p tasksModel) toggle(id int64) tea.Cmd {
	return func() tea.Msg {
		task, err := p.svc.ToggleTask(context.Background(), id)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if task.Completed {
			return changedMsg{text: "Completed " + task.Name}
		}
		return changedMsg{text: "Reopened " + task.Name}
	}
}

func (p tasksModel) openTask(t activity.Task) tea.Cmd {
	if t.URL == "" {
		return nil
	}
	return func() tea.Msg {
		if err := p.open(t.URL); err != nil {
			return statusMsg{text: fmt.Sprintf("Open failed: %v", err), isError: true}
		}
		return statusMsg{text: "Opened " + t.URL}
	}
}

func (p tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*p.formName = ""
	*p.formURL = ""
	*p.formCategory = activity.TaskCategories[0]

	catOptions := make([]huh.Option[string], len(activity.TaskCategories))
	for i, c := range activity.TaskCategories {
		catOptions[i] = huh.NewOption(c, c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(p.formName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("task name is required")
				}
				return nil
			}),
			huh.NewInput().Title("URL (optional)").Value(p.formURL),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(p.formCategory),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
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
		return p, p.create(activity.NewTask{
			Name:     *p.formName,
			URL:      *p.formURL,
			Category: *p.formCategory,
		})
	}

	return p, cmd
}

func (p tasksModel) create(in activity.NewTask) tea.Cmd {
	return func() tea.Msg {
		task, err := p.svc.CreateTask(context.Background(), in, p.now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return changedMsg{text: "Added " + task.Name}
	}
}

func (p tasksModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}
	if !p.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}
	if p.err != nil {
		return renderErrorState(w)
	}
	if len(p.tasks) == 0 {
		return renderEmptyState("Today's Tasks", "No tasks for today", "Press n to add tasks to track your daily goals", w)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Today's Tasks"))
	rows = append(rows, "")

	for i, t := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		name := t.Name
		if t.Completed {
			check = successStyle.Render("[x]")
			name = completedItemStyle.Render(name)
		}
		row := style.Render(cursor) + check + " " + style.Render(name) + "  " + categoryTag(t.Category)
		rows = append(rows, row)
		if t.URL != "" {
			rows = append(rows, mutedStyle.Render("      "+truncate(t.URL, max(w-10, 10))))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  space: toggle  o: open url"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// openURL hands rawURL to the platform URL opener.
func openURL(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
