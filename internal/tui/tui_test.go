package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/store"
)

var wednesday = time.Date(2026, time.October, 21, 15, 0, 0, 0, time.Local)

func fixedNow() time.Time { return wednesday }

func newTestService(t *testing.T) *activity.Service {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return activity.New(s, activity.Options{})
}

func newTestApp(t *testing.T) (App, *activity.Service) {
	t.Helper()
	svc := newTestService(t)
	app := NewApp(svc, Options{ExportDir: t.TempDir(), Now: fixedNow})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), svc
}

func loadSnapshot(t *testing.T, svc *activity.Service) snapshotMsg {
	t.Helper()
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return snapshotMsg{snap: snap, now: wednesday}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0.0h"},
		{3600, "1.0h"},
		{5400, "1.5h"},
	}
	for _, tt := range tests {
		got := formatHours(tt.secs)
		if got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatSpent(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0m"},
		{59, "0m"},
		{45 * 60, "45m"},
		{2 * 3600, "2h"},
		{5400, "1h 30m"},
		{5459, "1h 30m"},
	}
	for _, tt := range tests {
		got := formatSpent(tt.secs)
		if got != tt.want {
			t.Errorf("formatSpent(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{48 * time.Hour, "Oct 19, 2026"},
	}
	for _, tt := range tests {
		got := formatTimeAgo(wednesday.Add(-tt.ago), wednesday)
		if got != tt.want {
			t.Errorf("formatTimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct, width, filled int
	}{
		{0, 10, 0},
		{50, 10, 5},
		{100, 10, 10},
		{150, 10, 10},
		{-5, 10, 0},
	}
	for _, tt := range tests {
		bar := progressBar(tt.pct, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("progressBar(%d, %d) filled %d, want %d", tt.pct, tt.width, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("progressBar(%d, %d) width %d", tt.pct, tt.width, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("github.com", 20); got != "github.com" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := truncate("stackoverflow.com", 6); got != "stack…" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Daily", "Weekly", "Productivity", "Tasks"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

// ============================================================
// Views
// ============================================================

func TestViewsShowErrorState(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(snapshotMsg{err: errors.New("boom"), now: wednesday})
	app = m.(App)

	for i := range viewNames {
		app.activeView = viewState(i)
		out := app.View()
		if !strings.Contains(out, "Something went wrong") {
			t.Fatalf("view %s missing error state:\n%s", viewNames[i], out)
		}
	}
}

func TestViewsShowLoading(t *testing.T) {
	app, _ := newTestApp(t)
	for i := range viewNames {
		app.activeView = viewState(i)
		if out := app.View(); !strings.Contains(out, "Loading...") {
			t.Fatalf("view %s should show loading", viewNames[i])
		}
	}
}

func TestDailyEmptyState(t *testing.T) {
	app, svc := newTestApp(t)
	m, _ := app.Update(loadSnapshot(t, svc))
	app = m.(App)

	out := app.View()
	if !strings.Contains(out, "No activity recorded yet") {
		t.Fatalf("missing empty state:\n%s", out)
	}
	if !strings.Contains(out, "Sites Visited") {
		t.Fatal("summary should render with no visits")
	}
}

func TestDailyListsTodaysVisits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.RecordVisit(ctx, "https://github.com/sadopc", "GitHub", wednesday.Add(-5*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordVisit(ctx, "https://youtube.com/", "YouTube", wednesday.Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	d := newDailyModel(classify.Default)
	d.setSize(120, 40)
	d.setData(loadSnapshot(t, svc))

	if d.summary.Visits != 1 {
		t.Fatalf("today's visits = %d, want 1", d.summary.Visits)
	}
	out := d.view()
	if !strings.Contains(out, "github.com") || !strings.Contains(out, "5m ago") {
		t.Fatalf("visit row missing:\n%s", out)
	}
	if strings.Contains(out, "youtube.com") {
		t.Fatal("yesterday's visit should not be listed")
	}
}

func TestWeeklyView(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, u := range []string{"https://github.com/", "https://coursera.org/", "https://youtube.com/"} {
		if _, err := svc.RecordVisit(ctx, u, "", wednesday.Add(-time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	w := newWeeklyModel(classify.Default)
	w.setSize(120, 40)
	w.setData(loadSnapshot(t, svc))

	if w.stats.TotalVisits != 3 {
		t.Fatalf("total = %d, want 3", w.stats.TotalVisits)
	}
	out := w.view()
	for _, want := range []string{"Weekly Summary", "Category Breakdown", "Daily Activity", "3 visits"} {
		if !strings.Contains(out, want) {
			t.Fatalf("weekly view missing %q:\n%s", want, out)
		}
	}
}

func TestProductivityMetrics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if err := svc.AddTime(ctx, "github.com", 5400, wednesday); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddTime(ctx, "coursera.org", 1800, wednesday); err != nil {
		t.Fatal(err)
	}

	p := newProductivityModel(svc)
	p.setSize(120, 40)
	p.setData(loadSnapshot(t, svc))

	if p.metrics.ProductiveTime != 7200 || p.metrics.LearningTime != 1800 {
		t.Fatalf("metrics = %+v", p.metrics)
	}
	out := p.view()
	if !strings.Contains(out, "2h") || !strings.Contains(out, "30m") {
		t.Fatalf("productivity view missing times:\n%s", out)
	}
}

func TestSaveGoalsCmd(t *testing.T) {
	svc := newTestService(t)
	p := newProductivityModel(svc)

	msg := p.saveGoals("4.5", " 0.25 ")()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("expected changedMsg, got %#v", msg)
	}
	g, err := svc.Goals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ProductiveTime != 16200 || g.LearningTime != 900 {
		t.Fatalf("goals = %+v", g)
	}

	msg = p.saveGoals("-1", "1")()
	if s, ok := msg.(statusMsg); !ok || !s.isError {
		t.Fatalf("negative goal should fail, got %#v", msg)
	}
	msg = p.saveGoals("abc", "1")()
	if s, ok := msg.(statusMsg); !ok || !s.isError {
		t.Fatalf("non-numeric goal should fail, got %#v", msg)
	}
}

func TestValidateHours(t *testing.T) {
	for _, ok := range []string{"0", "1.5", " 4 "} {
		if err := validateHours(ok); err != nil {
			t.Errorf("validateHours(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "-1", "two"} {
		if err := validateHours(bad); err == nil {
			t.Errorf("validateHours(%q) should fail", bad)
		}
	}
}

func TestGoalsFormOpens(t *testing.T) {
	svc := newTestService(t)
	p := newProductivityModel(svc)
	p.setData(loadSnapshot(t, svc))

	p, _ = p.update(keyRune('g'))
	if !p.formActive {
		t.Fatal("g should open the goals form")
	}
	if *p.productiveHours != "4" || *p.learningHours != "1" {
		t.Fatalf("form prefilled with %q/%q", *p.productiveHours, *p.learningHours)
	}

	p, _ = p.update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestGoalsFormKeepsZeroGoals(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SaveGoals(context.Background(), activity.Goals{}); err != nil {
		t.Fatal(err)
	}
	p := newProductivityModel(svc)
	p.setData(loadSnapshot(t, svc))

	p, _ = p.update(keyRune('g'))
	if *p.productiveHours != "0" || *p.learningHours != "0" {
		t.Fatalf("form prefilled with %q/%q, want saved zero goals", *p.productiveHours, *p.learningHours)
	}
}

func TestGoalsFormBeforeLoad(t *testing.T) {
	p := newProductivityModel(newTestService(t))
	p, _ = p.update(keyRune('g'))
	if *p.productiveHours != "4" || *p.learningHours != "1" {
		t.Fatalf("form prefilled with %q/%q", *p.productiveHours, *p.learningHours)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestTasksEmptyState(t *testing.T) {
	svc := newTestService(t)
	m := newTasksModel(svc, fixedNow)
	m.setSize(120, 40)
	m.setData(loadSnapshot(t, svc))

	if out := m.view(); !strings.Contains(out, "No tasks for today") {
		t.Fatalf("missing empty state:\n%s", out)
	}
}

func TestTasksToggleWithKey(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, activity.NewTask{Name: "Write report", Category: "Work"}, wednesday.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	m := newTasksModel(svc, fixedNow)
	m.setSize(120, 40)
	m.setData(loadSnapshot(t, svc))
	if len(m.tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.tasks))
	}

	m, cmd := m.update(keyRune('x'))
	if cmd == nil {
		t.Fatal("toggle should return a command")
	}
	if _, ok := cmd().(changedMsg); !ok {
		t.Fatal("toggle should report a change")
	}

	tasks, err := svc.Tasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tasks[0].ID != task.ID || !tasks[0].Completed {
		t.Fatalf("task not completed: %+v", tasks[0])
	}

	m.setData(loadSnapshot(t, svc))
	if out := m.view(); !strings.Contains(out, "[x]") {
		t.Fatalf("completed task should be checked:\n%s", out)
	}
}

func TestTasksCursor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i, name := range []string{"one", "two"} {
		if _, err := svc.CreateTask(ctx, activity.NewTask{Name: name}, wednesday.Add(time.Duration(i-2)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	m := newTasksModel(svc, fixedNow)
	m.setData(loadSnapshot(t, svc))

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
}

func TestTasksOpenURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateTask(ctx, activity.NewTask{Name: "Read docs", URL: "https://go.dev/doc"}, wednesday); err != nil {
		t.Fatal(err)
	}

	m := newTasksModel(svc, fixedNow)
	var opened string
	m.open = func(u string) error {
		opened = u
		return nil
	}
	m.setData(loadSnapshot(t, svc))

	_, cmd := m.update(keyRune('o'))
	if cmd == nil {
		t.Fatal("open should return a command")
	}
	cmd()
	if opened != "https://go.dev/doc" {
		t.Fatalf("opened %q", opened)
	}
}

func TestTasksCreateCmd(t *testing.T) {
	svc := newTestService(t)
	m := newTasksModel(svc, fixedNow)

	msg := m.create(activity.NewTask{Name: "Review PR", Category: "Work"})()
	if c, ok := msg.(changedMsg); !ok || c.text != "Added Review PR" {
		t.Fatalf("unexpected msg %#v", msg)
	}
	msg = m.create(activity.NewTask{Name: "   "})()
	if s, ok := msg.(statusMsg); !ok || !s.isError {
		t.Fatalf("empty name should fail, got %#v", msg)
	}

	tasks, err := svc.Tasks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || !tasks[0].CreatedAt.Equal(wednesday) {
		t.Fatalf("tasks = %+v", tasks)
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.activeView != viewDaily {
		t.Fatal("default view should be daily")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("app should start without overlays")
	}
	if app.opts.RefreshInterval != defaultRefreshInterval {
		t.Fatalf("refresh interval = %v", app.opts.RefreshInterval)
	}
}

func TestAppLoadingState(t *testing.T) {
	svc := newTestService(t)
	app := NewApp(svc, Options{})
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppSwitchesViews(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(keyRune('4'))
	app = m.(App)
	if app.activeView != viewTasks {
		t.Fatalf("view = %d, want tasks", app.activeView)
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = m.(App)
	if app.activeView != viewDaily {
		t.Fatalf("tab should wrap to daily, got %d", app.activeView)
	}
}

func TestAppHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppChangedReloads(t *testing.T) {
	app, _ := newTestApp(t)
	m, cmd := app.Update(changedMsg{text: "Goals saved"})
	app = m.(App)
	if app.status != "Goals saved" {
		t.Fatalf("status = %q", app.status)
	}
	if cmd == nil {
		t.Fatal("a change should trigger a reload")
	}
	if _, ok := cmd().(snapshotMsg); !ok {
		t.Fatal("reload should produce a snapshot")
	}
	if !strings.Contains(app.renderFooter(), "Goals saved") {
		t.Fatal("footer should show the status")
	}
}

func TestAppExport(t *testing.T) {
	app, svc := newTestApp(t)
	ctx := context.Background()
	if _, err := svc.RecordVisit(ctx, "https://github.com/", "GitHub", wednesday); err != nil {
		t.Fatal(err)
	}

	wantFiles := []string{
		"tabtrackr-visits-2026-10-21.csv",
		"tabtrackr-ledger-2026-10-21.csv",
		"tabtrackr-snapshot-2026-10-21.json",
	}
	for i, name := range wantFiles {
		msg := app.doExport(i)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("export %d: unexpected %#v", i, msg)
		}
		if filepath.Base(done.path) != name {
			t.Fatalf("export %d wrote %s, want %s", i, done.path, name)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAppExportWithoutHome(t *testing.T) {
	svc := newTestService(t)
	app := NewApp(svc, Options{Now: fixedNow})
	t.Setenv("HOME", "")

	msg := app.doExport(0)()
	if s, ok := msg.(statusMsg); !ok || !s.isError {
		t.Fatalf("expected an export error, got %#v", msg)
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(keyRune('e'))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if out := app.View(); !strings.Contains(out, "Time ledger CSV") {
		t.Fatal("picker should list formats")
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = m.(App)
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}
