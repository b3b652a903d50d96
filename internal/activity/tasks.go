package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/tabtrackr/internal/store"
)

var (
	ErrEmptyTaskName = errors.New("task name is required")
	ErrTaskNotFound  = errors.New("task not found")
)

// Tasks returns every task ever created, in creation order.
func (s *Service) Tasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := load(ctx, s.kv, store.KeyTasks, &tasks); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask appends a new incomplete task stamped with now.
func (s *Service) CreateTask(ctx context.Context, in NewTask, now time.Time) (Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Task{}, ErrEmptyTaskName
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "Other"
	}

	tasks, err := s.Tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	// IDs are creation millis, bumped past the newest so they stay unique.
	id := now.UnixMilli()
	for _, prev := range tasks {
		if prev.ID >= id {
			id = prev.ID + 1
		}
	}
	task := Task{
		ID:        id,
		Name:      name,
		URL:       strings.TrimSpace(in.URL),
		Category:  category,
		Completed: false,
		CreatedAt: now,
	}
	tasks = append(tasks, task)
	if err := s.kv.Set(ctx, map[string]any{store.KeyTasks: tasks}); err != nil {
		return Task{}, fmt.Errorf("save tasks: %w", err)
	}
	return task, nil
}

// ToggleTask flips the completion flag of the task with id.
func (s *Service) ToggleTask(ctx context.Context, id int64) (Task, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i].Completed = !tasks[i].Completed
		if err := s.kv.Set(ctx, map[string]any{store.KeyTasks: tasks}); err != nil {
			return Task{}, fmt.Errorf("save tasks: %w", err)
		}
		return tasks[i], nil
	}
	return Task{}, fmt.Errorf("toggle %d: %w", id, ErrTaskNotFound)
}

// TodayTasks returns the tasks created on now's date, incomplete ones first.
// Order is otherwise preserved.
func TodayTasks(tasks []Task, now time.Time) []Task {
	var out []Task
	for _, t := range tasks {
		if SameDay(t.CreatedAt, now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Completed && out[j].Completed
	})
	return out
}

// IncompleteToday counts today's tasks that are not completed.
func IncompleteToday(tasks []Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if SameDay(t.CreatedAt, now) && !t.Completed {
			n++
		}
	}
	return n
}

// IncompleteMessage is the reminder text for n open tasks.
func IncompleteMessage(n int) string {
	return fmt.Sprintf("You have %d incomplete tasks for today", n)
}

// DailySummary is the headline numbers shown above the daily view.
type DailySummary struct {
	Visits         int
	Tasks          int
	CompletedTasks int
	TaskCompletion int
}

// Summarize counts today's visits and the share of today's tasks completed.
func Summarize(visits []VisitRecord, tasks []Task, now time.Time) DailySummary {
	sum := DailySummary{Visits: len(Today(visits, now))}
	for _, t := range tasks {
		if !SameDay(t.CreatedAt, now) {
			continue
		}
		sum.Tasks++
		if t.Completed {
			sum.CompletedTasks++
		}
	}
	sum.TaskCompletion = Percent(int64(sum.CompletedTasks), int64(sum.Tasks))
	return sum
}
