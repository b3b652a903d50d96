package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sadopc/tabtrackr/internal/classify"
)

// Storage is the key-value capability the activity records live in.
// Get omits keys that were never written.
type Storage interface {
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, values map[string]any) error
}

// VisitRecord is one completed navigation to an external page.
type VisitRecord struct {
	URL       string            `json:"url"`
	Title     string            `json:"title"`
	Timestamp time.Time         `json:"timestamp"`
	Domain    string            `json:"domain"`
	Category  classify.Category `json:"category"`
}

// Task is a user-created to-do scoped to the day it was created.
type Task struct {
	ID        int64     `json:"id"` // creation time in epoch millis
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTask holds the user input for a task.
type NewTask struct {
	Name     string
	URL      string
	Category string
}

// TaskCategories are the categories offered when creating a task.
var TaskCategories = []string{"Work", "Learning", "Personal", "Other"}

// Goals are daily time targets in seconds.
type Goals struct {
	ProductiveTime int64 `json:"productiveTime"`
	LearningTime   int64 `json:"learningTime"`
}

// DefaultGoals returns the targets used until the user saves their own.
func DefaultGoals() Goals {
	return Goals{
		ProductiveTime: 4 * 3600,
		LearningTime:   1 * 3600,
	}
}

// Snapshot is every persisted collection read at once.
type Snapshot struct {
	Visits []VisitRecord `json:"visitedSites"`
	Ledger Ledger        `json:"siteTimeData"`
	Tasks  []Task        `json:"tasks"`
	Goals  Goals         `json:"goals"`
}
