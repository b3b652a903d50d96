package activity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/store"
)

var ErrInvalidGoal = errors.New("goal hours must be a non-negative number")

// Goals returns the saved goals, or the defaults when none were saved.
func (s *Service) Goals(ctx context.Context) (Goals, error) {
	g := DefaultGoals()
	if err := load(ctx, s.kv, store.KeyGoals, &g); err != nil {
		return DefaultGoals(), fmt.Errorf("load goals: %w", err)
	}
	return g, nil
}

// SaveGoals overwrites the goals record.
func (s *Service) SaveGoals(ctx context.Context, g Goals) error {
	if err := s.kv.Set(ctx, map[string]any{store.KeyGoals: g}); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// GoalsFromHours converts the two hour inputs of the goals form to seconds.
func GoalsFromHours(productive, learning float64) (Goals, error) {
	for _, h := range []float64{productive, learning} {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return Goals{}, ErrInvalidGoal
		}
	}
	return Goals{
		ProductiveTime: int64(math.Round(productive * 3600)),
		LearningTime:   int64(math.Round(learning * 3600)),
	}, nil
}

// GoalProgress is current/target as a whole percentage capped at 100.
func GoalProgress(current, target int64) int {
	return min(Percent(current, target), 100)
}

// Metrics is the productivity summary for one day of the ledger.
type Metrics struct {
	Date               string
	ByCategory         map[classify.Category]int64
	Total              int64
	ProductiveTime     int64
	LearningTime       int64
	Goals              Goals
	ProductiveProgress int
	LearningProgress   int
}

// ComputeMetrics derives the productivity summary for now's date.
func ComputeMetrics(ledger Ledger, goals Goals, c classify.Classifier, now time.Time) Metrics {
	day := DateKey(now)
	byCat := CategoryTimes(ledger.Day(day), c)

	m := Metrics{
		Date:           day,
		ByCategory:     byCat,
		ProductiveTime: byCat[classify.Work] + byCat[classify.Learning],
		LearningTime:   byCat[classify.Learning],
		Goals:          goals,
	}
	for _, secs := range byCat {
		m.Total += secs
	}
	m.ProductiveProgress = GoalProgress(m.ProductiveTime, goals.ProductiveTime)
	m.LearningProgress = GoalProgress(m.LearningTime, goals.LearningTime)
	return m
}
