package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/store"
)

// Ledger holds active seconds per local date key and domain.
type Ledger map[string]map[string]int64

// Add credits secs to domain on day. Non-positive amounts are ignored.
func (l Ledger) Add(day, domain string, secs int64) {
	if secs <= 0 {
		return
	}
	if l[day] == nil {
		l[day] = make(map[string]int64)
	}
	l[day][domain] += secs
}

// Day returns the per-domain totals for day, never nil.
func (l Ledger) Day(day string) map[string]int64 {
	if d, ok := l[day]; ok {
		return d
	}
	return map[string]int64{}
}

// PruneBefore deletes every day that sorts before day and returns how many
// were removed. Date keys sort chronologically.
func (l Ledger) PruneBefore(day string) int {
	n := 0
	for k := range l {
		if k < day {
			delete(l, k)
			n++
		}
	}
	return n
}

// Ledger loads the persisted time ledger.
func (s *Service) Ledger(ctx context.Context) (Ledger, error) {
	ledger := Ledger{}
	if err := load(ctx, s.kv, store.KeySiteTimeData, &ledger); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}

// AddTime credits secs of active time to domain on now's date and persists
// the ledger immediately.
func (s *Service) AddTime(ctx context.Context, domain string, secs int64, now time.Time) error {
	if secs <= 0 {
		return nil
	}
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return err
	}
	ledger.Add(DateKey(now), domain, secs)
	if err := s.kv.Set(ctx, map[string]any{store.KeySiteTimeData: ledger}); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// CategoryTimes folds one day of the ledger into seconds per category. All
// three categories are present in the result.
func CategoryTimes(day map[string]int64, c classify.Classifier) map[classify.Category]int64 {
	out := make(map[classify.Category]int64, len(classify.Categories))
	for _, cat := range classify.Categories {
		out[cat] = 0
	}
	for domain, secs := range day {
		out[c.Classify(domain)] += secs
	}
	return out
}
