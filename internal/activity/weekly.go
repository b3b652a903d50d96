package activity

import (
	"math"
	"time"

	"github.com/sadopc/tabtrackr/internal/classify"
)

// WeekStats aggregates the rolling seven-day window.
type WeekStats struct {
	TotalVisits int
	ByCategory  map[classify.Category]int
	ByDay       map[string][]VisitRecord
	// Days lists the ByDay keys in the order their first visit arrived.
	Days []string
}

// CategoryShare is one row of the category breakdown.
type CategoryShare struct {
	Category classify.Category
	Count    int
	Percent  int
}

// AnalyzeWeek groups the visits of the last seven days by category and by
// day. Categories are recomputed from each visit's domain. Visits keep their
// arrival order within a day.
func AnalyzeWeek(visits []VisitRecord, c classify.Classifier, now time.Time) WeekStats {
	week := Week(visits, now)
	stats := WeekStats{
		TotalVisits: len(week),
		ByCategory:  map[classify.Category]int{},
		ByDay:       map[string][]VisitRecord{},
	}
	for _, v := range week {
		stats.ByCategory[c.Classify(v.Domain)]++

		day := DateKey(v.Timestamp)
		if _, ok := stats.ByDay[day]; !ok {
			stats.Days = append(stats.Days, day)
		}
		stats.ByDay[day] = append(stats.ByDay[day], v)
	}
	return stats
}

// Breakdown returns the share of each category present in the stats, as a
// percentage of the summed category counts.
func (w WeekStats) Breakdown() []CategoryShare {
	total := 0
	for _, n := range w.ByCategory {
		total += n
	}
	var out []CategoryShare
	for _, cat := range classify.Categories {
		n, ok := w.ByCategory[cat]
		if !ok {
			continue
		}
		out = append(out, CategoryShare{
			Category: cat,
			Count:    n,
			Percent:  Percent(int64(n), int64(total)),
		})
	}
	return out
}

// Percent returns part/total as a rounded whole percentage, or 0 when total
// is not positive.
func Percent(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
