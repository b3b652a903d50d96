package activity

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/tabtrackr/internal/store"
)

var internalSchemes = []string{"chrome", "edge", "about"}

// TrackableHost returns the lower-cased hostname of rawURL, or false when the
// URL does not parse, has no host, or uses an internal browser scheme.
func TrackableHost(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	for _, p := range internalSchemes {
		if strings.HasPrefix(scheme, p) {
			return "", false
		}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return host, true
}

// Visits returns the whole visit log in arrival order.
func (s *Service) Visits(ctx context.Context) ([]VisitRecord, error) {
	var visits []VisitRecord
	if err := load(ctx, s.kv, store.KeyVisitedSites, &visits); err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}
	return visits, nil
}

// RecordVisit appends a visit for a completed navigation. URLs that cannot be
// tracked, including the new-tab page, are dropped and a nil record is
// returned without error.
func (s *Service) RecordVisit(ctx context.Context, rawURL, title string, now time.Time) (*VisitRecord, error) {
	host, ok := TrackableHost(rawURL)
	if !ok || host == "newtab" {
		return nil, nil
	}

	visits, err := s.Visits(ctx)
	if err != nil {
		return nil, err
	}

	rec := VisitRecord{
		URL:       rawURL,
		Title:     title,
		Timestamp: now,
		Domain:    host,
		Category:  s.opts.Classifier.Classify(host),
	}
	visits = append(visits, rec)
	if err := s.kv.Set(ctx, map[string]any{store.KeyVisitedSites: visits}); err != nil {
		return nil, fmt.Errorf("save visits: %w", err)
	}
	return &rec, nil
}

// PruneResult reports what a weekly sweep removed.
type PruneResult struct {
	WeekStart     time.Time
	VisitsRemoved int
	DaysRemoved   int
}

// PruneWeekly drops visits older than the start of the current week and,
// unless the ledger is kept forever, ledger days before that date.
// Running it twice is the same as running it once.
func (s *Service) PruneWeekly(ctx context.Context, now time.Time) (PruneResult, error) {
	res := PruneResult{WeekStart: WeekStart(now)}

	visits, err := s.Visits(ctx)
	if err != nil {
		return res, err
	}
	kept := PruneVisits(visits, res.WeekStart)
	res.VisitsRemoved = len(visits) - len(kept)

	updates := map[string]any{store.KeyVisitedSites: kept}

	if !s.opts.KeepLedger {
		ledger, err := s.Ledger(ctx)
		if err != nil {
			return res, err
		}
		res.DaysRemoved = ledger.PruneBefore(DateKey(res.WeekStart))
		if res.DaysRemoved > 0 {
			updates[store.KeySiteTimeData] = ledger
		}
	}

	if err := s.kv.Set(ctx, updates); err != nil {
		return res, fmt.Errorf("save pruned data: %w", err)
	}
	return res, nil
}

// PruneVisits keeps the records stamped at or after weekStart.
func PruneVisits(visits []VisitRecord, weekStart time.Time) []VisitRecord {
	kept := make([]VisitRecord, 0, len(visits))
	for _, v := range visits {
		if !v.Timestamp.Before(weekStart) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Today returns the visits made on now's local date, newest first.
func Today(visits []VisitRecord, now time.Time) []VisitRecord {
	today := DateKey(now)
	var out []VisitRecord
	for _, v := range visits {
		if DateKey(v.Timestamp) == today {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Week returns the visits from the rolling seven days ending at now, in
// arrival order. This window differs from the Monday-anchored pruning window.
func Week(visits []VisitRecord, now time.Time) []VisitRecord {
	cutoff := now.Add(-7 * 24 * time.Hour)
	var out []VisitRecord
	for _, v := range visits {
		if v.Timestamp.After(cutoff) {
			out = append(out, v)
		}
	}
	return out
}
