package recorder

import (
	"context"
	"log"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/browser"
)

// handle applies one event and returns the next tracker state.
func (r *Recorder) handle(ctx context.Context, tr activity.Tracker, e browser.Event, now time.Time) activity.Tracker {
	switch e.Type {
	case browser.TabUpdated:
		return r.tabUpdated(ctx, tr, e, now)
	case browser.TabActivated:
		r.tabs.Activate(e.WindowID, e.TabID)
		next, iv := tr.Activate(e.TabID, now)
		r.credit(ctx, iv, now)
		return next
	case browser.WindowFocus:
		return r.windowFocus(ctx, tr, e.WindowID, now)
	case browser.TabRemoved:
		if tr.Tracking() && tr.TabID == e.TabID {
			var iv *activity.Interval
			tr, iv = tr.Blur(now)
			r.credit(ctx, iv, now)
		}
		r.tabs.Remove(e.TabID)
		return tr
	default:
		log.Printf("ignoring event of type %q", e.Type)
		return tr
	}
}

func (r *Recorder) tabUpdated(ctx context.Context, tr activity.Tracker, e browser.Event, now time.Time) activity.Tracker {
	prev, known := r.tabs.Update(browser.Tab{ID: e.TabID, WindowID: e.WindowID, URL: e.URL, Title: e.Title})

	// Time spent on the previous site stays with it when the tracked tab
	// navigates to another host.
	if known && tr.Tracking() && tr.TabID == e.TabID && e.URL != "" && hostChanged(prev.URL, e.URL) {
		var iv *activity.Interval
		tr, iv = tr.Navigate(now)
		if iv != nil {
			r.creditURL(ctx, prev.URL, iv.Seconds, now)
		}
	}

	if e.Status == browser.StatusComplete && e.URL != "" {
		tab, _ := r.tabs.Get(e.TabID)
		if _, err := r.svc.RecordVisit(ctx, tab.URL, tab.Title, now); err != nil {
			log.Printf("record visit: %v", err)
		}
	}
	return tr
}

func (r *Recorder) windowFocus(ctx context.Context, tr activity.Tracker, windowID int, now time.Time) activity.Tracker {
	if windowID == browser.WindowNone {
		next, iv := tr.Blur(now)
		r.credit(ctx, iv, now)
		return next
	}
	tab, err := r.tabs.ActiveTab(windowID)
	if err != nil {
		return tr
	}
	next, iv := tr.Activate(tab.ID, now)
	r.credit(ctx, iv, now)
	return next
}

// credit resolves the tab an interval is owed to and adds the time to its
// current domain. Closed tabs and internal pages are skipped.
func (r *Recorder) credit(ctx context.Context, iv *activity.Interval, now time.Time) {
	if iv == nil {
		return
	}
	tab, err := r.tabs.Get(iv.TabID)
	if err != nil {
		return
	}
	r.creditURL(ctx, tab.URL, iv.Seconds, now)
}

func (r *Recorder) creditURL(ctx context.Context, rawURL string, secs int64, now time.Time) {
	host, ok := activity.TrackableHost(rawURL)
	if !ok {
		return
	}
	if err := r.svc.AddTime(ctx, host, secs, now); err != nil {
		log.Printf("add time for %s: %v", host, err)
	}
}

func hostChanged(before, after string) bool {
	a, _ := activity.TrackableHost(before)
	b, _ := activity.TrackableHost(after)
	return a != b
}
