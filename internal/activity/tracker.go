package activity

import (
	"math"
	"time"
)

// Tracker is the active-tab state machine. The zero value is idle. Methods
// return the next state along with the interval owed to the tab that was
// being tracked, if any; the caller resolves that tab and credits the time.
type Tracker struct {
	TabID  int
	Active bool
	Start  time.Time
}

// Interval is active time owed to a tab.
type Interval struct {
	TabID   int
	Seconds int64
}

// Tracking reports whether a tab is being timed.
func (t Tracker) Tracking() bool {
	return t.Active && !t.Start.IsZero()
}

// Activate starts timing tabID, closing the interval of the previous tab.
// It covers both tab switches and a window gaining focus.
func (t Tracker) Activate(tabID int, now time.Time) (Tracker, *Interval) {
	iv := t.flush(now)
	return Tracker{TabID: tabID, Active: true, Start: now}, iv
}

// Navigate closes the running interval of the tracked tab and keeps timing
// it from now, so time spent before a navigation stays with the old page.
func (t Tracker) Navigate(now time.Time) (Tracker, *Interval) {
	iv := t.flush(now)
	if !t.Active {
		return t, iv
	}
	t.Start = now
	return t, iv
}

// Blur goes idle because no window has focus any more.
func (t Tracker) Blur(now time.Time) (Tracker, *Interval) {
	return Tracker{}, t.flush(now)
}

func (t Tracker) flush(now time.Time) *Interval {
	if !t.Tracking() {
		return nil
	}
	secs := int64(math.Round(now.Sub(t.Start).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return &Interval{TabID: t.TabID, Seconds: secs}
}
