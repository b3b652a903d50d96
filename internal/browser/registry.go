package browser

import (
	"errors"
	"fmt"
)

var ErrNoTab = errors.New("no such tab")

// Tab is the last known state of a browser tab.
type Tab struct {
	ID       int
	WindowID int
	URL      string
	Title    string
}

// Registry mirrors the open tabs and the active tab of each window from the
// events it is fed. It stands in for the browser's own tab queries and is
// owned by a single goroutine.
type Registry struct {
	tabs   map[int]Tab
	active map[int]int // window id -> tab id
}

func NewRegistry() *Registry {
	return &Registry{
		tabs:   make(map[int]Tab),
		active: make(map[int]int),
	}
}

// Update merges the state carried by a tab_updated event and returns the
// tab as it was before. Empty fields leave the known value unchanged.
func (r *Registry) Update(t Tab) (prev Tab, known bool) {
	prev, known = r.tabs[t.ID]
	next := prev
	next.ID = t.ID
	if t.WindowID != 0 {
		next.WindowID = t.WindowID
	}
	if t.URL != "" {
		next.URL = t.URL
	}
	if t.Title != "" {
		next.Title = t.Title
	}
	r.tabs[t.ID] = next
	return prev, known
}

// Activate records tabID as the active tab of windowID. Unknown tabs are
// registered with no URL until an update arrives.
func (r *Registry) Activate(windowID, tabID int) {
	t := r.tabs[tabID]
	t.ID = tabID
	if windowID != 0 {
		t.WindowID = windowID
	}
	r.tabs[tabID] = t
	r.active[t.WindowID] = tabID
}

// Remove forgets a closed tab.
func (r *Registry) Remove(tabID int) (Tab, bool) {
	t, ok := r.tabs[tabID]
	if !ok {
		return Tab{}, false
	}
	delete(r.tabs, tabID)
	if r.active[t.WindowID] == tabID {
		delete(r.active, t.WindowID)
	}
	return t, true
}

// Get resolves a tab by id.
func (r *Registry) Get(tabID int) (Tab, error) {
	t, ok := r.tabs[tabID]
	if !ok {
		return Tab{}, fmt.Errorf("tab %d: %w", tabID, ErrNoTab)
	}
	return t, nil
}

// ActiveTab returns the active tab of windowID.
func (r *Registry) ActiveTab(windowID int) (Tab, error) {
	id, ok := r.active[windowID]
	if !ok {
		return Tab{}, fmt.Errorf("window %d: %w", windowID, ErrNoTab)
	}
	return r.Get(id)
}

// Len returns the number of known tabs.
func (r *Registry) Len() int {
	return len(r.tabs)
}
