package browser

import (
	"errors"
	"fmt"
)

// EventType names a tab or window lifecycle notification.
type EventType string

const (
	TabUpdated   EventType = "tab_updated"
	TabActivated EventType = "tab_activated"
	TabRemoved   EventType = "tab_removed"
	WindowFocus  EventType = "window_focus"
)

// WindowNone is the window id reported when no browser window has focus.
const WindowNone = -1

// StatusComplete marks a tab_updated event for a finished page load.
const StatusComplete = "complete"

var ErrInvalidEvent = errors.New("invalid event")

// Event is one notification forwarded by the browser shim. For tab events
// URL, Title and Status carry the tab's state after the change.
type Event struct {
	Type     EventType `json:"type"`
	TabID    int       `json:"tabId,omitempty"`
	WindowID int       `json:"windowId,omitempty"`
	URL      string    `json:"url,omitempty"`
	Title    string    `json:"title,omitempty"`
	Status   string    `json:"status,omitempty"`
}

// Batch is the body of a POST /events request.
type Batch struct {
	Events []Event `json:"events"`
}

// Validate checks that the event names a known type and carries the ids
// that type needs.
func (e Event) Validate() error {
	switch e.Type {
	case TabUpdated, TabActivated, TabRemoved:
		if e.TabID <= 0 {
			return fmt.Errorf("%w: %s without tabId", ErrInvalidEvent, e.Type)
		}
	case WindowFocus:
		if e.WindowID == 0 {
			return fmt.Errorf("%w: window_focus without windowId", ErrInvalidEvent)
		}
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidEvent)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// Validate checks every event of the batch.
func (b Batch) Validate() error {
	for i, e := range b.Events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}
