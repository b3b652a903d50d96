package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/tabtrackr/internal/browser"
)

type fakeSink struct {
	mu     sync.Mutex
	events []browser.Event
	err    error
}

func (f *fakeSink) Submit(_ context.Context, events ...browser.Event) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostEvents(t *testing.T) {
	sink := &fakeSink{}
	srv := NewServer(sink)

	rec := post(t, srv.Handler(), `{"events":[
		{"type":"tab_activated","tabId":3,"windowId":1},
		{"type":"window_focus","windowId":-1}
	]}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["accepted"] != 2 {
		t.Fatalf("expected accepted=2, got %v", resp)
	}
	if len(sink.events) != 2 || sink.events[0].TabID != 3 || sink.events[1].WindowID != browser.WindowNone {
		t.Fatalf("unexpected forwarded events: %+v", sink.events)
	}
}

func TestPostEventsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"events":[`},
		{"not json", `hello`},
		{"unknown type", `{"events":[{"type":"tab_moved","tabId":1}]}`},
		{"missing tab", `{"events":[{"type":"tab_updated"}]}`},
	}
	for _, tt := range tests {
		sink := &fakeSink{}
		rec := post(t, NewServer(sink).Handler(), tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
		if len(sink.events) != 0 {
			t.Errorf("%s: nothing should be forwarded", tt.name)
		}
	}
}

func TestPostEventsEmptyBatch(t *testing.T) {
	rec := post(t, NewServer(&fakeSink{}).Handler(), `{"events":[]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestPostEventsSinkStopped(t *testing.T) {
	rec := post(t, NewServer(&fakeSink{err: errors.New("stopped")}).Handler(), `{"events":[{"type":"tab_removed","tabId":1}]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestEventsMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	NewServer(&fakeSink{}).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	NewServer(&fakeSink{}).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewServer(&fakeSink{}).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
