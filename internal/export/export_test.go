package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
)

var now = time.Date(2026, time.October, 21, 15, 0, 0, 0, time.Local)

func sampleSnapshot() activity.Snapshot {
	return activity.Snapshot{
		Visits: []activity.VisitRecord{
			{URL: "https://github.com/sadopc", Title: "sadopc", Timestamp: now.Add(-time.Hour), Domain: "github.com", Category: classify.Work},
			{URL: "https://dev.to/x", Title: "x", Timestamp: now, Domain: "dev.to", Category: classify.Learning},
		},
		Ledger: activity.Ledger{
			"2026-10-21": {"github.com": 3600, "dev.to": 90},
			"2026-10-20": {"news.example": 61},
		},
		Tasks: []activity.Task{
			{ID: now.UnixMilli(), Name: "Write report", Category: "Work", CreatedAt: now},
		},
		Goals: activity.DefaultGoals(),
	}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestWriteVisitsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVisitsCSV(&buf, sampleSnapshot().Visits); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, buf.String())

	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}
	expectedHeader := []string{"Timestamp", "Date", "Domain", "Category", "Title", "URL"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[1] != "2026-10-21" || row[2] != "github.com" || row[3] != "Work" || row[5] != "https://github.com/sadopc" {
		t.Fatalf("unexpected row: %v", row)
	}
	if _, err := time.Parse(time.RFC3339, row[0]); err != nil {
		t.Fatalf("timestamp is not RFC3339: %q", row[0])
	}
}

func TestWriteVisitsCSVSpecialCharacters(t *testing.T) {
	visits := []activity.VisitRecord{
		{URL: "https://a.example/?q=1,2", Title: `title with "quotes" and, commas`, Timestamp: now, Domain: "a.example", Category: classify.Other},
	}
	var buf bytes.Buffer
	if err := WriteVisitsCSV(&buf, visits); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, buf.String())
	if records[1][4] != `title with "quotes" and, commas` {
		t.Fatalf("title mangled: %q", records[1][4])
	}
	if records[1][5] != "https://a.example/?q=1,2" {
		t.Fatalf("url mangled: %q", records[1][5])
	}
}

func TestVisitsToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := VisitsToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if records := readCSV(t, string(data)); len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestVisitsToCSVBadPath(t *testing.T) {
	if err := VisitsToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, sampleSnapshot().Ledger, classify.Default); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, buf.String())
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}

	// Sorted by date, then domain.
	if records[1][0] != "2026-10-20" || records[1][1] != "news.example" || records[1][2] != "Other" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][1] != "dev.to" || records[2][2] != "Learning" || records[2][4] != "00:01:30" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
	if records[3][1] != "github.com" || records[3][3] != "3600" || records[3][4] != "01:00:00" {
		t.Fatalf("unexpected third row: %v", records[3])
	}
}

func TestLedgerToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := LedgerToCSV(activity.Ledger{}, classify.Default, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleSnapshot(), path, now); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.VisitCount != 2 || result.TaskCount != 1 {
		t.Fatalf("unexpected counts: %d visits, %d tasks", result.VisitCount, result.TaskCount)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	if len(result.Visits) != 2 || result.Visits[0].Domain != "github.com" {
		t.Fatalf("unexpected visits: %+v", result.Visits)
	}
	if result.Ledger["2026-10-21"]["github.com"] != 3600 {
		t.Fatalf("unexpected ledger: %v", result.Ledger)
	}
	if result.Tasks[0].Name != "Write report" || result.Goals != activity.DefaultGoals() {
		t.Fatalf("unexpected tasks or goals: %+v", result)
	}
}

func TestWriteJSONUsesStorageKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, activity.Snapshot{}, now); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, key := range []string{`"visitedSites": []`, `"siteTimeData": {}`, `"tasks": []`, `"goals"`, `"productiveTime"`} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %s in output", key)
		}
	}
	if !strings.Contains(out, "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(activity.Snapshot{}, "/nonexistent/dir/file.json", now); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
