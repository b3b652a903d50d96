package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
)

type jsonExport struct {
	ExportedAt string `json:"exported_at"`
	VisitCount int    `json:"visit_count"`
	TaskCount  int    `json:"task_count"`
	activity.Snapshot
}

// WriteJSON writes every collection of the snapshot as one indented
// document, using the storage key names.
func WriteJSON(out io.Writer, snap activity.Snapshot, now time.Time) error {
	if snap.Visits == nil {
		snap.Visits = []activity.VisitRecord{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []activity.Task{}
	}
	if snap.Ledger == nil {
		snap.Ledger = activity.Ledger{}
	}
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		VisitCount: len(snap.Visits),
		TaskCount:  len(snap.Tasks),
		Snapshot:   snap,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ToJSON writes the snapshot to a file at path.
func ToJSON(snap activity.Snapshot, path string, now time.Time) error {
	return toFile(path, func(w io.Writer) error { return WriteJSON(w, snap, now) })
}
