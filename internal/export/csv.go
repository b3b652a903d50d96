package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
)

// WriteVisitsCSV writes the visit log, one row per visit.
func WriteVisitsCSV(out io.Writer, visits []activity.VisitRecord) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"Timestamp", "Date", "Domain", "Category", "Title", "URL"}); err != nil {
		return err
	}
	for _, v := range visits {
		row := []string{
			v.Timestamp.Local().Format(time.RFC3339),
			activity.DateKey(v.Timestamp),
			v.Domain,
			string(v.Category),
			v.Title,
			v.URL,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteLedgerCSV writes the time ledger, one row per day and domain, sorted
// by date then domain.
func WriteLedgerCSV(out io.Writer, ledger activity.Ledger, c classify.Classifier) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"Date", "Domain", "Category", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	days := make([]string, 0, len(ledger))
	for day := range ledger {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		domains := make([]string, 0, len(ledger[day]))
		for d := range ledger[day] {
			domains = append(domains, d)
		}
		sort.Strings(domains)

		for _, d := range domains {
			secs := ledger[day][d]
			row := []string{
				day,
				d,
				string(c.Classify(d)),
				fmt.Sprintf("%d", secs),
				formatDuration(secs),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// VisitsToCSV writes the visit log to a file at path.
func VisitsToCSV(visits []activity.VisitRecord, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteVisitsCSV(w, visits) })
}

// LedgerToCSV writes the time ledger to a file at path.
func LedgerToCSV(ledger activity.Ledger, c classify.Classifier, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteLedgerCSV(w, ledger, c) })
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
