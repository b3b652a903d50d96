package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

// Well-known keys.
const (
	KeyVisitedSites = "visitedSites"
	KeySiteTimeData = "siteTimeData"
	KeyTasks        = "tasks"
	KeyGoals        = "goals"
	KeyTabActivity  = "tabActivity"
)

type kvRow struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt string `db:"updated_at"`
}

// Entry describes one stored document.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Get returns the raw JSON stored under each requested key. Keys that were
// never set are absent from the result.
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT key, value, updated_at FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var rows []kvRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get %v: %w", keys, err)
	}
	for _, r := range rows {
		out[r.Key] = json.RawMessage(r.Value)
	}
	return out, nil
}

// Set marshals every value to JSON and writes all of them in one
// transaction, replacing whatever was stored under the same keys.
func (s *Store) Set(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %q: %w", key, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(data), now,
		)
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// Entries lists the stored documents ordered by key.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	var rows []kvRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value, updated_at FROM kv`); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{Key: r.Key, Size: len(r.Value)}
		e.UpdatedAt, _ = time.Parse(time.RFC3339, r.UpdatedAt)
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
