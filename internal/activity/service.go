package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/store"
)

// Options configures a Service.
type Options struct {
	Classifier classify.Classifier
	// KeepLedger disables pruning of the time ledger. By default ledger days
	// before the current week are dropped together with old visits.
	KeepLedger bool
}

// Service reads and writes the activity collections. Every write is a
// read-modify-write of the whole collection with no locking; concurrent
// writers race and the last one wins.
type Service struct {
	kv   Storage
	opts Options
}

func New(kv Storage, opts Options) *Service {
	if opts.Classifier.Work == nil && opts.Classifier.Learning == nil {
		opts.Classifier = classify.Default
	}
	return &Service{kv: kv, opts: opts}
}

// Classifier returns the classifier the service tags visits with.
func (s *Service) Classifier() classify.Classifier {
	return s.opts.Classifier
}

// load decodes the document stored under key into dst. A missing or null
// document leaves dst untouched.
func load(ctx context.Context, kv Storage, key string, dst any) error {
	docs, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	return decode(docs, key, dst)
}

func decode(docs map[string]json.RawMessage, key string, dst any) error {
	raw, ok := docs[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Snapshot reads every collection in a single storage call.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Ledger: Ledger{}, Goals: DefaultGoals()}
	docs, err := s.kv.Get(ctx, store.KeyVisitedSites, store.KeySiteTimeData, store.KeyTasks, store.KeyGoals)
	if err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if err := decode(docs, store.KeyVisitedSites, &snap.Visits); err != nil {
		return snap, err
	}
	if err := decode(docs, store.KeySiteTimeData, &snap.Ledger); err != nil {
		return snap, err
	}
	if err := decode(docs, store.KeyTasks, &snap.Tasks); err != nil {
		return snap, err
	}
	if err := decode(docs, store.KeyGoals, &snap.Goals); err != nil {
		return snap, err
	}
	return snap, nil
}
