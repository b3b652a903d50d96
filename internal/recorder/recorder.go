package recorder

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/browser"
	"github.com/sadopc/tabtrackr/internal/notify"
)

const (
	DefaultTaskCheckInterval = 30 * time.Minute
	DefaultPruneInterval     = 24 * time.Hour

	queueSize       = 256
	shutdownTimeout = 5 * time.Second
)

var ErrStopped = errors.New("recorder stopped")

// Options configures a Recorder. Zero durations use the defaults.
type Options struct {
	TaskCheckInterval time.Duration
	PruneInterval     time.Duration
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Recorder turns browser events into visits and active time. Events are
// handled one at a time by Run; Submit may be called from any goroutine.
type Recorder struct {
	svc      *activity.Service
	notifier notify.Notifier
	tabs     *browser.Registry
	opts     Options

	events chan browser.Event

	// mu guards stopped. Submit sends under the read lock, so every send
	// that succeeds lands before shutdown takes the write lock and drains.
	mu       sync.RWMutex
	stopped  bool
	stopping chan struct{}
}

func New(svc *activity.Service, n notify.Notifier, opts Options) *Recorder {
	if opts.TaskCheckInterval <= 0 {
		opts.TaskCheckInterval = DefaultTaskCheckInterval
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = DefaultPruneInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Recorder{
		svc:      svc,
		notifier: n,
		tabs:     browser.NewRegistry(),
		opts:     opts,
		events:   make(chan browser.Event, queueSize),
		stopping: make(chan struct{}),
	}
}

// Submit queues events for the loop. It blocks while the queue is full.
// Once the recorder stops it returns ErrStopped; events it accepted before
// that are always handled.
func (r *Recorder) Submit(ctx context.Context, events ...browser.Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrStopped
	}
	for _, e := range events {
		select {
		case r.events <- e:
		case <-r.stopping:
			return ErrStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run prunes old visits, then handles events and timers until ctx is
// canceled. Queued events are drained and the running interval is credited
// before it returns.
func (r *Recorder) Run(ctx context.Context) error {
	r.prune(ctx)

	now := r.opts.Now()
	pruneTimer := time.NewTimer(activity.NextMidnight(now).Sub(now))
	defer pruneTimer.Stop()
	taskTicker := time.NewTicker(r.opts.TaskCheckInterval)
	defer taskTicker.Stop()

	var tr activity.Tracker
	for {
		select {
		case <-ctx.Done():
			r.shutdown(tr)
			return nil
		case e := <-r.events:
			tr = r.handle(ctx, tr, e, r.opts.Now())
		case <-pruneTimer.C:
			r.prune(ctx)
			pruneTimer.Reset(r.opts.PruneInterval)
		case <-taskTicker.C:
			if _, err := CheckIncompleteTasks(ctx, r.svc, r.notifier, r.opts.Now()); err != nil {
				log.Printf("check tasks: %v", err)
			}
		}
	}
}

func (r *Recorder) shutdown(tr activity.Tracker) {
	// Wake blocked senders, then wait for in-flight sends to finish.
	close(r.stopping)
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
drain:
	for {
		select {
		case e := <-r.events:
			tr = r.handle(ctx, tr, e, r.opts.Now())
		default:
			break drain
		}
	}
	now := r.opts.Now()
	_, iv := tr.Blur(now)
	r.credit(ctx, iv, now)
}

func (r *Recorder) prune(ctx context.Context) {
	res, err := r.svc.PruneWeekly(ctx, r.opts.Now())
	if err != nil {
		log.Printf("prune: %v", err)
		return
	}
	if res.VisitsRemoved > 0 || res.DaysRemoved > 0 {
		log.Printf("pruned %d visits and %d ledger days before %s",
			res.VisitsRemoved, res.DaysRemoved, res.WeekStart.Format("2006-01-02"))
	}
}
