package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"insightrelay/internal/analysis"
	"insightrelay/internal/observability"
)

// JobLister is the accessor the tracker polls. The analysis client
// implements it.
type JobLister interface {
	ListJobs(ctx context.Context, page, pageSize int) (*analysis.JobList, error)
}

// TrackerConfig wires a tracker to its session.
type TrackerConfig struct {
	Query    string        // submitted job description, the correlation key
	Interval time.Duration // tick cadence

	OnProgress  func(progress int)
	OnCompleted func(jobID string)
	OnFailed    func(reason string)
}

// Tracker polls the shared job collection on a fixed interval and
// correlates the most recent record to the submitted query.
//
// The backend returns no identifier at job creation, so correlation is
// by exact equality of the description field against the most recent
// record. That is a heuristic: another session may create a job with
// colliding text, and a mismatching record makes the tick a no-op.
//
// The tracker is an explicit cancellable handle. Stop is idempotent,
// releases the timer on every exit path, and no callback is started
// after the stop signal is observed. At most one tick is in flight at
// a time; a tick that fires while the previous one is still resolving
// is skipped.
type Tracker struct {
	lister  JobLister
	cfg     TrackerConfig
	logger  *slog.Logger
	metrics *observability.Metrics

	inFlight  atomic.Bool
	errStreak atomic.Int64 // consecutive failed fetches, for log context

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewTracker creates a tracker. metrics may be nil.
func NewTracker(lister JobLister, cfg TrackerConfig, metrics *observability.Metrics) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	return &Tracker{
		lister:  lister,
		cfg:     cfg,
		logger:  slog.With("component", "tracker", "query", cfg.Query),
		metrics: metrics,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins ticking. The first tick fires one interval after Start,
// so a caller that submits before starting is guaranteed the submission
// completed before the first poll.
func (t *Tracker) Start() {
	go t.run()
}

// Stop cancels the tracker. Safe to call multiple times and from
// callbacks; ticks already in flight observe the signal before
// invoking any further callback.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// Done is closed when the polling loop has exited.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

func (t *Tracker) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			// The select picks randomly when both channels are
			// ready, so re-check stop before spawning a tick.
			if t.stopped() {
				return
			}
			if t.inFlight.Load() {
				// Previous tick still resolving, skip this one.
				t.record(observability.TickSkipped)
				continue
			}
			t.inFlight.Store(true)
			go func() {
				defer t.inFlight.Store(false)
				t.tick()
			}()
		}
	}
}

// tick fetches the most recent job record and reports it if it
// correlates with the submitted query.
func (t *Tracker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.Interval*2)
	defer cancel()

	list, err := t.lister.ListJobs(ctx, 1, 1)
	if err != nil {
		// Transient: log, skip the tick, keep the loop alive.
		streak := t.errStreak.Add(1)
		t.logger.Warn("Poll fetch failed", "error", err, "consecutive", streak)
		t.record(observability.TickError)
		return
	}
	t.errStreak.Store(0)

	if len(list.Items) == 0 {
		t.record(observability.TickNoMatch)
		return
	}

	job := &list.Items[0]
	if !t.matches(job) {
		// Our job is not the most recent record (yet), or another
		// session's job shadows it. Nothing to do this tick.
		t.record(observability.TickNoMatch)
		return
	}
	t.record(observability.TickMatched)

	if t.stopped() {
		return
	}
	t.cfg.OnProgress(job.Progress)

	switch job.Status {
	case analysis.StatusCompleted:
		t.Stop()
		t.cfg.OnCompleted(job.ID)
	case analysis.StatusFailed:
		t.Stop()
		t.cfg.OnFailed(job.Error)
	}
}

// matches decides whether a polled record belongs to this session.
// Kept as the single correlation point so switching to a dedicated
// echoed token is a one-line change once the backend supports it.
func (t *Tracker) matches(job *analysis.Job) bool {
	return job.Description == t.cfg.Query
}

func (t *Tracker) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

func (t *Tracker) record(result string) {
	if t.metrics != nil {
		t.metrics.RecordPollTick(context.Background(), result)
	}
}
