// Package session implements the orchestration lifecycle for one AI
// retrieval analysis run: submit a job, track it by polling, relay the
// finished report into the ingestion service, and surface the outcome.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"insightrelay/internal/analysis"
	"insightrelay/internal/apperrors"
	"insightrelay/internal/dispatcher"
	"insightrelay/internal/observability"
	"insightrelay/internal/relay"
	"insightrelay/internal/timerange"
	"insightrelay/pkg/webhook"
)

// State is a session's position in the orchestration state machine.
//
//	input -> processing -> uploading -> closed
//
// with a single backward edge (processing|uploading -> input) on any
// failure, preserving the submitted query and range for resubmission.
// Cancellation from any non-terminal state leads to cancelled.
type State string

const (
	StateInput      State = "input"
	StateProcessing State = "processing"
	StateUploading  State = "uploading"
	StateClosed     State = "closed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateCancelled
}

// Submitter issues the job-creation call. The analysis client implements it.
type Submitter interface {
	CreateJob(ctx context.Context, req *analysis.CreateJobRequest) error
}

// Relayer runs the download-package-upload pipeline for a completed job.
type Relayer interface {
	Run(ctx context.Context, jobID string) (*relay.Descriptor, error)
}

// Request is the user's form state. It survives failures so a
// resubmission does not require re-entry.
type Request struct {
	Query       string          `json:"query"`
	Range       timerange.Range `json:"timeRange"`
	NeedSummary bool            `json:"needSummary"`
	SourceIDs   []string        `json:"sourceIds,omitempty"`
	CallbackURL string          `json:"callbackUrl,omitempty"`
	SigningKey  string          `json:"signingKey,omitempty"`
}

// Validate checks the request without side effects. No remote call is
// ever made for a request that fails validation.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return apperrors.Validation("query", "query is required")
	}
	return timerange.Validate(r.Range)
}

// Deps holds a session's collaborators. Dispatcher and Metrics may be nil.
type Deps struct {
	Submitter    Submitter
	Lister       JobLister
	Relayer      Relayer
	Dispatcher   dispatcher.Dispatcher
	Metrics      *observability.Metrics
	UserID       string
	PollInterval time.Duration
}

// Snapshot is a read-only view of a session for API responses.
type Snapshot struct {
	ID        string            `json:"id"`
	State     State             `json:"state"`
	Query     string            `json:"query"`
	Range     timerange.Range   `json:"timeRange"`
	Progress  int               `json:"progress"`
	JobID     string            `json:"jobId,omitempty"`
	Result    *relay.Descriptor `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Session is one run of the orchestration state machine. All state
// transitions are serialized through its mutex; the tracker timer is
// owned exclusively by the session and disposed on every exit path.
type Session struct {
	id     string
	deps   Deps
	req    Request
	events *EventBuilder
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	submitting bool // a job-creation call is in flight
	progress   int
	jobID      string
	result     *relay.Descriptor
	lastError  string
	tracker    *Tracker
	startedAt  time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a session in the input state.
func New(req Request, deps Deps) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	return &Session{
		id:        id,
		deps:      deps,
		req:       req,
		events:    NewEventBuilder(id),
		logger:    slog.With("component", "session", "sessionId", id),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateInput,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Submit validates the preserved form state and issues the job-creation
// call, transitioning input -> processing and starting the tracker.
// The submission fully completes before the first poll tick is
// scheduled, and at most one submission is in flight at a time; a
// concurrent Submit gets a conflict. On failure the session stays in
// input with the error recorded, ready for resubmission.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInput || s.submitting {
		s.mu.Unlock()
		return apperrors.Conflict("session", "session is not accepting submissions")
	}
	if err := s.req.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	// Mark the submission in flight before dropping the lock so a
	// concurrent Submit cannot pass the gate and create a second
	// remote job or a second tracker.
	s.submitting = true
	req := s.req
	s.mu.Unlock()

	err := s.deps.Submitter.CreateJob(ctx, &analysis.CreateJobRequest{
		Description: req.Query,
		TimeRange:   req.Range.Wire(),
		NeedSummary: req.NeedSummary,
		UserID:      s.deps.UserID,
		SourceIDs:   req.SourceIDs,
	})
	if err != nil {
		wrapped := apperrors.Submission(err)
		s.mu.Lock()
		s.submitting = false
		if s.state == StateInput {
			s.lastError = wrapped.Error()
			s.touch()
		}
		s.mu.Unlock()
		s.logger.Error("Job submission failed", "error", err)
		return wrapped
	}

	s.mu.Lock()
	s.submitting = false
	if s.state != StateInput {
		// Cancelled while the job-creation call was in flight. The
		// transition is discarded and no tracker is ever started.
		s.mu.Unlock()
		s.logger.Info("Submission discarded, session cancelled during job creation")
		return apperrors.Cancelled("session")
	}
	s.state = StateProcessing
	s.progress = 0
	s.lastError = ""
	s.startedAt = time.Now()
	s.tracker = NewTracker(s.deps.Lister, TrackerConfig{
		Query:       req.Query,
		Interval:    s.deps.PollInterval,
		OnProgress:  s.onProgress,
		OnCompleted: s.onCompleted,
		OnFailed:    s.onFailed,
	}, s.deps.Metrics)
	tracker := s.tracker
	s.touch()
	s.mu.Unlock()

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSessionStarted(ctx)
	}
	s.logger.Info("Session submitted", "query", req.Query, "timeRange", req.Range.Wire())

	tracker.Start()
	return nil
}

// Cancel stops the session from outside. The tracker timer is stopped
// immediately and no relay stage can start afterwards, even if a
// completion notification is already queued.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return apperrors.Conflict("session", "session already finished")
	}
	wasRunning := !s.startedAt.IsZero()
	started := s.startedAt
	if s.tracker != nil {
		s.tracker.Stop()
	}
	s.cancel()
	s.state = StateCancelled
	s.touch()
	s.mu.Unlock()

	if wasRunning && s.deps.Metrics != nil {
		s.deps.Metrics.RecordSessionFinished(context.Background(), false, time.Since(started).Seconds())
	}
	s.logger.Info("Session cancelled")
	s.notify(s.events.BuildCancelledEvent())
	return nil
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		ID:        s.id,
		State:     s.state,
		Query:     s.req.Query,
		Range:     s.req.Range,
		Progress:  s.progress,
		JobID:     s.jobID,
		Result:    s.result,
		Error:     s.lastError,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// onProgress records tracker progress. Progress is monotonically
// non-decreasing while processing; stale reads are ignored.
func (s *Session) onProgress(progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		return
	}
	if progress > s.progress {
		s.progress = progress
		s.touch()
	}
}

// onCompleted transitions processing -> uploading and runs the relay.
// A completion observed after cancellation or a previous terminal tick
// is ignored, so the relay runs at most once per job.
func (s *Session) onCompleted(jobID string) {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return
	}
	s.state = StateUploading
	s.jobID = jobID
	s.progress = 100
	s.touch()
	s.mu.Unlock()

	s.logger.Info("Job completed, starting relay", "jobId", jobID)
	s.runRelay(jobID)
}

// onFailed rolls the session back to input, preserving the form state.
func (s *Session) onFailed(reason string) {
	failure := apperrors.JobFailed(reason)

	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return
	}
	s.state = StateInput
	s.lastError = failure.Error()
	started := s.startedAt
	s.startedAt = time.Time{}
	s.touch()
	s.mu.Unlock()

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSessionFinished(context.Background(), false, time.Since(started).Seconds())
	}
	s.logger.Warn("Job failed", "reason", failure.Error())
	s.notify(s.events.BuildFailedEvent(failure.Error()))
}

// runRelay drives the uploading state to its outcome.
func (s *Session) runRelay(jobID string) {
	desc, err := s.deps.Relayer.Run(s.ctx, jobID)

	s.mu.Lock()
	if s.state != StateUploading {
		// Cancelled while relaying, outcome no longer matters.
		s.mu.Unlock()
		return
	}
	started := s.startedAt
	s.startedAt = time.Time{}

	if err != nil {
		s.state = StateInput
		s.lastError = err.Error()
		s.touch()
		s.mu.Unlock()

		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordSessionFinished(context.Background(), false, time.Since(started).Seconds())
		}
		s.logger.Error("Relay failed", "jobId", jobID, "error", err)
		s.notify(s.events.BuildFailedEvent(err.Error()))
		return
	}

	s.state = StateClosed
	s.result = desc
	s.lastError = ""
	s.touch()
	s.mu.Unlock()

	// Terminal state, release the session context.
	s.cancel()

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSessionFinished(context.Background(), true, time.Since(started).Seconds())
	}
	s.logger.Info("Session closed", "jobId", jobID, "artifact", desc.Name, "url", desc.URL)
	s.notify(s.events.BuildClosedEvent(desc.Name, desc.URL, desc.Type))
}

// notify dispatches an outcome event to the caller's callback URL.
func (s *Session) notify(event *webhook.Event) {
	if s.deps.Dispatcher == nil || s.req.CallbackURL == "" {
		return
	}
	if err := s.deps.Dispatcher.Dispatch(&dispatcher.Event{
		Payload:     event,
		Destination: s.req.CallbackURL,
		SigningKey:  s.req.SigningKey,
	}); err != nil {
		s.logger.Warn("Failed to dispatch session event", "type", event.Type, "error", err)
	}
}

// touch updates the modification timestamp. Callers hold the mutex.
func (s *Session) touch() {
	s.updatedAt = time.Now()
}
