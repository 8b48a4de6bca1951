package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"insightrelay/internal/analysis"
	"insightrelay/internal/testutil"
)

// slowLister blocks each call for a fixed duration and tracks the
// number of concurrently executing calls.
type slowLister struct {
	delay      time.Duration
	inFlight   atomic.Int64
	maxSeen    atomic.Int64
	totalCalls atomic.Int64
}

func (s *slowLister) ListJobs(ctx context.Context, page, pageSize int) (*analysis.JobList, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if current <= seen || s.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}
	s.totalCalls.Add(1)

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return &analysis.JobList{}, nil
}

func TestTrackerSkipsOverlappingTicks(t *testing.T) {
	lister := &slowLister{delay: 80 * time.Millisecond}
	tracker := NewTracker(lister, TrackerConfig{
		Query:       "q",
		Interval:    10 * time.Millisecond,
		OnProgress:  func(int) {},
		OnCompleted: func(string) {},
		OnFailed:    func(string) {},
	}, nil)

	tracker.Start()
	defer tracker.Stop()

	testutil.MustWaitFor(t, func() bool { return lister.totalCalls.Load() >= 3 })

	if got := lister.maxSeen.Load(); got != 1 {
		t.Errorf("expected at most one fetch in flight, saw %d", got)
	}
}

func TestTrackerStopReleasesLoop(t *testing.T) {
	lister := &fakeLister{script: []listReply{
		singleJob("q", analysis.StatusProcessing, 10, ""),
	}}
	tracker := NewTracker(lister, TrackerConfig{
		Query:       "q",
		Interval:    5 * time.Millisecond,
		OnProgress:  func(int) {},
		OnCompleted: func(string) {},
		OnFailed:    func(string) {},
	}, nil)

	tracker.Start()
	testutil.MustWaitFor(t, func() bool { return lister.callCount() >= 1 })

	tracker.Stop()
	tracker.Stop() // idempotent

	select {
	case <-tracker.Done():
	case <-time.After(time.Second):
		t.Fatal("polling loop did not exit after Stop")
	}
}

func TestTrackerNoCallbackAfterStop(t *testing.T) {
	release := make(chan struct{})
	lister := &gatedLister{release: release, job: analysis.Job{
		ID:          "job-1",
		Description: "q",
		Status:      analysis.StatusCompleted,
		Progress:    100,
	}}

	var callbacks atomic.Int64
	tracker := NewTracker(lister, TrackerConfig{
		Query:       "q",
		Interval:    5 * time.Millisecond,
		OnProgress:  func(int) { callbacks.Add(1) },
		OnCompleted: func(string) { callbacks.Add(1) },
		OnFailed:    func(string) { callbacks.Add(1) },
	}, nil)

	tracker.Start()
	testutil.MustWaitFor(t, func() bool { return lister.started.Load() })

	// Stop while the fetch is mid flight, then let it resolve.
	tracker.Stop()
	close(release)

	<-tracker.Done()
	time.Sleep(30 * time.Millisecond)

	if got := callbacks.Load(); got != 0 {
		t.Errorf("expected no callbacks after Stop, got %d", got)
	}
}

func TestTrackerFirstTickWaitsOneInterval(t *testing.T) {
	lister := &fakeLister{}
	tracker := NewTracker(lister, TrackerConfig{
		Query:       "q",
		Interval:    60 * time.Millisecond,
		OnProgress:  func(int) {},
		OnCompleted: func(string) {},
		OnFailed:    func(string) {},
	}, nil)

	tracker.Start()
	defer tracker.Stop()

	time.Sleep(20 * time.Millisecond)
	if got := lister.callCount(); got != 0 {
		t.Errorf("expected no fetch before the first interval elapsed, got %d", got)
	}
	testutil.MustWaitFor(t, func() bool { return lister.callCount() >= 1 })
}

func TestTrackerDefaultInterval(t *testing.T) {
	tracker := NewTracker(&fakeLister{}, TrackerConfig{Query: "q"}, nil)
	if got := tracker.cfg.Interval; got != 3*time.Second {
		t.Errorf("expected 3s default interval, got %s", got)
	}
}

// gatedLister blocks its first call until released.
type gatedLister struct {
	release <-chan struct{}
	job     analysis.Job
	started atomic.Bool
}

func (g *gatedLister) ListJobs(ctx context.Context, page, pageSize int) (*analysis.JobList, error) {
	g.started.Store(true)
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return &analysis.JobList{Items: []analysis.Job{g.job}, Total: 1}, nil
}
