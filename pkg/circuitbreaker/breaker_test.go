package circuitbreaker

import (
	"testing"
	"time"
)

func TestNewWithZeroValues(t *testing.T) {
	t.Parallel()
	// Zero values should use defaults
	b := New(Config{})

	// With the default threshold of 5, four failures keep it closed
	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	if b.State() != Closed {
		t.Error("expected closed state after 4 failures (default threshold is 5)")
	}

	b.RecordFailure()
	if b.State() != Open {
		t.Error("expected open state after 5 failures")
	}
}

func TestClosedState(t *testing.T) {
	t.Parallel()
	b := New(Config{Threshold: 3, Cooldown: 100 * time.Millisecond})

	if !b.Allow() {
		t.Error("expected Allow() to return true in closed state")
	}

	b.RecordSuccess()
	if b.State() != Closed {
		t.Errorf("expected closed state, got %s", b.State())
	}
}

func TestOpensAfterThreshold(t *testing.T) {
	t.Parallel()
	b := New(Config{Threshold: 3, Cooldown: 100 * time.Millisecond})

	b.RecordFailure()
	b.RecordFailure()
	if b.State() != Closed {
		t.Error("expected closed state before threshold")
	}

	b.RecordFailure()
	if b.State() != Open {
		t.Errorf("expected open state after threshold, got %s", b.State())
	}
	if b.Allow() {
		t.Error("expected Allow() to return false when open")
	}
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	t.Parallel()
	b := New(Config{Threshold: 2, Cooldown: 50 * time.Millisecond})

	b.RecordFailure()
	b.RecordFailure()
	if b.State() != Open {
		t.Fatal("expected open state")
	}
	if b.Allow() {
		t.Error("expected Allow() to return false before cooldown")
	}

	time.Sleep(60 * time.Millisecond)

	if !b.Allow() {
		t.Error("expected Allow() to return true after cooldown (half-open)")
	}
	if b.State() != HalfOpen {
		t.Errorf("expected half-open state, got %s", b.State())
	}
}

func TestHalfOpenProbe(t *testing.T) {
	t.Parallel()
	b := New(Config{Threshold: 2, Cooldown: 30 * time.Millisecond})

	b.RecordFailure()
	b.RecordFailure()
	time.Sleep(40 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected half-open probe to be allowed")
	}

	// A failed probe reopens the circuit immediately
	b.RecordFailure()
	if b.State() != Open {
		t.Errorf("expected open state after failed probe, got %s", b.State())
	}
	if b.Allow() {
		t.Error("expected Allow() to return false after failed probe")
	}
}

func TestRecoveryAfterSuccess(t *testing.T) {
	t.Parallel()
	b := New(Config{Threshold: 2, Cooldown: 30 * time.Millisecond})

	b.RecordFailure()
	b.RecordFailure()
	time.Sleep(40 * time.Millisecond)
	b.Allow()

	b.RecordSuccess()
	if b.State() != Closed {
		t.Errorf("expected closed state after successful probe, got %s", b.State())
	}
	if b.Failures() != 0 {
		t.Errorf("expected failure count reset, got %d", b.Failures())
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry(Config{Threshold: 2, Cooldown: time.Minute})

	a := r.Get("host-a")
	if a != r.Get("host-a") {
		t.Error("expected the same breaker for the same key")
	}
	if a == r.Get("host-b") {
		t.Error("expected distinct breakers for distinct keys")
	}

	a.RecordFailure()
	a.RecordFailure()

	stats := r.Stats()
	if stats.Total != 2 {
		t.Errorf("expected 2 breakers, got %d", stats.Total)
	}
	if stats.Open != 1 {
		t.Errorf("expected 1 open breaker, got %d", stats.Open)
	}
	if stats.Closed != 1 {
		t.Errorf("expected 1 closed breaker, got %d", stats.Closed)
	}
}
