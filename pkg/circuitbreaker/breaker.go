// Package circuitbreaker implements the circuit breaker pattern.
//
// A breaker tracks consecutive failures against a resource and blocks
// further attempts once a threshold is crossed, until a cooldown allows
// a probe request through.
package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the state of a circuit breaker.
type State int

const (
	Closed   State = iota // normal operation, requests allowed
	Open                  // failing, requests blocked until cooldown
	HalfOpen              // probing whether the resource recovered
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds configuration for a circuit breaker.
type Config struct {
	Threshold int           // consecutive failures before opening (default: 5)
	Cooldown  time.Duration // wait before a half-open probe (default: 30s)
}

// Breaker guards a single resource.
type Breaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	openUntil time.Time
	threshold int
	cooldown  time.Duration
}

// New creates a circuit breaker.
func New(cfg Config) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{
		state:     Closed,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
	}
}

// Allow reports whether a request should be attempted now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Now().After(b.openUntil) {
			b.state = HalfOpen
			return true
		}
		return false
	default:
		// Closed always passes; HalfOpen lets the probe through.
		return true
	}
}

// RecordSuccess resets the breaker after a successful request.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = Closed
}

// RecordFailure registers a failed request, opening the breaker once
// the threshold is reached or a half-open probe fails.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == HalfOpen || b.failures >= b.threshold {
		b.state = Open
		b.openUntil = time.Now().Add(b.cooldown)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset forces the breaker back to closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.failures = 0
}
