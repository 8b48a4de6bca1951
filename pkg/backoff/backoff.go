// Package backoff provides exponential delay calculation for retry loops.
package backoff

import (
	"math"
	"time"
)

// Policy describes an exponential backoff curve. Zero values use defaults.
type Policy struct {
	Initial time.Duration // delay for the first retry (default: 100ms)
	Max     time.Duration // ceiling for any delay (default: 5s)
}

// Default returns the standard retry policy.
func Default() Policy {
	return Policy{Initial: 100 * time.Millisecond, Max: 5 * time.Second}
}

// Delay returns the wait before the given retry attempt.
// Attempt 1 returns Initial, attempt 2 doubles it, and so on up to Max.
func (p Policy) Delay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	ceiling := p.Max
	if ceiling <= 0 {
		ceiling = 5 * time.Second
	}

	if attempt < 1 {
		return initial
	}
	delay := float64(initial) * math.Pow(2.0, float64(attempt-1))
	if delay > float64(ceiling) {
		return ceiling
	}
	return time.Duration(delay)
}
