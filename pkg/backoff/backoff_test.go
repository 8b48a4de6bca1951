package backoff

import (
	"testing"
	"time"
)

func TestDelayDefaults(t *testing.T) {
	t.Parallel()

	p := Default()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1600 * time.Millisecond},
		{6, 3200 * time.Millisecond},
		{7, 5 * time.Second}, // capped at max
		{8, 5 * time.Second}, // capped at max
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelayCustomPolicy(t *testing.T) {
	t.Parallel()

	p := Policy{Initial: 50 * time.Millisecond, Max: 500 * time.Millisecond}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 50 * time.Millisecond},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{5, 500 * time.Millisecond}, // capped at max
		{6, 500 * time.Millisecond}, // capped at max
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelayZeroOrNegativeAttempt(t *testing.T) {
	t.Parallel()

	// Attempts < 1 return the initial delay
	var p Policy
	if got := p.Delay(0); got != 100*time.Millisecond {
		t.Errorf("Delay(0) = %v, want 100ms", got)
	}
	if got := p.Delay(-1); got != 100*time.Millisecond {
		t.Errorf("Delay(-1) = %v, want 100ms", got)
	}
}

func TestDelayPartialPolicy(t *testing.T) {
	t.Parallel()

	// Only Initial set, Max uses default
	p := Policy{Initial: 200 * time.Millisecond}
	if got := p.Delay(1); got != 200*time.Millisecond {
		t.Errorf("Delay(1) = %v, want 200ms", got)
	}
	if got := p.Delay(6); got != 5*time.Second {
		t.Errorf("Delay(6) = %v, want 5s (default max)", got)
	}

	// Only Max set, Initial uses default
	p = Policy{Max: 300 * time.Millisecond}
	if got := p.Delay(3); got != 300*time.Millisecond {
		t.Errorf("Delay(3) = %v, want 300ms (capped)", got)
	}
}
