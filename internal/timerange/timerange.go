// Package timerange validates analysis date ranges against domain rules.
package timerange

import (
	"fmt"
	"time"

	"insightrelay/internal/apperrors"
)

// MaxSpanDays is the longest allowed range, an inclusive day-count
// approximation of three months.
const MaxSpanDays = 93

// Range is a closed date interval for an analysis job.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks a range against domain rules. Pure, no side effects.
func Validate(r Range) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return apperrors.Validation("timeRange", "start and end are required")
	}
	if r.Start.After(r.End) {
		return apperrors.Validation("timeRange", "start must not be after end")
	}
	if SpanDays(r) > MaxSpanDays {
		return apperrors.Validation("timeRange", fmt.Sprintf("range exceeds %d days", MaxSpanDays))
	}
	return nil
}

// SpanDays returns the inclusive day count covered by the range.
// A single-day range (start == end) spans one day.
func SpanDays(r Range) int {
	start := r.Start.Truncate(24 * time.Hour)
	end := r.End.Truncate(24 * time.Hour)
	return int(end.Sub(start).Hours()/24) + 1
}

// Wire formats the range the way the analysis backend expects:
// "YYYY-MM-DD,YYYY-MM-DD".
func (r Range) Wire() string {
	return r.Start.Format(time.DateOnly) + "," + r.End.Format(time.DateOnly)
}
