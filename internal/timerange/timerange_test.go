package timerange

import (
	"errors"
	"testing"
	"time"

	"insightrelay/internal/apperrors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{
			name:    "zero range",
			r:       Range{},
			wantErr: true,
		},
		{
			name:    "missing end",
			r:       Range{Start: date(2024, 1, 1)},
			wantErr: true,
		},
		{
			name:    "missing start",
			r:       Range{End: date(2024, 1, 31)},
			wantErr: true,
		},
		{
			name:    "start after end",
			r:       Range{Start: date(2024, 2, 1), End: date(2024, 1, 1)},
			wantErr: true,
		},
		{
			name: "single day",
			r:    Range{Start: date(2024, 1, 1), End: date(2024, 1, 1)},
		},
		{
			name: "thirty one days",
			r:    Range{Start: date(2024, 1, 1), End: date(2024, 1, 31)},
		},
		{
			name: "exactly ninety three days",
			r:    Range{Start: date(2024, 1, 1), End: date(2024, 4, 2)},
		},
		{
			name:    "ninety four days",
			r:       Range{Start: date(2024, 1, 1), End: date(2024, 4, 3)},
			wantErr: true,
		},
		{
			name:    "five months",
			r:       Range{Start: date(2024, 1, 1), End: date(2024, 6, 1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSpanDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    Range
		want int
	}{
		{"single day", Range{Start: date(2024, 1, 1), End: date(2024, 1, 1)}, 1},
		{"january", Range{Start: date(2024, 1, 1), End: date(2024, 1, 31)}, 31},
		{"leap february", Range{Start: date(2024, 2, 1), End: date(2024, 2, 29)}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SpanDays(tt.r); got != tt.want {
				t.Errorf("SpanDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWire(t *testing.T) {
	t.Parallel()
	r := Range{Start: date(2024, 1, 1), End: date(2024, 1, 31)}
	if got := r.Wire(); got != "2024-01-01,2024-01-31" {
		t.Errorf("Wire() = %q", got)
	}
}
