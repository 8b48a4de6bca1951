package observability

import (
	"context"
	"testing"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, handler, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	if metrics == nil {
		t.Fatal("Expected metrics to be non-nil")
	}

	if handler == nil {
		t.Fatal("Expected handler to be non-nil")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, _, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/livez", 200, 0.001)
	metrics.RecordHTTPRequest(ctx, "POST", "/v1/sessions", 202, 0.050)
	metrics.RecordHTTPRequest(ctx, "GET", "/v1/sessions/abc123", 200, 0.010)
	metrics.RecordHTTPRequest(ctx, "DELETE", "/v1/sessions/abc123", 409, 0.005)
	metrics.RecordHTTPRequest(ctx, "POST", "/v1/sessions", 500, 0.001)
}

func TestRecordSessionMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, _, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	// Should not panic
	metrics.RecordSessionStarted(ctx)
	metrics.RecordSessionFinished(ctx, true, 42.0)
	metrics.RecordSessionStarted(ctx)
	metrics.RecordSessionFinished(ctx, false, 5.0)
	metrics.RecordPollTick(ctx, TickMatched)
	metrics.RecordPollTick(ctx, TickNoMatch)
	metrics.RecordPollTick(ctx, TickError)
	metrics.RecordPollTick(ctx, TickSkipped)
	metrics.RecordRelayStage(ctx, "download", true, 0.5)
	metrics.RecordRelayStage(ctx, "upload", false, 1.5)
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"/livez", "/livez"},
		{"/metrics", "/metrics"},
		{"/v1/sessions", "/v1/sessions"},
		{"/v1/sessions/abc123", "/v1/sessions/{sessionId}"},
		{"/v1/sessions/xyz-789-def", "/v1/sessions/{sessionId}"},
		{"/other/path", "/other/path"},
	}

	for _, tt := range tests {
		result := normalizePath(tt.input)
		if result != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
