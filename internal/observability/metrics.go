package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Poll tick results for the poll_ticks_total counter.
const (
	TickMatched = "matched"
	TickNoMatch = "nomatch"
	TickError   = "error"
	TickSkipped = "skipped"
)

// Metrics holds all application metrics implementing the golden 4 signals:
// - Latency: How long requests/sessions take
// - Traffic: Request/session throughput
// - Errors: Rate of failures
// - Saturation: Resource utilization (open sessions, dispatcher queue)
type Metrics struct {
	meter metric.Meter

	// HTTP metrics (Latency, Traffic, Errors)
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPErrorsTotal     metric.Int64Counter

	// Session metrics (Latency, Traffic, Errors, Saturation)
	SessionDuration    metric.Float64Histogram
	SessionsTotal      metric.Int64Counter
	SessionErrorsTotal metric.Int64Counter
	SessionsActive     metric.Int64UpDownCounter

	// Poll tracker metrics (Traffic, Errors)
	PollTicksTotal metric.Int64Counter

	// Relay metrics (Latency, Errors)
	RelayStageDuration metric.Float64Histogram

	// Dispatcher metrics (Latency, Traffic, Errors, Saturation)
	DispatcherDuration  metric.Float64Histogram
	DispatcherDelivered metric.Int64Counter
	DispatcherFailed    metric.Int64Counter
	DispatcherDropped   metric.Int64Counter
	DispatcherRequeued  metric.Int64Counter
	DispatcherQueueSize metric.Int64Gauge
}

// NewMetrics creates and registers all metrics with a Prometheus exporter.
func NewMetrics(ctx context.Context) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("insightrelay")
	m := &Metrics{meter: meter}

	// HTTP metrics
	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPErrorsTotal, err = meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of HTTP errors (4xx and 5xx)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Session metrics
	m.SessionDuration, err = meter.Float64Histogram(
		"session_duration_seconds",
		metric.WithDescription("Orchestration session duration from submit to terminal state"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600, 900, 1800),
	)
	if err != nil {
		return nil, nil, err
	}

	m.SessionsTotal, err = meter.Int64Counter(
		"sessions_total",
		metric.WithDescription("Total number of orchestration sessions started"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.SessionErrorsTotal, err = meter.Int64Counter(
		"session_errors_total",
		metric.WithDescription("Total number of sessions that hit a terminal failure"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.SessionsActive, err = meter.Int64UpDownCounter(
		"sessions_active",
		metric.WithDescription("Number of currently open sessions (saturation)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Poll tracker metrics
	m.PollTicksTotal, err = meter.Int64Counter(
		"poll_ticks_total",
		metric.WithDescription("Total poll ticks by result (matched, nomatch, error, skipped)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Relay metrics
	m.RelayStageDuration, err = meter.Float64Histogram(
		"relay_stage_duration_seconds",
		metric.WithDescription("Relay pipeline stage latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, nil, err
	}

	// Dispatcher metrics
	m.DispatcherDuration, err = meter.Float64Histogram(
		"dispatcher_duration_seconds",
		metric.WithDescription("Callback delivery latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DispatcherDelivered, err = meter.Int64Counter(
		"dispatcher_delivered_total",
		metric.WithDescription("Total events successfully delivered"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DispatcherFailed, err = meter.Int64Counter(
		"dispatcher_failed_total",
		metric.WithDescription("Total events failed after retries"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DispatcherDropped, err = meter.Int64Counter(
		"dispatcher_dropped_total",
		metric.WithDescription("Total events dropped (buffer full or max requeues)"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DispatcherRequeued, err = meter.Int64Counter(
		"dispatcher_requeued_total",
		metric.WithDescription("Total events requeued due to open circuit"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DispatcherQueueSize, err = meter.Int64Gauge(
		"dispatcher_queue_size",
		metric.WithDescription("Current number of events in dispatcher queue (saturation)"),
	)
	if err != nil {
		return nil, nil, err
	}

	return m, promhttp.Handler(), nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(statusCode),
	)

	m.HTTPRequestDuration.Record(ctx, durationSeconds, attrs)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)

	if statusCode >= 400 {
		m.HTTPErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordSessionStarted records a session entering processing.
func (m *Metrics) RecordSessionStarted(ctx context.Context) {
	m.SessionsTotal.Add(ctx, 1)
	m.SessionsActive.Add(ctx, 1)
}

// RecordSessionFinished records a session reaching a terminal state.
func (m *Metrics) RecordSessionFinished(ctx context.Context, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(successAttr(success))
	m.SessionDuration.Record(ctx, durationSeconds, attrs)
	m.SessionsActive.Add(ctx, -1)

	if !success {
		m.SessionErrorsTotal.Add(ctx, 1)
	}
}

// RecordPollTick records one tracker tick by result.
func (m *Metrics) RecordPollTick(ctx context.Context, result string) {
	m.PollTicksTotal.Add(ctx, 1, metric.WithAttributes(resultAttr(result)))
}

// RecordRelayStage records a relay pipeline stage outcome with its duration.
func (m *Metrics) RecordRelayStage(ctx context.Context, stage string, success bool, durationSeconds float64) {
	m.RelayStageDuration.Record(ctx, durationSeconds, metric.WithAttributes(stageAttr(stage), successAttr(success)))
}

// RecordDispatcherDelivered records a successful event delivery with its duration.
func (m *Metrics) RecordDispatcherDelivered(ctx context.Context, durationSeconds float64) {
	m.DispatcherDelivered.Add(ctx, 1)
	m.DispatcherDuration.Record(ctx, durationSeconds)
}

// RecordDispatcherFailed records a failed event delivery.
func (m *Metrics) RecordDispatcherFailed(ctx context.Context) {
	m.DispatcherFailed.Add(ctx, 1)
}

// RecordDispatcherDropped records a dropped event.
func (m *Metrics) RecordDispatcherDropped(ctx context.Context) {
	m.DispatcherDropped.Add(ctx, 1)
}

// RecordDispatcherRequeued records a requeued event.
func (m *Metrics) RecordDispatcherRequeued(ctx context.Context) {
	m.DispatcherRequeued.Add(ctx, 1)
}

// RecordDispatcherQueueSize records the current queue size.
func (m *Metrics) RecordDispatcherQueueSize(ctx context.Context, size int64) {
	m.DispatcherQueueSize.Record(ctx, size)
}
