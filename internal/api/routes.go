package api

import (
	"net/http"

	"insightrelay/internal/health"
	"insightrelay/internal/observability"
	"insightrelay/internal/session"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Sessions      *session.Manager
	Metrics       *observability.Metrics
	HealthChecker *health.Checker
	APIKey        string
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg RouterConfig) http.Handler {
	handler := NewHandler(cfg.Sessions, cfg.HealthChecker)

	mux := http.NewServeMux()

	// Health check endpoints (liveness/readiness probes) - no auth required
	mux.HandleFunc("GET /livez", handler.Livez)
	mux.HandleFunc("GET /readyz", handler.Readyz)

	// Session and job endpoints - auth required
	authMiddleware := AuthMiddleware(cfg.APIKey)
	mux.Handle("POST /v1/sessions", authMiddleware(http.HandlerFunc(handler.CreateSession)))
	mux.Handle("GET /v1/sessions", authMiddleware(http.HandlerFunc(handler.ListSessions)))
	mux.Handle("GET /v1/sessions/{sessionId}", authMiddleware(http.HandlerFunc(handler.GetSession)))
	mux.Handle("DELETE /v1/sessions/{sessionId}", authMiddleware(http.HandlerFunc(handler.CancelSession)))
	mux.Handle("POST /v1/sessions/{sessionId}/submit", authMiddleware(http.HandlerFunc(handler.ResubmitSession)))
	mux.Handle("GET /v1/jobs/recent", authMiddleware(http.HandlerFunc(handler.RecentJobs)))

	// Apply middleware chain (order matters: outermost first)
	var h http.Handler = mux
	h = ContentTypeMiddleware()(h)
	h = CORSMiddleware()(h)
	if cfg.Metrics != nil {
		h = MetricsMiddleware(cfg.Metrics)(h)
	}
	h = LoggingMiddleware()(h)
	h = RecoveryMiddleware()(h)

	return h
}
