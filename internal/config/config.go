// Package config provides configuration loading from environment variables.
package config

import (
	"time"
)

// ServiceConfig holds configuration for the relay service.
type ServiceConfig struct {
	Port              string
	MetricsPort       string
	APIKey            string        // bearer token required by our own API, empty disables auth
	AnalysisBaseURL   string        // base URL of the analysis backend
	IngestBaseURL     string        // base URL of the ingestion service
	BackendToken      string        // bearer token for both remote services
	UserID            string        // user identity sent with job creation
	PollInterval      time.Duration // tracker tick cadence
	RemoteTimeout     time.Duration // per-request timeout for remote calls
	ShutdownDrainWait time.Duration // time to wait for load balancer to drain (0 to skip)
}

// LoadServiceConfig loads service configuration from environment variables.
func LoadServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:              GetEnv("PORT", "8080"),
		MetricsPort:       GetEnv("METRICS_PORT", "9090"),
		APIKey:            GetSecretFile(GetEnv("API_KEY_FILE", "")),
		AnalysisBaseURL:   GetEnv("ANALYSIS_BASE_URL", "http://localhost:8000"),
		IngestBaseURL:     GetEnv("INGEST_BASE_URL", "http://localhost:8100"),
		BackendToken:      GetSecretFile(GetEnv("BACKEND_TOKEN_FILE", "")),
		UserID:            GetEnv("ANALYSIS_USER_ID", "admin"),
		PollInterval:      GetDurationEnv("POLL_INTERVAL", 3*time.Second),
		RemoteTimeout:     GetDurationEnv("REMOTE_TIMEOUT", 30*time.Second),
		ShutdownDrainWait: GetDurationEnv("SHUTDOWN_DRAIN_WAIT", 5*time.Second),
	}
}
