package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"insightrelay/internal/analysis"
	"insightrelay/internal/apperrors"
)

// Manager is the registry of orchestration sessions exposed through
// the API. Each session owns its own tracker; the manager only routes
// operations and tears everything down on shutdown.
type Manager struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // creation order, for stable listing
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		logger:   slog.With("component", "session-manager"),
		sessions: make(map[string]*Session),
	}
}

// Create validates the request, registers a new session and submits it.
// Validation failures return before any remote call; submission
// failures unregister the session again since nothing started.
func (m *Manager) Create(ctx context.Context, req Request) (*Snapshot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s := New(req, m.deps)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.order = append(m.order, s.ID())
	m.mu.Unlock()

	if err := s.Submit(ctx); err != nil {
		m.remove(s.ID())
		return nil, err
	}
	return s.Snapshot(), nil
}

// Resubmit re-runs a session that rolled back to input after a
// failure, using its preserved query and date range.
func (m *Manager) Resubmit(ctx context.Context, id string) (*Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	if err := s.Submit(ctx); err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (*Snapshot, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// List returns snapshots of all sessions in creation order.
func (m *Manager) List() []*Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]*Snapshot, 0, len(m.order))
	for _, id := range m.order {
		if s, ok := m.sessions[id]; ok {
			snapshots = append(snapshots, s.Snapshot())
		}
	}
	return snapshots
}

// Cancel cancels one session.
func (m *Manager) Cancel(id string) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}
	return s.Cancel()
}

// RecentJobs proxies the backend's job collection for read-only
// progress rendering. It drives no session state.
func (m *Manager) RecentJobs(ctx context.Context, page, pageSize int) (*analysis.JobList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return m.deps.Lister.ListJobs(ctx, page, pageSize)
}

// Shutdown cancels every open session so no timer outlives the service.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	for _, s := range open {
		if err := s.Cancel(); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			m.logger.Warn("Failed to cancel session on shutdown", "sessionId", s.ID(), "error", err)
		}
	}
}

func (m *Manager) session(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	return s, nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	// Release the unregistered session's context.
	if ok {
		s.cancel()
	}
}
