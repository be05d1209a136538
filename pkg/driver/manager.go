package driver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/dataq/pkg/workflow"
)

// Manager tracks sessions in memory for the lifetime of the process,
// mirroring the in-memory session registry pattern used elsewhere in
// this codebase's request-handling layer.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// New creates and registers a fresh session for projectID, returning it
// with a freshly initialized AnalysisState at the welcome node.
func (m *Manager) New(projectID string) *Session {
	id := uuid.New().String()
	now := time.Now()
	sess := &Session{
		id:        id,
		state:     workflow.NewAnalysisState(id, projectID),
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	return sess
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns a snapshot of every tracked session.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.Snapshot())
	}
	return out
}

// Cancel requests cancellation of a tracked session's in-flight run.
func (m *Manager) Cancel(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	if !sess.Cancel() {
		return nil
	}
	return nil
}

// Remove deletes a terminated session from the registry. Callers
// should not call this on a still-running session; doing so only drops
// the Manager's reference, it does not cancel the run.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
