// Package driver implements the session driver (spec C6): the entry
// point that initializes an AnalysisState, runs the workflow state
// machine to completion either blocking or step-streamed, and exposes
// per-session cancellation. It owns no workflow logic of its own — all
// state transitions live in pkg/workflow; this package only manages the
// session lifecycle around one Machine.Run call.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/dataq/pkg/workflow"
)

// Status is the lifecycle status of a driver-managed session, distinct
// from AnalysisState.CurrentStep (which names the workflow node).
type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusTimedOut   Status = "timed_out"
)

// Session wraps one AnalysisState with the bookkeeping the driver and
// its HTTP front-end need: current status, timestamps, and the cancel
// function bound to the run's context.
type Session struct {
	mu sync.RWMutex

	id         string
	state      *workflow.AnalysisState
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
	cancelFunc context.CancelFunc
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Status returns the current lifecycle status (thread-safe).
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) setCancelFunc(cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()
}

// Cancel requests cancellation of the session's in-flight run. It is a
// no-op (returns false) once the run has already terminated.
func (s *Session) Cancel() bool {
	s.mu.RLock()
	cancel := s.cancelFunc
	status := s.status
	s.mu.RUnlock()

	if cancel == nil || terminal(status) {
		return false
	}
	cancel()
	return true
}

// Snapshot returns a shallow copy of the session's current view: status
// plus the AnalysisState pointer. The state itself is only mutated by
// the single goroutine running its Machine.Run, so a reader observing
// it between node transitions sees a consistent (if possibly stale)
// picture — the same race-free contract the spec's single-threaded
// scheduling model relies on.
type Snapshot struct {
	ID        string
	Status    Status
	State     *workflow.AnalysisState
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:        s.id,
		Status:    s.status,
		State:     s.state,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func terminal(s Status) bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	default:
		return false
	}
}

// ErrSessionNotFound is returned by Manager.Get/Cancel for an unknown ID.
var ErrSessionNotFound = fmt.Errorf("session not found")

// StepEvent is one {step, state_delta} record emitted in streaming mode,
// matching spec C6's Session Driver streaming contract.
type StepEvent struct {
	SessionID string
	Step      string
	State     Snapshot
}
