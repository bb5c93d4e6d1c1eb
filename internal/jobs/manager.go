package jobs

import (
	"errors"
	"fmt"
	"sync"

	"live-translator/internal/domain"
)

// ErrNoRunningJob is returned when cancel is requested for idle state.
var ErrNoRunningJob = errors.New("no running job")

// Manager tracks the orchestrator stage of the current job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{
			Status: domain.JobStatusIdle,
		},
	}
}

// Arm moves the manager to debouncing; any in-flight job is forgotten.
func (m *Manager) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{Status: domain.JobStatusDebouncing}
}

// Start records a new job entering stage, superseding whatever ran before.
func (m *Manager) Start(jobID string, stage domain.JobStatus) error {
	if stage != domain.JobStatusDetecting && stage != domain.JobStatusTranslating {
		return fmt.Errorf("cannot start job in %s stage", stage)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = domain.Job{
		ID:     jobID,
		Status: stage,
	}
	return nil
}

// Transition validates and applies state transitions for current job.
func (m *Manager) Transition(status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && isRunning(status) {
		return fmt.Errorf("cannot transition without an active job")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	if status == domain.JobStatusIdle {
		m.current.ID = ""
	}
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears job metadata and returns manager to idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{Status: domain.JobStatusIdle}
}

// IsRunning reports whether a network stage is in progress.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// Cancel returns a debouncing or running job to idle.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status == domain.JobStatusIdle {
		return ErrNoRunningJob
	}
	m.current = domain.Job{Status: domain.JobStatusIdle}
	return nil
}

// isRunning checks if a status represents in-flight network work.
func isRunning(status domain.JobStatus) bool {
	switch status {
	case domain.JobStatusDetecting, domain.JobStatusTranslating:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed orchestrator state machine edges.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusIdle:
		return to == domain.JobStatusDebouncing
	case domain.JobStatusDebouncing:
		return to == domain.JobStatusIdle
	case domain.JobStatusDetecting:
		return to == domain.JobStatusTranslating || to == domain.JobStatusFailed || to == domain.JobStatusIdle
	case domain.JobStatusTranslating:
		return to == domain.JobStatusIdle || to == domain.JobStatusFailed
	case domain.JobStatusFailed:
		return to == domain.JobStatusIdle
	default:
		return false
	}
}
