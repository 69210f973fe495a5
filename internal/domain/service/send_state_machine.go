package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SendState represents the discrete states of a single send operation.
type SendState string

const (
	SendStateIdle         SendState = "idle"          // Preconditions not yet checked
	SendStateUserAppended SendState = "user_appended" // User message appended to the log
	SendStateProcessing   SendState = "processing"    // Iterating attached agents
	SendStateDone         SendState = "done"          // All agents processed
	SendStateFailed       SendState = "failed"        // Aborted on first agent failure
)

// validSendTransitions defines the allowed state transitions.
// Key = from state, value = set of allowed target states.
var validSendTransitions = map[SendState]map[SendState]bool{
	SendStateIdle: {
		SendStateUserAppended: true,
	},
	SendStateUserAppended: {
		SendStateProcessing: true,
		SendStateDone:       true, // Conversation with no attached agents
	},
	SendStateProcessing: {
		SendStateDone:   true,
		SendStateFailed: true,
	},
	// Terminal states, no transitions out
	SendStateDone:   {},
	SendStateFailed: {},
}

// SendSnapshot captures a send operation's progress at a point in time.
type SendSnapshot struct {
	State           SendState     `json:"state"`
	AgentsProcessed int           `json:"agents_processed"`
	AgentsSkipped   int           `json:"agents_skipped"`
	Elapsed         time.Duration `json:"elapsed"`
	LastAgent       string        `json:"last_agent,omitempty"`
}

// SendStateMachine tracks a single send operation through
// Idle → UserAppended → Processing → Done|Failed. Thread-safe so the
// HTTP layer can poll progress while the send runs.
type SendStateMachine struct {
	mu              sync.RWMutex
	state           SendState
	agentsProcessed int
	agentsSkipped   int
	lastAgent       string
	startTime       time.Time
	logger          *zap.Logger
}

// NewSendStateMachine creates a state machine starting in Idle.
func NewSendStateMachine(logger *zap.Logger) *SendStateMachine {
	return &SendStateMachine{
		state:     SendStateIdle,
		startTime: time.Now(),
		logger:    logger,
	}
}

// State returns the current state.
func (sm *SendStateMachine) State() SendState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// Snapshot returns a copy of the current progress.
func (sm *SendStateMachine) Snapshot() SendSnapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return SendSnapshot{
		State:           sm.state,
		AgentsProcessed: sm.agentsProcessed,
		AgentsSkipped:   sm.agentsSkipped,
		Elapsed:         time.Since(sm.startTime),
		LastAgent:       sm.lastAgent,
	}
}

// Transition attempts to move to a new state.
// Returns an error if the transition is not allowed.
func (sm *SendStateMachine) Transition(to SendState) error {
	sm.mu.Lock()
	from := sm.state

	allowed, ok := validSendTransitions[from]
	if !ok || !allowed[to] {
		sm.mu.Unlock()
		err := fmt.Errorf("invalid send state transition: %s -> %s", from, to)
		sm.logger.Error("Send state machine violation", zap.Error(err))
		return err
	}

	sm.state = to
	sm.mu.Unlock()

	sm.logger.Debug("Send state transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

// RecordAgent records a completed per-agent model call.
func (sm *SendStateMachine) RecordAgent(agentID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.agentsProcessed++
	sm.lastAgent = agentID
}

// RecordSkip records an attached agent id that no longer resolves.
func (sm *SendStateMachine) RecordSkip() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.agentsSkipped++
}

// IsTerminal returns true once the send has finished or failed.
func (sm *SendStateMachine) IsTerminal() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	switch sm.state {
	case SendStateDone, SendStateFailed:
		return true
	}
	return false
}
