package authclient

import (
	"sync"
	"time"
)

// AuthState is the three-way lifecycle state of the client's authentication
// knowledge. StateInitializing exists solely so guards can hold a neutral
// decision until storage has been consulted.
type AuthState string

const (
	StateInitializing    AuthState = "initializing"
	StateAuthenticated   AuthState = "authenticated"
	StateUnauthenticated AuthState = "unauthenticated"
)

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*SessionStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *SessionStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineLogger overrides the logger used for transition logging.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *SessionStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithStateListener registers a listener at construction time.
func WithStateListener(listener StateListener) StateMachineOption {
	return func(sm *SessionStateMachine) {
		if listener != nil {
			sm.listeners[sm.nextID] = listener
			sm.nextID++
		}
	}
}

// SessionStateMachine is the authoritative in-memory session state. All
// mutation goes through Transition; the transport and the client never write
// state directly, so there is a single source of truth.
type SessionStateMachine struct {
	mu          sync.RWMutex
	state       AuthState
	session     *Session
	changedAt   time.Time
	transitions map[AuthState]map[AuthState]struct{}
	listeners   map[int]StateListener
	nextID      int
	now         func() time.Time
	logger      Logger
}

// NewSessionStateMachine returns a machine in StateInitializing.
func NewSessionStateMachine(opts ...StateMachineOption) *SessionStateMachine {
	sm := &SessionStateMachine{
		state: StateInitializing,
		transitions: map[AuthState]map[AuthState]struct{}{
			StateInitializing: {
				StateAuthenticated:   {},
				StateUnauthenticated: {},
			},
			StateUnauthenticated: {
				StateAuthenticated: {},
			},
			StateAuthenticated: {
				StateUnauthenticated: {},
			},
		},
		listeners: map[int]StateListener{},
		now:       time.Now,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// Current returns the current state.
func (sm *SessionStateMachine) Current() AuthState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// CurrentSession returns a copy of the active session, or nil when the state
// is not StateAuthenticated.
func (sm *SessionStateMachine) CurrentSession() *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.session == nil {
		return nil
	}
	copied := *sm.session
	return &copied
}

// ChangedAt returns the time of the last state change, zero before the first
// transition.
func (sm *SessionStateMachine) ChangedAt() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.changedAt
}

// Subscribe registers a listener for state changes and returns a cancel
// function. Listeners fire only on an actual change; a repeated demotion to
// StateUnauthenticated is silent, which is what keeps concurrent 401
// remediation idempotent from a subscriber's point of view.
func (sm *SessionStateMachine) Subscribe(listener StateListener) func() {
	if listener == nil {
		return func() {}
	}

	sm.mu.Lock()
	id := sm.nextID
	sm.nextID++
	sm.listeners[id] = listener
	sm.mu.Unlock()

	return func() {
		sm.mu.Lock()
		delete(sm.listeners, id)
		sm.mu.Unlock()
	}
}

// Transition moves the machine to target. Entering StateAuthenticated
// requires a session; every other state drops it. Transitioning to the
// current state is a no-op.
func (sm *SessionStateMachine) Transition(target AuthState, session *Session) error {
	sm.mu.Lock()

	from := sm.state
	if target == "" {
		sm.mu.Unlock()
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "target state is empty",
		})
	}

	if from == target {
		sm.mu.Unlock()
		return nil
	}

	if !sm.canTransition(from, target) {
		sm.mu.Unlock()
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(target),
		})
	}

	var snapshot *Session
	if target == StateAuthenticated {
		if session == nil {
			sm.mu.Unlock()
			return ErrInvalidTransition.WithMetadata(map[string]any{
				"from":   string(from),
				"to":     string(target),
				"reason": "authenticated state requires a session",
			})
		}
		copied := *session
		sm.session = &copied
		external := copied
		snapshot = &external
	} else {
		sm.session = nil
	}

	sm.state = target
	sm.changedAt = sm.now()

	listeners := make([]StateListener, 0, len(sm.listeners))
	for _, listener := range sm.listeners {
		listeners = append(listeners, listener)
	}
	sm.mu.Unlock()

	sm.logger.Debug("session state %s -> %s", from, target)

	for _, listener := range listeners {
		listener(from, target, snapshot)
	}

	return nil
}

func (sm *SessionStateMachine) canTransition(from, to AuthState) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
