package authclient

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Option customizes SessionClient construction.
type Option func(*SessionClient)

// WithLogger overrides the client logger.
func WithLogger(logger Logger) Option {
	return func(c *SessionClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStateMachine injects a shared state machine, so guards and controllers
// built before the client can observe the same state.
func WithStateMachine(machine *SessionStateMachine) Option {
	return func(c *SessionClient) {
		if machine != nil {
			c.machine = machine
		}
	}
}

// WithBackend wires the backend API client.
func WithBackend(backend Backend) Option {
	return func(c *SessionClient) {
		if backend != nil {
			c.backend = backend
		}
	}
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func WithActivitySink(sink ActivitySink) Option {
	return func(c *SessionClient) {
		c.activitySink = normalizeActivitySink(sink)
	}
}

// SessionClient drives the authentication lifecycle. It is the sole writer
// of both the SessionStore and the state machine; the transport reaches both
// through it so remediation uses the same transition path as everything else.
type SessionClient struct {
	backend      Backend
	store        SessionStore
	machine      *SessionStateMachine
	logger       Logger
	activitySink ActivitySink

	mu      sync.Mutex
	pending bool
}

// New builds a SessionClient around the given store.
func New(store SessionStore, opts ...Option) *SessionClient {
	c := &SessionClient{
		store:        store,
		machine:      NewSessionStateMachine(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// NewFromConfig wires the full stack: client, authenticated HTTP transport,
// and backend API client against cfg's base URL.
func NewFromConfig(cfg Config, store SessionStore, opts ...Option) *SessionClient {
	c := New(store, opts...)

	timeout := time.Duration(cfg.GetRequestTimeout()) * time.Second
	httpClient := NewHTTPClient(c, timeout)
	transport, ok := httpClient.Transport.(*AuthTransport)
	if ok && cfg.GetAuthScheme() != "" {
		transport.Scheme = cfg.GetAuthScheme()
	}

	c.backend = NewHTTPBackend(cfg, httpClient)
	return c
}

// Backend returns the wired backend API client, nil when not configured.
func (c *SessionClient) Backend() Backend {
	return c.backend
}

// StateMachine exposes the machine for guards and controllers.
func (c *SessionClient) StateMachine() *SessionStateMachine {
	return c.machine
}

// Current returns the current auth state.
func (c *SessionClient) Current() AuthState {
	return c.machine.Current()
}

// CurrentSession returns a copy of the active session, nil when not
// authenticated.
func (c *SessionClient) CurrentSession() *Session {
	return c.machine.CurrentSession()
}

// Token returns the active session token, empty when not authenticated.
// Implements TokenSource for the transport.
func (c *SessionClient) Token() string {
	if session := c.machine.CurrentSession(); session != nil {
		return session.Token
	}
	return ""
}

// Subscribe registers a state listener, returning a cancel function.
func (c *SessionClient) Subscribe(listener StateListener) func() {
	return c.machine.Subscribe(listener)
}

// Initialize restores the persisted session, if any. It never fails: a
// broken or incomplete store reads as "not logged in". No protected render
// decision should be trusted before this returns.
func (c *SessionClient) Initialize(ctx context.Context) AuthState {
	session, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("session restore failed, treating as absent: %v", err)
		session = nil
	}

	if session != nil {
		if verr := session.Validate(); verr != nil {
			c.logger.Warn("stored session is incomplete, discarding: %v", verr)
			// keep storage consistent with the unauthenticated state
			if cerr := c.store.Clear(ctx); cerr != nil {
				c.logger.Error("session store clear failed: %v", cerr)
			}
			session = nil
		}
	}

	if session == nil {
		if err := c.machine.Transition(StateUnauthenticated, nil); err != nil {
			c.logger.Error("initialize transition error: %v", err)
		}
		return c.machine.Current()
	}

	if err := c.machine.Transition(StateAuthenticated, session); err != nil {
		c.logger.Error("initialize transition error: %v", err)
	} else {
		c.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventSessionRestored,
			UserID:    session.User.ID,
			Username:  session.User.Username,
		})
	}

	return c.machine.Current()
}

// Login authenticates against the backend and, on a complete identity,
// persists the session before promoting the state.
func (c *SessionClient) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, wrapValidationError(err, "invalid login payload")
	}

	if c.backend == nil {
		return nil, ErrNoBackend
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	result, err := c.backend.Login(ctx, creds)
	if err != nil {
		c.logger.Error("login request failed: %v", err)
		logErrorDetails(c.logger, "login", err)
		c.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Username:  creds.Username,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	session, err := c.adoptSession(ctx, "login", result)
	if err != nil {
		c.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Username:  creds.Username,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	c.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    session.User.ID,
		Username:  session.User.Username,
	})

	return session, nil
}

// Register creates an account and adopts the returned session under the same
// contract as Login. Password confirmation is checked before any network
// call.
func (c *SessionClient) Register(ctx context.Context, data RegistrationData) (*Session, error) {
	if err := data.Validate(); err != nil {
		return nil, wrapValidationError(err, "invalid registration payload")
	}

	if c.backend == nil {
		return nil, ErrNoBackend
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	result, err := c.backend.Register(ctx, data)
	if err != nil {
		c.logger.Error("register request failed: %v", err)
		logErrorDetails(c.logger, "register", err)
		c.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventRegisterFailure,
			Username:  data.Username,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	session, err := c.adoptSession(ctx, "register", result)
	if err != nil {
		c.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventRegisterFailure,
			Username:  data.Username,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	c.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventRegisterSuccess,
		UserID:    session.User.ID,
		Username:  session.User.Username,
	})

	return session, nil
}

// Logout tells the backend, then clears local state unconditionally. A
// client that cannot express "I am not logged in" is also unable to retry
// logout, so the clear never waits on the backend succeeding. The backend
// error, if any, is still surfaced as a non-fatal notice.
func (c *SessionClient) Logout(ctx context.Context) error {
	var backendErr error
	if c.backend != nil {
		backendErr = c.backend.Logout(ctx)
		if backendErr != nil {
			c.logger.Warn("backend logout failed: %v", backendErr)
		}
	}

	session := c.machine.CurrentSession()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("session store clear failed: %v", err)
	}
	if err := c.machine.Transition(StateUnauthenticated, nil); err != nil {
		c.logger.Error("logout transition error: %v", err)
	}

	event := ActivityEvent{EventType: ActivityEventLogout}
	if session != nil {
		event.UserID = session.User.ID
		event.Username = session.User.Username
	}
	if backendErr != nil {
		event.Metadata = map[string]any{"backend_error": backendErr.Error()}
	}
	c.recordActivity(ctx, event)

	return backendErr
}

// HandleAuthFailure runs the 401 remediation sequence: clear storage, demote
// state. Safe to call concurrently from multiple failing requests; the store
// clear and the demotion are both idempotent.
func (c *SessionClient) HandleAuthFailure(ctx context.Context) {
	wasAuthenticated := c.machine.Current() == StateAuthenticated

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("session store clear failed: %v", err)
	}
	if err := c.machine.Transition(StateUnauthenticated, nil); err != nil {
		c.logger.Error("auth failure transition error: %v", err)
	}

	if wasAuthenticated {
		c.recordActivity(ctx, ActivityEvent{EventType: ActivityEventSessionExpired})
	}
}

func (c *SessionClient) adoptSession(ctx context.Context, operation string, result *AuthResult) (*Session, error) {
	if result == nil {
		return nil, ErrIncompleteIdentity.WithMetadata(map[string]any{
			"operation": operation,
			"reason":    "empty auth result",
		})
	}

	session := Session{Token: result.Token, User: result.User}
	if err := session.Validate(); err != nil {
		meta := map[string]any{"operation": operation}
		if fields := validationFieldMap(err); len(fields) > 0 {
			meta["fields"] = fields
		}
		return nil, ErrIncompleteIdentity.WithMetadata(meta)
	}

	if err := c.store.Save(ctx, session); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	if err := c.machine.Transition(StateAuthenticated, &session); err != nil {
		// undo the write so storage and state cannot diverge
		if cerr := c.store.Clear(ctx); cerr != nil {
			c.logger.Error("session store clear failed: %v", cerr)
		}
		return nil, err
	}

	copied := session
	return &copied, nil
}

func (c *SessionClient) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrOperationPending
	}
	c.pending = true
	return nil
}

func (c *SessionClient) end() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

func (c *SessionClient) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(c.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		c.logger.Warn("activity sink record error: %v", err)
	}
}
