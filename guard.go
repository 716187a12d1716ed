package authclient

import (
	"net/http"
	"sync"

	"github.com/goliatone/go-router"
)

// Decision is the route guard's three-way verdict for a protected view.
type Decision int

const (
	// DecisionLoading renders a neutral placeholder: storage has not been
	// consulted yet, so neither protected content nor a redirect is safe.
	DecisionLoading Decision = iota
	// DecisionAllow renders protected content.
	DecisionAllow
	// DecisionRedirect sends the caller to the unauthenticated entry point.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "loading"
	}
}

// EvaluateState maps an auth state to a gating decision.
func EvaluateState(state AuthState) Decision {
	switch state {
	case StateAuthenticated:
		return DecisionAllow
	case StateUnauthenticated:
		return DecisionRedirect
	default:
		return DecisionLoading
	}
}

// RouteGuard gates protected views on the current auth state. It subscribes
// to the state machine rather than polling, so a forced mid-session demotion
// is reflected on the next evaluation without a reload.
type RouteGuard struct {
	mu         sync.RWMutex
	state      AuthState
	loginRoute string
	cancel     func()
	logger     Logger
}

// NewRouteGuard subscribes a guard to machine. loginRoute defaults to
// "/login". Call Close to unsubscribe.
func NewRouteGuard(machine *SessionStateMachine, loginRoute string) *RouteGuard {
	if loginRoute == "" {
		loginRoute = "/login"
	}

	g := &RouteGuard{
		loginRoute: loginRoute,
		logger:     defLogger{},
	}

	g.cancel = machine.Subscribe(func(_, to AuthState, _ *Session) {
		g.mu.Lock()
		g.state = to
		g.mu.Unlock()
	})

	// catch up with transitions that ran before the subscription
	g.mu.Lock()
	g.state = machine.Current()
	g.mu.Unlock()

	return g
}

// Close unsubscribes the guard from the state machine.
func (g *RouteGuard) Close() {
	if g.cancel != nil {
		g.cancel()
	}
}

// Evaluate returns the gating decision for the current state.
func (g *RouteGuard) Evaluate() Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return EvaluateState(g.state)
}

// LoginRoute returns the unauthenticated entry point.
func (g *RouteGuard) LoginRoute() string {
	return g.loginRoute
}

// Middleware returns a go-router middleware enforcing the guard on protected
// routes of an embedded UI server.
func (g *RouteGuard) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			switch g.Evaluate() {
			case DecisionAllow:
				return next(c)
			case DecisionLoading:
				return c.Status(http.StatusServiceUnavailable).SendString("session initializing")
			default:
				g.logger.Debug("guard redirecting to %s", g.loginRoute)
				return c.Redirect(g.loginRoute, http.StatusFound)
			}
		}
	}
}
