package authclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authclient "github.com/goliatone/go-auth-client"
)

func TestEvaluateState(t *testing.T) {
	tests := []struct {
		state authclient.AuthState
		want  authclient.Decision
	}{
		{authclient.StateInitializing, authclient.DecisionLoading},
		{authclient.StateAuthenticated, authclient.DecisionAllow},
		{authclient.StateUnauthenticated, authclient.DecisionRedirect},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, authclient.EvaluateState(tc.state), "state %s", tc.state)
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "loading", authclient.DecisionLoading.String())
	assert.Equal(t, "allow", authclient.DecisionAllow.String())
	assert.Equal(t, "redirect", authclient.DecisionRedirect.String())
}

func TestRouteGuardFollowsStateMachine(t *testing.T) {
	sm := authclient.NewSessionStateMachine()
	guard := authclient.NewRouteGuard(sm, "")
	defer guard.Close()

	assert.Equal(t, authclient.DecisionLoading, guard.Evaluate())

	session := validSession()
	require.NoError(t, sm.Transition(authclient.StateAuthenticated, &session))
	assert.Equal(t, authclient.DecisionAllow, guard.Evaluate())

	require.NoError(t, sm.Transition(authclient.StateUnauthenticated, nil))
	assert.Equal(t, authclient.DecisionRedirect, guard.Evaluate())
}

func TestRouteGuardCatchesUpOnLateSubscription(t *testing.T) {
	sm := authclient.NewSessionStateMachine()
	session := validSession()
	require.NoError(t, sm.Transition(authclient.StateAuthenticated, &session))

	guard := authclient.NewRouteGuard(sm, "")
	defer guard.Close()

	assert.Equal(t, authclient.DecisionAllow, guard.Evaluate())
}

func TestRouteGuardCloseStopsUpdates(t *testing.T) {
	sm := authclient.NewSessionStateMachine()
	guard := authclient.NewRouteGuard(sm, "")
	guard.Close()

	require.NoError(t, sm.Transition(authclient.StateUnauthenticated, nil))
	assert.Equal(t, authclient.DecisionLoading, guard.Evaluate(), "closed guard no longer tracks the machine")
}

func TestRouteGuardLoginRouteDefault(t *testing.T) {
	sm := authclient.NewSessionStateMachine()

	guard := authclient.NewRouteGuard(sm, "")
	assert.Equal(t, "/login", guard.LoginRoute())
	guard.Close()

	guard = authclient.NewRouteGuard(sm, "/signin")
	assert.Equal(t, "/signin", guard.LoginRoute())
	guard.Close()
}

func fiberAppFor(t *testing.T, guard *authclient.RouteGuard) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(authclient.FiberGuardMiddleware(guard))
	app.Get("/private", func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})
	return app
}

func TestFiberGuardMiddleware(t *testing.T) {
	sm := authclient.NewSessionStateMachine()
	guard := authclient.NewRouteGuard(sm, "/login")
	defer guard.Close()

	app := fiberAppFor(t, guard)

	// storage not consulted yet
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// authenticated
	session := validSession()
	require.NoError(t, sm.Transition(authclient.StateAuthenticated, &session))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// demoted mid-session
	require.NoError(t, sm.Transition(authclient.StateUnauthenticated, nil))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
