package authclient

// ExpiryController performs the navigation half of remediation. The
// transport only demotes state and notifies; this controller, subscribed to
// the state machine, drives the injected Navigator to the unauthenticated
// entry point. Keeping the redirect out of the transport leaves the core
// testable without a navigation surface.
type ExpiryController struct {
	navigator Navigator
	route     string
	cancel    func()
	logger    Logger
}

// NewExpiryController subscribes a controller to machine. route defaults to
// "/login". Call Close to unsubscribe.
func NewExpiryController(machine *SessionStateMachine, navigator Navigator, route string) *ExpiryController {
	if route == "" {
		route = "/login"
	}

	c := &ExpiryController{
		navigator: normalizeNavigator(navigator),
		route:     route,
		logger:    defLogger{},
	}

	c.cancel = machine.Subscribe(func(from, to AuthState, _ *Session) {
		if from == StateAuthenticated && to == StateUnauthenticated {
			c.logger.Info("session ended, navigating to %s", c.route)
			c.navigator.NavigateTo(c.route)
		}
	})

	return c
}

// Close unsubscribes the controller from the state machine.
func (c *ExpiryController) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}
