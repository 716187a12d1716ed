package authclient

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface used across the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionStore persists the current session. Load returns (nil, nil) when no
// session is stored or when the stored payload is malformed; a broken store
// must read as "not logged in", never as an error that blocks startup.
// Clear is idempotent and Save overwrites atomically from a reader's point
// of view.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

// AuthResult is a decoded login/register response.
type AuthResult struct {
	Token string
	User  Identity
}

// Backend holds the auth endpoints the client consumes.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, data RegistrationData) (*AuthResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context, out any) error
}

// Notifier receives session lifecycle signals from the transport layer.
type Notifier interface {
	SessionExpired()
}

// Navigator moves the presentation layer to a route. Injected so the core
// stays testable without a real navigation surface.
type Navigator interface {
	NavigateTo(route string)
}

// StateListener observes state machine transitions. The session argument is
// the session after the transition, nil unless the new state is
// StateAuthenticated.
type StateListener func(from, to AuthState, session *Session)

// Config holds client options.
type Config interface {
	GetBaseURL() string
	GetAuthScheme() string
	GetLoginPath() string
	GetRegisterPath() string
	GetLogoutPath() string
	GetProfilePath() string
	GetLoginRoute() string
	GetRequestTimeout() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHCLIENT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopNotifier struct{}

func (noopNotifier) SessionExpired() {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

type noopNavigator struct{}

func (noopNavigator) NavigateTo(string) {}

func normalizeNavigator(n Navigator) Navigator {
	if n == nil {
		return noopNavigator{}
	}
	return n
}
