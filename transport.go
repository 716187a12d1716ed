package authclient

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// HeaderAuthorization carries the session credential.
	HeaderAuthorization = "Authorization"
	// HeaderRequestID tags outgoing requests for correlation.
	HeaderRequestID = "X-Request-ID"
	// DefaultAuthScheme is the backend's token scheme word, space-separated
	// and case-sensitive on the wire.
	DefaultAuthScheme = "Token"
)

// TokenSource yields the credential to attach to a request, empty for none.
type TokenSource interface {
	Token() string
}

// AuthFailureHandler runs the remediation sequence for an authentication
// failure response.
type AuthFailureHandler interface {
	HandleAuthFailure(ctx context.Context)
}

// AuthTransport decorates a RoundTripper so every outgoing request carries
// the current session token and every 401 response triggers global
// remediation. The original response still flows back to the caller;
// remediation never swallows the failure.
type AuthTransport struct {
	Base       http.RoundTripper
	Tokens     TokenSource
	Remediator AuthFailureHandler
	Notifier   Notifier
	Scheme     string
	Logger     Logger
}

// NewAuthTransport wires a transport against the client's token source and
// remediation handler.
func NewAuthTransport(client *SessionClient) *AuthTransport {
	return &AuthTransport{
		Base:       http.DefaultTransport,
		Tokens:     client,
		Remediator: client,
		Notifier:   noopNotifier{},
		Scheme:     DefaultAuthScheme,
		Logger:     defLogger{},
	}
}

// NewHTTPClient returns an *http.Client that authenticates every request
// through an AuthTransport.
func NewHTTPClient(client *SessionClient, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewAuthTransport(client),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not mutate the caller's request
	out := req.Clone(req.Context())
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}

	if t.Tokens != nil {
		if token := t.Tokens.Token(); token != "" {
			out.Header.Set(HeaderAuthorization, t.scheme()+" "+token)
		}
	}

	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if IsAuthFailureStatus(resp.StatusCode) {
		t.remediate(req.Context())
	}

	return resp, nil
}

func (t *AuthTransport) scheme() string {
	if t.Scheme == "" {
		return DefaultAuthScheme
	}
	return t.Scheme
}

// remediate clears local session state and signals the presentation layer.
// Both halves are idempotent, so simultaneous failing requests are safe.
func (t *AuthTransport) remediate(ctx context.Context) {
	if t.Logger != nil {
		t.Logger.Info("authentication failure response, demoting session")
	}

	if t.Remediator != nil {
		t.Remediator.HandleAuthFailure(ctx)
	}

	if t.Notifier != nil {
		t.Notifier.SessionExpired()
	}
}
