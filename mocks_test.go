package authclient_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	authclient "github.com/goliatone/go-auth-client"
)

// MockBackend implements authclient.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, creds authclient.Credentials) (*authclient.AuthResult, error) {
	args := m.Called(ctx, creds)
	var result *authclient.AuthResult
	if v := args.Get(0); v != nil {
		result = v.(*authclient.AuthResult)
	}
	return result, args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, data authclient.RegistrationData) (*authclient.AuthResult, error) {
	args := m.Called(ctx, data)
	var result *authclient.AuthResult
	if v := args.Get(0); v != nil {
		result = v.(*authclient.AuthResult)
	}
	return result, args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Profile(ctx context.Context, out any) error {
	args := m.Called(ctx, out)
	return args.Error(0)
}

// MockNavigator records navigation targets.
type MockNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (m *MockNavigator) NavigateTo(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
}

func (m *MockNavigator) Routes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.routes...)
}

// blockingBackend parks Login calls until released, to exercise the
// in-flight serialization of login/register.
type blockingBackend struct {
	entered chan struct{}
	release chan struct{}
	result  *authclient.AuthResult
}

func newBlockingBackend(result *authclient.AuthResult) *blockingBackend {
	return &blockingBackend{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  result,
	}
}

func (b *blockingBackend) Login(ctx context.Context, _ authclient.Credentials) (*authclient.AuthResult, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.result, nil
}

func (b *blockingBackend) Register(_ context.Context, _ authclient.RegistrationData) (*authclient.AuthResult, error) {
	return b.result, nil
}

func (b *blockingBackend) Logout(context.Context) error { return nil }

func (b *blockingBackend) Profile(context.Context, any) error { return nil }

func validIdentity() authclient.Identity {
	return authclient.Identity{ID: 1, Username: "a", Email: "a@x.com"}
}

func validSession() authclient.Session {
	return authclient.Session{Token: "T", User: validIdentity()}
}
