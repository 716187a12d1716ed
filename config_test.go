package authclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authclient "github.com/goliatone/go-auth-client"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_CLIENT_BASE_URL", "https://api.example.com")

	cfg, err := authclient.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.GetBaseURL())
	assert.Equal(t, "Token", cfg.GetAuthScheme())
	assert.Equal(t, "/auth/login/", cfg.GetLoginPath())
	assert.Equal(t, "/auth/register/", cfg.GetRegisterPath())
	assert.Equal(t, "/auth/logout/", cfg.GetLogoutPath())
	assert.Equal(t, "/auth/profile/", cfg.GetProfilePath())
	assert.Equal(t, "/login", cfg.GetLoginRoute())
	assert.Equal(t, 10, cfg.GetRequestTimeout())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_CLIENT_BASE_URL", "https://api.example.com")
	t.Setenv("AUTH_CLIENT_SCHEME", "Bearer")
	t.Setenv("AUTH_CLIENT_LOGIN_PATH", "/api/v2/session/")
	t.Setenv("AUTH_CLIENT_LOGIN_ROUTE", "/signin")
	t.Setenv("AUTH_CLIENT_TIMEOUT_SECONDS", "30")

	cfg, err := authclient.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, "/api/v2/session/", cfg.GetLoginPath())
	assert.Equal(t, "/signin", cfg.GetLoginRoute())
	assert.Equal(t, 30, cfg.GetRequestTimeout())
}

func TestLoadConfigBadTimeout(t *testing.T) {
	t.Setenv("AUTH_CLIENT_TIMEOUT_SECONDS", "soon")

	_, err := authclient.LoadConfig()
	assert.Error(t, err)
}
