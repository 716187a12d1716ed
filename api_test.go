package authclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authclient "github.com/goliatone/go-auth-client"
)

func backendFor(srv *httptest.Server) *authclient.HTTPBackend {
	return authclient.NewHTTPBackend(&authclient.EnvConfig{BaseURL: srv.URL}, srv.Client())
}

func TestBackendLoginDecodesResponse(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token":    "T2",
			"user_id":  2,
			"username": "b",
			"email":    "b@x.com",
		})
	}))
	defer srv.Close()

	result, err := backendFor(srv).Login(context.Background(), authclient.Credentials{
		Username: "a",
		Password: "p",
	})
	require.NoError(t, err)

	assert.Equal(t, "/auth/login/", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "a", gotBody["username"])
	assert.Equal(t, "p", gotBody["password"])

	assert.Equal(t, "T2", result.Token)
	assert.Equal(t, authclient.Identity{ID: 2, Username: "b", Email: "b@x.com"}, result.User)
}

func TestBackendErrorNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"prefers error", `{"error": "bad things", "detail": "nope", "message": "nah"}`, "bad things"},
		{"then detail", `{"detail": "Invalid credentials.", "message": "nah"}`, "Invalid credentials."},
		{"then message", `{"message": "slow down"}`, "slow down"},
		{"falls back", `{}`, "Request failed"},
		{"non json body", `<html>boom</html>`, "Request failed"},
		{"non string fields", `{"error": 42}`, "Request failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := backendFor(srv).Login(context.Background(), authclient.Credentials{
				Username: "a",
				Password: "p",
			})
			require.Error(t, err)
			assert.True(t, authclient.IsBackendError(err))
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestBackendRegisterPayload(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register/", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"token":    "T9",
			"user_id":  9,
			"username": "new",
			"email":    "new@x.com",
		})
	}))
	defer srv.Close()

	result, err := backendFor(srv).Register(context.Background(), authclient.RegistrationData{
		Username:        "new",
		Email:           "new@x.com",
		Password:        "password-one",
		ConfirmPassword: "password-one",
		Phone:           "(212) 555-0147",
		Extra:           map[string]any{"invite_code": "xyz"},
	})
	require.NoError(t, err)
	assert.Equal(t, "T9", result.Token)

	assert.Equal(t, "new", gotBody["username"])
	assert.Equal(t, "new@x.com", gotBody["email"])
	assert.Equal(t, "password-one", gotBody["password"])
	assert.Equal(t, "+12125550147", gotBody["phone"])
	assert.Equal(t, "xyz", gotBody["invite_code"])

	_, leaked := gotBody["confirm_password"]
	assert.False(t, leaked, "confirmation never leaves the client")
}

func TestBackendLogoutNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/logout/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, backendFor(srv).Logout(context.Background()))
}

func TestBackendProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/profile/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"username": "a", "email": "a@x.com"})
	}))
	defer srv.Close()

	profile := map[string]any{}
	require.NoError(t, backendFor(srv).Profile(context.Background(), &profile))
	assert.Equal(t, "a", profile["username"])
}

func TestBackendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend := backendFor(srv)
	srv.Close()

	err := backend.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, authclient.IsBackendError(err))
	assert.Contains(t, err.Error(), "logout failed")
}

func TestBackendCustomPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"token": "T", "user_id": 1, "username": "a", "email": "a@x.com",
		})
	}))
	defer srv.Close()

	backend := authclient.NewHTTPBackend(&authclient.EnvConfig{
		BaseURL:   srv.URL,
		LoginPath: "/api/v2/session/",
	}, srv.Client())

	_, err := backend.Login(context.Background(), authclient.Credentials{Username: "a", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/session/", gotPath)
}
