package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	defaultLoginPath    = "/auth/login/"
	defaultRegisterPath = "/auth/register/"
	defaultLogoutPath   = "/auth/logout/"
	defaultProfilePath  = "/auth/profile/"
)

var _ Backend = (*HTTPBackend)(nil)

// HTTPBackend talks to the catalog backend's auth endpoints. The HTTP client
// is injectable so the session transport (or a test double) can sit under it.
type HTTPBackend struct {
	baseURL      string
	loginPath    string
	registerPath string
	logoutPath   string
	profilePath  string
	httpClient   *http.Client
	logger       Logger
}

// NewHTTPBackend builds a backend client from cfg. Pass the client returned
// by NewHTTPClient so auth endpoints share the session transport.
func NewHTTPBackend(cfg Config, httpClient *http.Client) *HTTPBackend {
	b := &HTTPBackend{
		baseURL:      strings.TrimRight(cfg.GetBaseURL(), "/"),
		loginPath:    defaultLoginPath,
		registerPath: defaultRegisterPath,
		logoutPath:   defaultLogoutPath,
		profilePath:  defaultProfilePath,
		httpClient:   httpClient,
		logger:       defLogger{},
	}

	if p := cfg.GetLoginPath(); p != "" {
		b.loginPath = p
	}
	if p := cfg.GetRegisterPath(); p != "" {
		b.registerPath = p
	}
	if p := cfg.GetLogoutPath(); p != "" {
		b.logoutPath = p
	}
	if p := cfg.GetProfilePath(); p != "" {
		b.profilePath = p
	}

	if b.httpClient == nil {
		b.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return b
}

// WithLogger overrides the backend logger.
func (b *HTTPBackend) WithLogger(logger Logger) *HTTPBackend {
	if logger != nil {
		b.logger = logger
	}
	return b
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r authResponse) result() *AuthResult {
	return &AuthResult{
		Token: r.Token,
		User: Identity{
			ID:       r.UserID,
			Username: r.Username,
			Email:    r.Email,
		},
	}
}

// Login calls the login endpoint and decodes the flat token/user response.
func (b *HTTPBackend) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var out authResponse
	if err := b.do(ctx, "login", http.MethodPost, b.loginPath, creds, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Register calls the registration endpoint. Optional fields travel through
// RegistrationData.Extra; the phone number is normalized to E.164 when it
// parses.
func (b *HTTPBackend) Register(ctx context.Context, data RegistrationData) (*AuthResult, error) {
	payload := map[string]any{
		"username": data.Username,
		"email":    data.Email,
		"password": data.Password,
	}
	if phone := data.NormalizedPhone(); phone != "" {
		payload["phone"] = phone
	}
	for k, v := range data.Extra {
		if _, exists := payload[k]; !exists {
			payload[k] = v
		}
	}

	var out authResponse
	if err := b.do(ctx, "register", http.MethodPost, b.registerPath, payload, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Logout calls the authenticated logout endpoint. No body is required.
func (b *HTTPBackend) Logout(ctx context.Context) error {
	return b.do(ctx, "logout", http.MethodPost, b.logoutPath, nil, nil)
}

// Profile fetches the authenticated profile into out.
func (b *HTTPBackend) Profile(ctx context.Context, out any) error {
	return b.do(ctx, "profile", http.MethodGet, b.profilePath, nil, out)
}

// Get issues an authenticated GET against path, decoding JSON into out.
func (b *HTTPBackend) Get(ctx context.Context, path string, out any) error {
	return b.do(ctx, "request", http.MethodGet, path, nil, out)
}

// Post issues an authenticated JSON POST against path, decoding into out
// when non-nil.
func (b *HTTPBackend) Post(ctx context.Context, path string, body, out any) error {
	return b.do(ctx, "request", http.MethodPost, path, body, out)
}

func (b *HTTPBackend) do(ctx context.Context, operation, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.endpoint(path), reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Error("%s transport failure: %v", operation, err)
		return backendError(operation, 0, nil, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return backendError(operation, resp.StatusCode, nil, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return backendError(operation, resp.StatusCode, decodeErrorBody(raw), nil)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return backendError(operation, resp.StatusCode, nil, err)
	}

	return nil
}

func (b *HTTPBackend) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.baseURL + path
}

// decodeErrorBody decodes a failure body for message normalization. A body
// that is not a JSON object reads as absent.
func decodeErrorBody(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}
