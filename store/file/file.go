// Package file persists the session as a JSON document on disk, keyed the
// same way the browser client keys origin storage: token and user.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	authclient "github.com/goliatone/go-auth-client"
)

var _ authclient.SessionStore = (*Store)(nil)

// Store writes the session to a single file. Writes go through a temp file
// and rename so a reader never observes a half-written session.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store backed by path. Parent directories are created on the
// first save.
func New(path string) *Store {
	return &Store{path: path}
}

type document struct {
	Token string               `json:"token,omitempty"`
	User  *authclient.Identity `json:"user,omitempty"`
}

// Load reads the stored session. A missing or malformed file reads as no
// session rather than an error.
func (s *Store) Load(_ context.Context) (*authclient.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session file")
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}

	if doc.Token == "" || doc.User == nil {
		return nil, nil
	}

	return &authclient.Session{Token: doc.Token, User: *doc.User}, nil
}

// Save overwrites the stored session atomically.
func (s *Store) Save(_ context.Context, session authclient.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := session.User
	raw, err := json.MarshalIndent(document{Token: session.Token, User: &user}, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session")
	}

	return s.writeAtomic(raw)
}

// Clear removes the session file. Clearing an empty store is a no-op.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session file")
	}
	return nil
}

func (s *Store) writeAtomic(raw []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session directory")
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session temp file")
	}

	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session temp file")
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(name)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to set session file mode")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to close session temp file")
	}

	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to replace session file")
	}

	return nil
}
