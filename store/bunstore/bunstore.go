// Package bunstore persists the session in a local sqlite database through
// Bun, for hosts that already carry one. Rows mirror the browser client's
// origin storage: one entry per key, token and user.
package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	authclient "github.com/goliatone/go-auth-client"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var _ authclient.SessionStore = (*Store)(nil)

// Entry is one key/value row of the session table.
type Entry struct {
	bun.BaseModel `bun:"table:session_entries,alias:se"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// Store is a bun-backed SessionStore.
type Store struct {
	db   *bun.DB
	owns bool
}

// Open opens (creating when needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open session database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	store := &Store{db: db, owns: true}

	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// NewWithDB wraps a bun.DB owned by the host application.
func NewWithDB(db *bun.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// Close closes the database when this store opened it.
func (s *Store) Close() error {
	if !s.owns {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session table")
	}
	return nil
}

// Load reads the stored session. Missing or malformed rows read as no
// session rather than an error.
func (s *Store) Load(ctx context.Context) (*authclient.Session, error) {
	entries := []Entry{}
	err := s.db.NewSelect().
		Model(&entries).
		Where("se.key IN (?, ?)", tokenKey, userKey).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session entries")
	}

	var token, userRaw string
	for _, entry := range entries {
		switch entry.Key {
		case tokenKey:
			token = entry.Value
		case userKey:
			userRaw = entry.Value
		}
	}

	if token == "" || userRaw == "" {
		return nil, nil
	}

	var user authclient.Identity
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil {
		return nil, nil
	}

	return &authclient.Session{Token: token, User: user}, nil
}

// Save upserts both entries in one transaction so a concurrent reader never
// observes a half-written session.
func (s *Store) Save(ctx context.Context, session authclient.Session) error {
	raw, err := json.Marshal(session.User)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session identity")
	}

	entries := []Entry{
		{Key: tokenKey, Value: session.Token},
		{Key: userKey, Value: string(raw)},
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&entries).
			On("CONFLICT (key) DO UPDATE").
			Set("value = EXCLUDED.value").
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save session entries")
		}
		return nil
	})
}

// Clear deletes both entries. Clearing an empty table is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("se.key IN (?, ?)", tokenKey, userKey).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session entries")
	}
	return nil
}
