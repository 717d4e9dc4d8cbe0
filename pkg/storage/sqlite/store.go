// Package sqlite is a TokenStore backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/storage"

	_ "modernc.org/sqlite"
)

const (
	insertToken = `INSERT OR IGNORE INTO access_tokens
		(username, access_token, expires, scope, token_type)
		VALUES (?, ?, ?, ?, ?)`

	selectLatestValid = `SELECT access_token, expires, scope, token_type
		FROM access_tokens
		WHERE username = ? AND expires > ?
		ORDER BY expires DESC
		LIMIT 1`

	deleteExpired = `DELETE FROM access_tokens WHERE expires < ?`
)

var _ storage.TokenStore = (*Store)(nil)

// Store is a SQLite token store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at dsn. Call ApplyMigrations before first use.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &pkgerrs.StorageError{Operation: "open", Err: err}
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, &pkgerrs.StorageError{Operation: "open", Err: err}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RetrieveLatestValid implements storage.TokenStore.
func (s *Store) RetrieveLatestValid(ctx context.Context, username string) (*auth.AccessToken, error) {
	var (
		token, scope, tokenType string
		expires                 int64
	)

	err := s.db.QueryRowContext(ctx, selectLatestValid, username, storage.ValidAfter(s.now())).
		Scan(&token, &expires, &scope, &tokenType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, &pkgerrs.StorageError{Operation: "retrieve", Err: err}
	}

	return auth.RestoreAccessToken(username, token, tokenType, scope, time.Unix(expires, 0)), nil
}

// Persist implements storage.TokenStore.
func (s *Store) Persist(ctx context.Context, token *auth.AccessToken) error {
	if err := storage.CheckPersistable(token); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, insertToken,
		token.Username(), token.Token(), token.ExpiresAt().Unix(), token.Scope(), token.TokenType())
	if err != nil {
		return &pkgerrs.StorageError{Operation: "persist", Err: err}
	}
	return nil
}

// PurgeOlderThan implements storage.TokenStore.
func (s *Store) PurgeOlderThan(ctx context.Context, age time.Duration) error {
	cutoff := s.now().Add(-age).Unix()
	if _, err := s.db.ExecContext(ctx, deleteExpired, cutoff); err != nil {
		return &pkgerrs.StorageError{Operation: "purge", Err: err}
	}
	return nil
}
