// Package storage defines the token cache the graw client consults before
// asking Reddit for a new access token. Drivers live in the sqlite and bolt
// subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

//go:generate mockgen -destination=mock_store.go -package=storage . TokenStore

// ErrNotFound is returned by RetrieveLatestValid when no usable token exists.
var ErrNotFound = errors.New("storage: token not found")

// DefaultPurgeAge is how long after expiry a token is kept before purging.
const DefaultPurgeAge = 24 * time.Hour

// TokenStore persists access tokens across process restarts.
type TokenStore interface {
	// RetrieveLatestValid returns the token for username with the latest
	// expiry, provided it is still valid. It returns ErrNotFound otherwise.
	RetrieveLatestValid(ctx context.Context, username string) (*auth.AccessToken, error)
	// Persist saves a token. Saving the same token twice is a no-op.
	Persist(ctx context.Context, token *auth.AccessToken) error
	// PurgeOlderThan deletes tokens that expired more than age ago.
	PurgeOlderThan(ctx context.Context, age time.Duration) error
	// Close releases the underlying database.
	Close() error
}

// CheckPersistable rejects tokens with any empty field. Drivers call it
// before writing.
func CheckPersistable(token *auth.AccessToken) error {
	switch {
	case token == nil:
		return &pkgerrs.StorageError{Operation: "persist", Message: "token is nil"}
	case token.Username() == "":
		return &pkgerrs.StorageError{Operation: "persist", Message: "token has no username"}
	case token.Token() == "":
		return &pkgerrs.StorageError{Operation: "persist", Message: "token is empty"}
	case token.ExpiresAt().Unix() <= 0:
		return &pkgerrs.StorageError{Operation: "persist", Message: "token has no expiry"}
	case token.Scope() == "":
		return &pkgerrs.StorageError{Operation: "persist", Message: "token has no scope"}
	case token.TokenType() == "":
		return &pkgerrs.StorageError{Operation: "persist", Message: "token has no type"}
	}
	return nil
}

// ValidAfter returns the expiry threshold a stored token must exceed to be
// handed out at now.
func ValidAfter(now time.Time) int64 {
	return now.Add(auth.ValiditySafetyMargin).Unix()
}
