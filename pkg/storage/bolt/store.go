// Package bolt is a TokenStore backed by a single bbolt file.
package bolt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/storage"
)

const (
	dirPerm     = fs.FileMode(0o700)
	filePerm    = fs.FileMode(0o600)
	openTimeout = 5 * time.Second
)

var tokensBucket = []byte("access_tokens")

var _ storage.TokenStore = (*Store)(nil)

// record is the JSON value stored per token.
type record struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

// Store is a bbolt token store.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, &pkgerrs.StorageError{Operation: "open", Message: "creating directory", Err: err}
	}

	db, err := bolt.Open(path, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, &pkgerrs.StorageError{Operation: "open", Err: err}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &pkgerrs.StorageError{Operation: "open", Message: "creating bucket", Err: err}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// tokenKey hashes the token so raw tokens are not used as keys on disk.
func tokenKey(token string) []byte {
	h := sha256.Sum256([]byte(token))
	dst := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(dst, h[:])
	return dst
}

// RetrieveLatestValid implements storage.TokenStore. It scans the bucket,
// which stays small because expired tokens are purged.
func (s *Store) RetrieveLatestValid(ctx context.Context, username string) (*auth.AccessToken, error) {
	threshold := storage.ValidAfter(s.now())

	var best *record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).ForEach(func(_, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding token record: %w", err)
			}
			if r.Username != username || r.Expires <= threshold {
				return nil
			}
			if best == nil || r.Expires > best.Expires {
				best = &r
			}
			return nil
		})
	})
	if err != nil {
		return nil, &pkgerrs.StorageError{Operation: "retrieve", Err: err}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}

	return auth.RestoreAccessToken(best.Username, best.AccessToken, best.TokenType, best.Scope, time.Unix(best.Expires, 0)), nil
}

// Persist implements storage.TokenStore.
func (s *Store) Persist(ctx context.Context, token *auth.AccessToken) error {
	if err := storage.CheckPersistable(token); err != nil {
		return err
	}

	data, err := json.Marshal(record{
		Username:    token.Username(),
		AccessToken: token.Token(),
		Expires:     token.ExpiresAt().Unix(),
		Scope:       token.Scope(),
		TokenType:   token.TokenType(),
	})
	if err != nil {
		return &pkgerrs.StorageError{Operation: "persist", Err: err}
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		key := tokenKey(token.Token())
		if b.Get(key) != nil {
			return nil
		}
		return b.Put(key, data)
	})
	if err != nil {
		return &pkgerrs.StorageError{Operation: "persist", Err: err}
	}
	return nil
}

// PurgeOlderThan implements storage.TokenStore.
func (s *Store) PurgeOlderThan(ctx context.Context, age time.Duration) error {
	cutoff := s.now().Add(-age).Unix()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tokensBucket)

		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil || r.Expires < cutoff {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &pkgerrs.StorageError{Operation: "purge", Err: err}
	}
	return nil
}
