package auth

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

var epoch = time.Unix(1_700_000_000, 0)

const grantBody = `{"access_token":"abc","expires_in":3600,"scope":"*","token_type":"bearer"}`

func TestNewAccessTokenIsInvalid(t *testing.T) {
	tok := NewAccessToken("alice")
	assert.Equal(t, "alice", tok.Username())
	assert.Empty(t, tok.Token())
	assert.False(t, tok.IsValidAt(epoch))
}

func TestNilTokenIsInvalid(t *testing.T) {
	var tok *AccessToken
	assert.False(t, tok.IsValidAt(epoch))
}

func TestPopulateFromGrant(t *testing.T) {
	tok, err := NewAccessToken("alice").PopulateFromGrant([]byte(grantBody), epoch)
	require.NoError(t, err)

	assert.Equal(t, "alice", tok.Username())
	assert.Equal(t, "abc", tok.Token())
	assert.Equal(t, "*", tok.Scope())
	assert.Equal(t, "bearer", tok.TokenType())
	assert.Equal(t, epoch.Add(time.Hour).Unix(), tok.ExpiresAt().Unix())

	assert.True(t, tok.IsValidAt(epoch.Add(3500*time.Second)))
	assert.False(t, tok.IsValidAt(epoch.Add(3541*time.Second)), "inside the safety margin")
	assert.False(t, tok.IsValidAt(epoch.Add(3601*time.Second)))
}

func TestPopulateFromGrantFractionalExpiry(t *testing.T) {
	tok, err := NewAccessToken("alice").PopulateFromGrant(
		[]byte(`{"access_token":"abc","expires_in":3600.9,"scope":"*","token_type":"bearer"}`), epoch)
	require.NoError(t, err)
	assert.Equal(t, epoch.Unix()+3600, tok.ExpiresAt().Unix())
}

func TestPopulateFromGrantErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "not json", body: `<html>`, wantMsg: "not a JSON object"},
		{name: "array", body: `[1,2]`, wantMsg: "not a JSON object"},
		{name: "missing access_token", body: `{"expires_in":3600,"scope":"*","token_type":"bearer"}`, wantMsg: "access_token"},
		{name: "empty access_token", body: `{"access_token":"","expires_in":3600,"scope":"*","token_type":"bearer"}`, wantMsg: "access_token"},
		{name: "missing expires_in", body: `{"access_token":"abc","scope":"*","token_type":"bearer"}`, wantMsg: "expires_in"},
		{name: "missing scope", body: `{"access_token":"abc","expires_in":3600,"token_type":"bearer"}`, wantMsg: "scope"},
		{name: "missing token_type", body: `{"access_token":"abc","expires_in":3600,"scope":"*"}`, wantMsg: "token_type"},
		{name: "string expires_in", body: `{"access_token":"abc","expires_in":"soon","scope":"*","token_type":"bearer"}`, wantMsg: "not a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewAccessToken("alice")
			_, err := tok.PopulateFromGrant([]byte(tt.body), epoch)
			require.Error(t, err)

			var parseErr *pkgerrs.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, tok.Token(), "failed populate must not touch the token")
		})
	}
}

func TestSerializeForCacheRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("alice").PopulateFromGrant([]byte(grantBody), epoch)
	require.NoError(t, err)

	later := epoch.Add(10 * time.Minute)
	data, err := tok.SerializeForCache(later)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(3000), raw["expires_in"])
	assert.NotContains(t, raw, "username")

	restored, err := NewAccessToken("alice").PopulateFromGrant(data, later)
	require.NoError(t, err)
	assert.Equal(t, tok.Token(), restored.Token())
	assert.Equal(t, tok.Scope(), restored.Scope())
	assert.Equal(t, tok.TokenType(), restored.TokenType())
	assert.Equal(t, tok.ExpiresAt(), restored.ExpiresAt())
}

func TestRestoreAccessToken(t *testing.T) {
	tok := RestoreAccessToken("bob", "xyz", "bearer", "read", epoch.Add(2*time.Hour))
	assert.Equal(t, "bob", tok.Username())
	assert.True(t, tok.IsValidAt(epoch))
	assert.False(t, tok.IsValidAt(epoch.Add(2*time.Hour)))
}

func TestLogValueRedactsToken(t *testing.T) {
	tok := RestoreAccessToken("bob", "super-secret", "bearer", "read", epoch)
	assert.NotContains(t, tok.LogValue().String(), "super-secret")
}
