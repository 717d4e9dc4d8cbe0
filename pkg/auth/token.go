// Package auth holds the authentication state of a single Reddit account:
// the client credentials, the current bearer token and the API quota bucket.
//
// None of the types in this package are safe for concurrent use. A pipeline
// drives one State sequentially; run one pipeline per account if you need
// parallelism.
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// ValiditySafetyMargin is how far in the future a token's expiry must be for
// the token to count as valid. Tokens closer to expiry than this are treated
// as already expired so they cannot lapse mid-request.
const ValiditySafetyMargin = 60 * time.Second

const opParseGrant = "access_token.parse"

// AccessToken is an OAuth2 bearer token issued to one Reddit account.
type AccessToken struct {
	username  string
	token     string
	expires   int64 // unix seconds
	scope     string
	tokenType string
}

// NewAccessToken returns an empty token bound to username. It is not valid
// until populated from a grant response.
func NewAccessToken(username string) *AccessToken {
	return &AccessToken{username: username}
}

// RestoreAccessToken rebuilds a token from a persisted record.
func RestoreAccessToken(username, token, tokenType, scope string, expiresAt time.Time) *AccessToken {
	return &AccessToken{
		username:  username,
		token:     token,
		expires:   expiresAt.Unix(),
		scope:     scope,
		tokenType: tokenType,
	}
}

// Username returns the account the token was issued to.
func (t *AccessToken) Username() string { return t.username }

// Token returns the bearer token string, empty until populated.
func (t *AccessToken) Token() string { return t.token }

// ExpiresAt returns the absolute expiry instant.
func (t *AccessToken) ExpiresAt() time.Time { return time.Unix(t.expires, 0) }

// Scope returns the scope string granted by the server.
func (t *AccessToken) Scope() string { return t.scope }

// TokenType returns the token type, normally "bearer".
func (t *AccessToken) TokenType() string { return t.tokenType }

// IsValid reports whether the token can be presented right now.
func (t *AccessToken) IsValid() bool {
	return t.IsValidAt(time.Now())
}

// IsValidAt reports whether the token is non-empty and expires more than
// ValiditySafetyMargin after now.
func (t *AccessToken) IsValidAt(now time.Time) bool {
	if t == nil || t.token == "" {
		return false
	}
	return t.expires > now.Add(ValiditySafetyMargin).Unix()
}

// grantPayload is the fixed wire schema shared by token grant responses and
// cached token records. Pointer fields distinguish absent keys from zero values.
type grantPayload struct {
	AccessToken *string      `json:"access_token"`
	TokenType   *string      `json:"token_type"`
	ExpiresIn   *json.Number `json:"expires_in"`
	Scope       *string      `json:"scope"`
}

// PopulateFromGrant fills the token from a grant response body received at
// now. All of access_token, expires_in, scope and token_type must be present.
// The receiver is populated in place, keeping its username, and returned.
func (t *AccessToken) PopulateFromGrant(body []byte, now time.Time) (*AccessToken, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var p grantPayload
	if err := dec.Decode(&p); err != nil {
		return nil, &pkgerrs.ParseError{Operation: opParseGrant, Message: "token response is not a JSON object", Err: err}
	}

	switch {
	case p.AccessToken == nil || *p.AccessToken == "":
		return nil, missingKey("access_token")
	case p.ExpiresIn == nil:
		return nil, missingKey("expires_in")
	case p.Scope == nil || *p.Scope == "":
		return nil, missingKey("scope")
	case p.TokenType == nil || *p.TokenType == "":
		return nil, missingKey("token_type")
	}

	expiresIn, err := p.ExpiresIn.Int64()
	if err != nil {
		f, ferr := p.ExpiresIn.Float64()
		if ferr != nil {
			return nil, &pkgerrs.ParseError{Operation: opParseGrant, Message: fmt.Sprintf("malformed expires_in %q", p.ExpiresIn.String()), Err: ferr}
		}
		expiresIn = int64(f)
	}

	t.token = *p.AccessToken
	t.expires = now.Unix() + expiresIn
	t.scope = *p.Scope
	t.tokenType = *p.TokenType

	return t, nil
}

// SerializeForCache encodes the token in the grant wire format, with
// expires_in expressed relative to now. The username is not included.
func (t *AccessToken) SerializeForCache(now time.Time) ([]byte, error) {
	expiresIn := json.Number(fmt.Sprintf("%d", t.expires-now.Unix()))
	return json.Marshal(grantPayload{
		AccessToken: &t.token,
		TokenType:   &t.tokenType,
		ExpiresIn:   &expiresIn,
		Scope:       &t.scope,
	})
}

// LogValue implements slog.LogValuer. The token itself is never logged.
func (t *AccessToken) LogValue() slog.Value {
	if t == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("username", t.username),
		slog.Bool("populated", t.token != ""),
		slog.Time("expires_at", t.ExpiresAt()),
		slog.String("scope", t.scope),
	)
}

func missingKey(key string) error {
	return &pkgerrs.ParseError{Operation: opParseGrant, Message: "missing expected key: " + key}
}
