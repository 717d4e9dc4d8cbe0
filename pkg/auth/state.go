package auth

import (
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Credentials identify the registered application and the account it acts as.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

func (c Credentials) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"ClientID", c.ClientID},
		{"ClientSecret", c.ClientSecret},
		{"Username", c.Username},
		{"Password", c.Password},
		{"UserAgent", c.UserAgent},
	}
	for _, f := range fields {
		if f.value == "" {
			return &pkgerrs.ConfigError{Field: f.name, Message: "must not be empty"}
		}
	}
	return nil
}

// State is the authentication state of one account: its credentials, the
// current token and the quota bucket. Token and bucket are never nil.
type State struct {
	creds  Credentials
	token  *AccessToken
	bucket *RateLimitBucket
}

// NewState validates creds and returns a state holding an empty token and a
// full bucket.
func NewState(creds Credentials) (*State, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &State{
		creds:  creds,
		token:  NewAccessToken(creds.Username),
		bucket: NewRateLimitBucket(),
	}, nil
}

// Credentials returns a copy of the configured credentials.
func (s *State) Credentials() Credentials { return s.creds }

// Token returns the current token. It may be empty or expired.
func (s *State) Token() *AccessToken { return s.token }

// ReplaceToken swaps the current token wholesale.
func (s *State) ReplaceToken(t *AccessToken) error {
	if t == nil {
		return &pkgerrs.StateError{Operation: "replace_token", Message: "token must not be nil"}
	}
	s.token = t
	return nil
}

// Bucket returns the quota bucket.
func (s *State) Bucket() *RateLimitBucket { return s.bucket }
