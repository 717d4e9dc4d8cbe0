package internal

import (
	"errors"
	"fmt"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// GrantTypePassword is the only OAuth2 grant this client performs.
const GrantTypePassword = "password"

// AccessTokenPath is the token endpoint on the unauthenticated host.
const AccessTokenPath = "/api/v1/access_token"

// NewAccessTokenRequest builds the password grant request. grant_type is
// preset; the caller supplies username and password.
func NewAccessTokenRequest() *Request {
	r := &Request{
		operation: "access_token",
		verb:      VerbPost,
		endpoint:  EndpointUnauthenticated,
		path:      AccessTokenPath,
		allowed:   []string{"grant_type", "username", "password"},
		mandatory: []string{"grant_type", "username", "password"},
		checks:    []Check{oneOf("grant_type", GrantTypePassword)},
	}
	r.params = map[string]any{"grant_type": GrantTypePassword}
	return r
}

// NewSubredditAboutRequest fetches /r/{name}/about.
func NewSubredditAboutRequest(name string) (*Request, error) {
	const op = "subreddit.about"
	if err := NewValidator().ValidateSubredditName(name); err != nil {
		return nil, withOperation(err, op)
	}
	return &Request{
		operation:    op,
		verb:         VerbGet,
		endpoint:     EndpointAuthenticated,
		path:         fmt.Sprintf("/r/%s/about", name),
		requiresAuth: true,
	}, nil
}

// NewUserAboutRequest fetches /user/{name}/about.
func NewUserAboutRequest(name string) (*Request, error) {
	const op = "user.about"
	if err := NewValidator().ValidateUsername(name); err != nil {
		return nil, withOperation(err, op)
	}
	return &Request{
		operation:    op,
		verb:         VerbGet,
		endpoint:     EndpointAuthenticated,
		path:         fmt.Sprintf("/user/%s/about", name),
		requiresAuth: true,
	}, nil
}

// NewMeRequest fetches the account the token was issued to.
func NewMeRequest() *Request {
	return &Request{
		operation:    "me",
		verb:         VerbGet,
		endpoint:     EndpointAuthenticated,
		path:         "/api/v1/me",
		requiresAuth: true,
	}
}

// NewInfoRequest looks up things by fullname. The "id" parameter is a
// comma-separated list of t1, t3 or t5 fullnames.
func NewInfoRequest() *Request {
	v := NewValidator()
	return &Request{
		operation:    "info",
		verb:         VerbGet,
		endpoint:     EndpointAuthenticated,
		path:         "/api/info",
		allowed:      []string{"id"},
		mandatory:    []string{"id"},
		requiresAuth: true,
		checks:       []Check{matches("id", v.ValidateFullnames)},
	}
}

// withOperation stamps op onto argument errors raised outside a descriptor.
func withOperation(err error, op string) error {
	var argErr *pkgerrs.ArgumentError
	if errors.As(err, &argErr) {
		argErr.Operation = op
		return argErr
	}
	return &pkgerrs.ArgumentError{Operation: op, Message: err.Error()}
}
