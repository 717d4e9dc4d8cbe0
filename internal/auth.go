package internal

import (
	"bytes"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const errInvalidGrant = "invalid_grant"

// NewPasswordGrant builds the token request for creds.
func NewPasswordGrant(creds auth.Credentials) (*Request, error) {
	r := NewAccessTokenRequest()
	if err := r.AddParameter("username", creds.Username); err != nil {
		return nil, err
	}
	if err := r.AddParameter("password", creds.Password); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadGrant turns a token endpoint response into a token for username.
// Reddit reports bad credentials with a 200 and an invalid_grant error
// body, which is surfaced as an AuthError.
func ReadGrant(body []byte, username string, now time.Time) (*auth.AccessToken, error) {
	if isInvalidGrant(body) {
		return nil, &pkgerrs.AuthError{
			Operation: "access_token",
			Body:      string(body),
			Message: "authentication failed; verify the username, password, client ID and secret, " +
				"and that user " + username + " is listed as a developer of the app",
		}
	}

	return auth.NewAccessToken(username).PopulateFromGrant(body, now)
}

func isInvalidGrant(body []byte) bool {
	if strings.EqualFold(gjson.GetBytes(body, "error").String(), errInvalidGrant) {
		return true
	}
	return bytes.Contains(bytes.ToLower(body), []byte(errInvalidGrant))
}
