package internal

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const (
	// Pagination constraints
	maxPaginationLimit = 100

	// User agent constraints
	maxUserAgentLength = 256
)

var (
	// Three to twenty-one characters, not starting with an underscore, or one
	// of the reserved names Reddit serves without that rule.
	subredditNamePattern = regexp.MustCompile(`(?i)^((?:[a-z0-9][a-z0-9_]{2,20})|reddit\.com|ca|de|es|eu|fr|it|ja|nl|pl|ru)$`)
	usernamePattern      = regexp.MustCompile(`(?i)^[a-z0-9_-]{3,20}$`)
	fullnameListPattern  = regexp.MustCompile(`(?i)^(?:t[135]_[a-z0-9]{1,13},?)+$`)
)

// Validator provides validation operations for Reddit API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubredditName checks a subreddit name against Reddit's naming rules.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.ArgumentError{Parameter: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if !subredditNamePattern.MatchString(name) {
		return &pkgerrs.ArgumentError{Parameter: "subreddit", Message: fmt.Sprintf("invalid subreddit name %q", name)}
	}
	return nil
}

// ValidateUsername checks a Reddit account name.
func (v *Validator) ValidateUsername(name string) error {
	if name == "" {
		return &pkgerrs.ArgumentError{Parameter: "username", Message: "username cannot be empty"}
	}
	if !usernamePattern.MatchString(name) {
		return &pkgerrs.ArgumentError{Parameter: "username", Message: fmt.Sprintf("invalid username %q", name)}
	}
	return nil
}

// ValidateFullnames checks a comma-separated list of comment, link and
// subreddit fullnames, e.g. "t3_abc123,t5_2qh0u".
func (v *Validator) ValidateFullnames(list string) error {
	if !fullnameListPattern.MatchString(list) {
		return &pkgerrs.ArgumentError{Parameter: "id", Message: fmt.Sprintf("invalid fullname list %q", list)}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "must not be empty"}
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}

// intRange requires an integer parameter, when present, to lie in [lo, hi].
func intRange(name string, lo, hi int64) Check {
	return func(r *Request) error {
		v, ok := r.params[name]
		if !ok {
			return nil
		}
		n, ok := asInt(v)
		if !ok {
			return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: fmt.Sprintf("expected an integer, got %v", v)}
		}
		if n < lo || n > hi {
			return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: fmt.Sprintf("must be between %d and %d, got %d", lo, hi, n)}
		}
		return nil
	}
}

// oneOf requires a parameter, when present, to be one of the listed values.
func oneOf(name string, values ...string) Check {
	return func(r *Request) error {
		v, ok := r.params[name]
		if !ok {
			return nil
		}
		if s, isString := v.(string); isString && slices.Contains(values, s) {
			return nil
		}
		return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: fmt.Sprintf("must be one of %s, got %v", strings.Join(values, ", "), v)}
	}
}

// exclusive forbids setting both parameters at once.
func exclusive(a, b string) Check {
	return func(r *Request) error {
		_, hasA := r.params[a]
		_, hasB := r.params[b]
		if hasA && hasB {
			return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: a, Message: fmt.Sprintf("cannot be combined with %s", b)}
		}
		return nil
	}
}

// matches requires a string parameter, when present, to satisfy validate.
func matches(name string, validate func(string) error) Check {
	return func(r *Request) error {
		v, ok := r.params[name]
		if !ok {
			return nil
		}
		s, isString := v.(string)
		if !isString {
			return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: fmt.Sprintf("expected a string, got %T", v)}
		}
		if err := validate(s); err != nil {
			var argErr *pkgerrs.ArgumentError
			if errors.As(err, &argErr) {
				argErr.Operation = r.operation
			}
			return err
		}
		return nil
	}
}
