package internal

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Verb is the HTTP method a request descriptor is sent with.
type Verb string

const (
	VerbGet    Verb = http.MethodGet
	VerbPost   Verb = http.MethodPost
	VerbDelete Verb = http.MethodDelete
)

func (v Verb) valid() bool {
	switch v {
	case VerbGet, VerbPost, VerbDelete:
		return true
	}
	return false
}

// Endpoint selects which Reddit host family a request targets.
type Endpoint int

const (
	// EndpointAuthenticated is the OAuth API host, oauth.reddit.com.
	EndpointAuthenticated Endpoint = iota
	// EndpointUnauthenticated is the public host, www.reddit.com. The token
	// grant lives here.
	EndpointUnauthenticated
)

func (e Endpoint) String() string {
	if e == EndpointUnauthenticated {
		return "unauthenticated"
	}
	return "authenticated"
}

// Check is a domain rule evaluated by Validate after the mandatory
// parameters are known to be present.
type Check func(r *Request) error

// Request describes a single Reddit API call: where it goes, which
// parameters it accepts and which rules those parameters must satisfy.
// Concrete descriptors are built by the New*Request constructors.
type Request struct {
	operation    string
	verb         Verb
	endpoint     Endpoint
	path         string
	allowed      []string
	mandatory    []string
	requiresAuth bool
	checks       []Check

	params  map[string]any
	headers map[string]string
}

// Operation returns the descriptor's name, used in errors and logs.
func (r *Request) Operation() string { return r.operation }

// Verb returns the HTTP method.
func (r *Request) Verb() Verb { return r.verb }

// Endpoint returns the host family the request targets.
func (r *Request) Endpoint() Endpoint { return r.endpoint }

// Path returns the endpoint path, beginning with a slash.
func (r *Request) Path() string { return r.path }

// RequiresAuth reports whether a valid bearer token must be present before
// the request is sent.
func (r *Request) RequiresAuth() bool { return r.requiresAuth }

// Parameter returns the value set for name, if any.
func (r *Request) Parameter(name string) (any, bool) {
	v, ok := r.params[name]
	return v, ok
}

// Parameters returns a copy of the current parameters.
func (r *Request) Parameters() map[string]any {
	return maps.Clone(r.params)
}

// Headers returns a copy of the extra headers attached to the request.
func (r *Request) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// AddParameter sets a parameter. Names outside the descriptor's whitelist
// and non-scalar values are rejected. An empty value (nil, "", zero or
// false) removes the parameter instead.
func (r *Request) AddParameter(name string, value any) error {
	if !slices.Contains(r.allowed, name) {
		return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: "unsupported parameter"}
	}
	if value != nil && !isScalar(value) {
		return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: fmt.Sprintf("non-scalar value of type %T", value)}
	}
	if isEmpty(value) {
		delete(r.params, name)
		return nil
	}
	if r.params == nil {
		r.params = make(map[string]any)
	}
	r.params[name] = value
	return nil
}

// AddHeader attaches an extra header to the request.
func (r *Request) AddHeader(name, value string) {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[name] = value
}

// Validate checks that the descriptor is fully configured, that every
// mandatory parameter is present and that the domain checks hold. It has
// no side effects and may be called any number of times.
func (r *Request) Validate() error {
	if !r.verb.valid() {
		return &pkgerrs.ConfigError{Field: "verb", Message: fmt.Sprintf("request %q has no valid HTTP verb", r.operation)}
	}
	if r.path == "" {
		return &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("request %q has no endpoint path", r.operation)}
	}
	for _, name := range r.mandatory {
		if _, ok := r.params[name]; !ok {
			return &pkgerrs.ArgumentError{Operation: r.operation, Parameter: name, Message: "missing mandatory parameter"}
		}
	}
	for _, check := range r.checks {
		if err := check(r); err != nil {
			return err
		}
	}
	return nil
}

// Encode renders the parameters as URL values, for a query string or a
// form body.
func (r *Request) Encode() url.Values {
	values := make(url.Values, len(r.params))
	for name, v := range r.params {
		values.Set(name, formatScalar(v))
	}
	return values
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float32:
		return x == 0
	case float64:
		return x == 0
	}
	n, ok := asInt(v)
	return ok && n == 0
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// asInt converts integer kinds and numeric strings to int64.
func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}
