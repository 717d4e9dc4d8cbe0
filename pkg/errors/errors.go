// Package errors defines the error taxonomy used throughout the graw pipeline.
//
// Every failure raised by the pipeline is one of the types below. Callers
// branch on kind with errors.As, or use IsRetryable and IsTimeout for the
// common "should I try again" decisions.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration or a
// request descriptor that was never fully configured. It is a programmer
// error and is never retryable.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// ArgumentError indicates malformed or missing request parameters. It is
// always raised before any network activity takes place.
type ArgumentError struct {
	// Operation is the request descriptor that rejected the argument
	Operation string
	// Parameter is the offending parameter name, if any
	Parameter string
	// Message contains the detailed error message
	Message string
}

func (e *ArgumentError) Error() string {
	var parts []string
	if e.Operation != "" {
		parts = append(parts, e.Operation)
	}
	if e.Parameter != "" {
		parts = append(parts, "parameter "+e.Parameter)
	}
	if len(parts) == 0 {
		return "argument error: " + e.Message
	}
	return fmt.Sprintf("argument error (%s): %s", joinParts(parts, ", "), e.Message)
}

// AuthError indicates an authentication failure: rejected credentials at the
// token endpoint, or a 401 on an authenticated call.
type AuthError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string
	parts = append(parts, "auth error")

	if e.Operation != "" {
		parts = append(parts, "operation "+e.Operation)
	}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}

	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", truncate(e.Body)))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted when the client is not ready.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates the transport itself failed: no response, a
// timeout, DNS or TLS failure. The caller may retry at its discretion.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	// Use Message if available, otherwise use Err.Error()
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying transport failure was a timeout.
func (e *RequestError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return e.Err != nil && strings.Contains(e.Err.Error(), "timed out")
}

// ParseError indicates a response that could not be mapped into the
// expected shape, such as a token grant missing a required key.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	// Use Message if available, otherwise use Err.Error()
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates the server answered 200 with a body that is not
// valid JSON. The upstream contract was violated; it is not retried.
type ProtocolError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// Body contains the raw response body
	Body string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: response was not valid JSON: %q", e.Operation, truncate(e.Body))
}

// APIError represents a non-200 response that has no more specific kind.
type APIError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// StatusCode is the HTTP status code
	StatusCode int
	// ErrorCode is the error code from Reddit (if available)
	ErrorCode string
	// Message is the error message from Reddit
	Message string
	// Body contains the raw response body for diagnostics
	Body string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("reddit API error during %s (status %d, code %s): %s", e.Operation, e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("API request %s failed with status %d: %s", e.Operation, e.StatusCode, truncate(e.Body))
}

// ForbiddenError represents a 403: the account lacks permission for the
// target resource. Not retryable.
type ForbiddenError struct {
	Operation string
	Body      string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden during %s: status 403: %s", e.Operation, truncate(e.Body))
}

// NotFoundError represents a 404: the target resource does not exist.
type NotFoundError struct {
	Operation string
	Body      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found during %s: status 404: %s", e.Operation, truncate(e.Body))
}

// ServerError represents a 500 from the API. Callers may retry with backoff;
// the pipeline never retries internally.
type ServerError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error during %s: status %d: %s", e.Operation, e.StatusCode, truncate(e.Body))
}

// RateLimitError is raised when the quota bucket is exhausted and automatic
// sleeping is disabled. Retry after RefillAt.
type RateLimitError struct {
	Operation string
	RefillAt  time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded during %s; bucket refills at %s", e.Operation, e.RefillAt.UTC().Format(time.RFC3339))
}

// StorageError wraps a failure in the token storage collaborator.
type StorageError struct {
	// Operation describes what the store was doing, e.g. "persist"
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *StorageError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("storage error during %s: %s", e.Operation, msg)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ClientError indicates a problem with the HTTP client operations.
type ClientError struct {
	// Operation describes what the client was trying to do
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ClientError) Error() string {
	if e.Err != nil && e.Operation == "" && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("client error: %v", e.Err)
	}
	if e.Operation != "" && e.Message != "" {
		return fmt.Sprintf("client error during %s: %s", e.Operation, e.Message)
	}
	if e.Operation != "" {
		return fmt.Sprintf("client error during %s", e.Operation)
	}
	if e.Message != "" {
		return fmt.Sprintf("client error: %s", e.Message)
	}
	return "client error"
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a kind the caller may reasonably retry:
// an exhausted quota, an upstream 500, or a transport failure. Nothing the
// caller cancelled is retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var (
		rateErr   *RateLimitError
		serverErr *ServerError
		reqErr    *RequestError
	)
	return errors.As(err, &rateErr) || errors.As(err, &serverErr) || errors.As(err, &reqErr)
}

// IsTimeout reports whether err was caused by a transport timeout.
func IsTimeout(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Timeout()
	}
	return false
}

const maxBodyInMessage = 512

func truncate(s string) string {
	if len(s) <= maxBodyInMessage {
		return s
	}
	cut := maxBodyInMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
