package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestState(t *testing.T) *auth.State {
	t.Helper()
	state, err := auth.NewState(auth.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "alice",
		Password:     "hunter2",
		UserAgent:    "graw-test/1.0",
	})
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	return state
}

func newTestSender(t *testing.T, server *httptest.Server) *Sender {
	t.Helper()
	s, err := NewSender(SenderConfig{
		HTTPClient: server.Client(),
		APIURL:     server.URL + "/api-host",
		AuthURL:    server.URL + "/auth-host",
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewSender returned error: %v", err)
	}
	return s
}

func TestSend_UpdatesBucketOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Remaining", "42")
		w.Header().Set("X-Ratelimit-Reset", "120")
		_, _ = io.WriteString(w, `{"kind":"t2","data":{}}`)
	}))
	defer server.Close()

	state := newTestState(t)
	body, err := newTestSender(t, server).Send(context.Background(), NewMeRequest(), state)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if string(body) != `{"kind":"t2","data":{}}` {
		t.Errorf("unexpected body %q", body)
	}

	bucket := state.Bucket()
	if bucket.Remaining() != 42 {
		t.Errorf("remaining = %d, want 42", bucket.Remaining())
	}
	if want := fixedNow.Add(120 * time.Second); !bucket.RefillAt().Equal(want) {
		t.Errorf("refillAt = %v, want %v", bucket.RefillAt(), want)
	}
}

func TestSend_TruncatesFractionalRemaining(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Remaining", "41.7")
		w.Header().Set("X-Ratelimit-Reset", "30")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	state := newTestState(t)
	if _, err := newTestSender(t, server).Send(context.Background(), NewMeRequest(), state); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if state.Bucket().Remaining() != 41 {
		t.Errorf("remaining = %d, want 41", state.Bucket().Remaining())
	}
}

func TestSend_IgnoresIncompleteRateHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Remaining", "5")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	state := newTestState(t)
	if _, err := newTestSender(t, server).Send(context.Background(), NewMeRequest(), state); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if state.Bucket().Remaining() != auth.DefaultBucketVolume {
		t.Errorf("bucket changed without a reset header: %d", state.Bucket().Remaining())
	}
}

func TestSend_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { var e *pkgerrs.AuthError; return errors.As(err, &e) && e.StatusCode == 401 }},
		{http.StatusForbidden, func(err error) bool { var e *pkgerrs.ForbiddenError; return errors.As(err, &e) }},
		{http.StatusNotFound, func(err error) bool { var e *pkgerrs.NotFoundError; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *pkgerrs.ServerError; return errors.As(err, &e) }},
		{http.StatusTeapot, func(err error) bool {
			var e *pkgerrs.APIError
			return errors.As(err, &e) && e.StatusCode == http.StatusTeapot && e.Body == `{"reason":"short and stout"}`
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Ratelimit-Remaining", "1")
				w.Header().Set("X-Ratelimit-Reset", "600")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"reason":"short and stout"}`)
			}))
			defer server.Close()

			state := newTestState(t)
			_, err := newTestSender(t, server).Send(context.Background(), NewMeRequest(), state)
			if !tt.check(err) {
				t.Fatalf("unexpected error for status %d: %T %v", tt.status, err, err)
			}
			if state.Bucket().Remaining() != auth.DefaultBucketVolume {
				t.Errorf("bucket must not change on status %d", tt.status)
			}
		})
	}
}

func TestSend_RejectsNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer server.Close()

	_, err := newTestSender(t, server).Send(context.Background(), NewMeRequest(), newTestState(t))
	var protoErr *pkgerrs.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %T %v", err, err)
	}
	if protoErr.Body != `<html>maintenance</html>` {
		t.Errorf("unexpected body %q", protoErr.Body)
	}
}

func TestSend_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sender := newTestSender(t, server)
	server.Close()

	_, err := sender.Send(context.Background(), NewMeRequest(), newTestState(t))
	var reqErr *pkgerrs.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T %v", err, err)
	}
	if !pkgerrs.IsRetryable(err) {
		t.Error("transport failures should be retryable")
	}
}

func TestSend_ValidationFailureMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	req, _ := NewTopLinksRequest("golang")
	_, err := newTestSender(t, server).Send(context.Background(), req, newTestState(t))

	var argErr *pkgerrs.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no transport calls, got %d", calls.Load())
	}
}

func TestSend_Identity(t *testing.T) {
	var gotAuth, gotUA, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	sender := newTestSender(t, server)
	state := newTestState(t)

	req, _ := NewNewLinksRequest("golang")
	_ = req.AddParameter(ParamLimit, 10)

	if _, err := sender.Send(context.Background(), req, state); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if gotUA != "graw-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAuth != "Basic Y2xpZW50LWlkOmNsaWVudC1zZWNyZXQ=" {
		t.Errorf("expected basic credentials without a valid token, got %q", gotAuth)
	}
	if gotPath != "/api-host/r/golang/new" || gotQuery != "limit=10" {
		t.Errorf("unexpected target %s?%s", gotPath, gotQuery)
	}

	// An expired token is not presented.
	_ = state.ReplaceToken(auth.RestoreAccessToken("alice", "stale", "bearer", "*", fixedNow.Add(30*time.Second)))
	_, _ = sender.Send(context.Background(), req, state)
	if gotAuth != "Basic Y2xpZW50LWlkOmNsaWVudC1zZWNyZXQ=" {
		t.Errorf("expired token must not be sent, got %q", gotAuth)
	}

	_ = state.ReplaceToken(auth.RestoreAccessToken("alice", "fresh", "bearer", "*", fixedNow.Add(time.Hour)))
	_, _ = sender.Send(context.Background(), req, state)
	if gotAuth != "bearer fresh" {
		t.Errorf("Authorization = %q, want bearer fresh", gotAuth)
	}
}

func TestSend_PostsFormToAuthHost(t *testing.T) {
	var gotPath, gotForm, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotForm = string(b)
		_, _ = io.WriteString(w, `{"access_token":"abc","expires_in":3600,"scope":"*","token_type":"bearer"}`)
	}))
	defer server.Close()

	state := newTestState(t)
	req, err := NewPasswordGrant(state.Credentials())
	if err != nil {
		t.Fatalf("NewPasswordGrant returned error: %v", err)
	}

	if _, err := newTestSender(t, server).Send(context.Background(), req, state); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if gotPath != "/auth-host/api/v1/access_token" {
		t.Errorf("path = %q", gotPath)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotForm != "grant_type=password&password=hunter2&username=alice" {
		t.Errorf("form = %q", gotForm)
	}
}

func TestNewSender_RejectsRelativeURL(t *testing.T) {
	_, err := NewSender(SenderConfig{APIURL: "/relative"})
	var cfgErr *pkgerrs.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "APIURL" {
		t.Fatalf("expected APIURL ConfigError, got %v", err)
	}
}
