package internal

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jamesprial/graw/internal/logging"
	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const (
	// DefaultAPIURL serves authenticated requests.
	DefaultAPIURL = "https://oauth.reddit.com"
	// DefaultAuthURL serves the token grant and other unauthenticated requests.
	DefaultAuthURL = "https://www.reddit.com"

	DefaultTimeout        = 15 * time.Second
	DefaultConnectTimeout = 15 * time.Second

	headerRemaining = "X-Ratelimit-Remaining"
	headerReset     = "X-Ratelimit-Reset"

	ParseFloatBitSize = 64
)

// SenderConfig configures a Sender. Zero values select the defaults.
type SenderConfig struct {
	// HTTPClient overrides the transport entirely. Timeout and
	// ConnectTimeout are ignored when it is set.
	HTTPClient     *http.Client
	APIURL         string
	AuthURL        string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// Now is the clock used for token validity and quota updates.
	Now func() time.Time
}

// Sender transmits request descriptors to Reddit and classifies the
// response. It keeps no per-call state and never retains the
// authentication state after Send returns.
type Sender struct {
	client  *http.Client
	apiURL  *url.URL
	authURL *url.URL
	now     func() time.Time
}

// NewSender returns a Sender for cfg.
func NewSender(cfg SenderConfig) (*Sender, error) {
	apiURL, err := parseBaseURL("APIURL", cfg.APIURL, DefaultAPIURL)
	if err != nil {
		return nil, err
	}
	authURL, err := parseBaseURL("AuthURL", cfg.AuthURL, DefaultAuthURL)
	if err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = newHTTPClient(cfg.Timeout, cfg.ConnectTimeout)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Sender{client: client, apiURL: apiURL, authURL: authURL, now: now}, nil
}

func parseBaseURL(field, raw, fallback string) (*url.URL, error) {
	if raw == "" {
		raw = fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("URL %q must be absolute", raw)}
	}
	return u, nil
}

func newHTTPClient(timeout, connectTimeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext

	return &http.Client{Timeout: timeout, Transport: transport}
}

// Send validates req, transmits it with the identity held by state and
// returns the raw JSON body of a 200 response. On a 200 the quota bucket is
// updated from the rate limit headers; on any other status it is left alone.
func (s *Sender) Send(ctx context.Context, req *Request, state *auth.State) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With("operation", req.Operation())
	creds := state.Credentials()

	httpReq, err := s.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", creds.UserAgent)
	httpReq.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	if tok := state.Token(); tok.IsValidAt(s.now()) {
		// Replaces the basic credentials set above.
		httpReq.Header.Set("Authorization", "bearer "+tok.Token())
	}
	for name, value := range req.Headers() {
		httpReq.Header.Set(name, value)
	}

	logger.Debug("sending request", "method", httpReq.Method, "url", redactQuery(httpReq.URL))

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Operation(), URL: redactQuery(httpReq.URL), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Operation(), URL: redactQuery(httpReq.URL), Message: "failed to read response body", Err: err}
	}

	logger.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := classifyStatus(req.Operation(), resp.StatusCode, body); err != nil {
		return nil, err
	}

	s.applyRateHeaders(ctx, resp.Header, state.Bucket())

	if !gjson.ValidBytes(body) {
		return nil, &pkgerrs.ProtocolError{Operation: req.Operation(), Body: string(body)}
	}

	return body, nil
}

func (s *Sender) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	base := s.apiURL
	if req.Endpoint() == EndpointUnauthenticated {
		base = s.authURL
	}
	target := base.JoinPath(req.Path())

	var body io.Reader
	values := req.Encode()
	if req.Verb() == VerbPost {
		body = strings.NewReader(values.Encode())
	} else if len(values) > 0 {
		target.RawQuery = values.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Verb()), target.String(), body)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: req.Operation(), Message: "failed to build request", Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return httpReq, nil
}

func classifyStatus(op string, status int, body []byte) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &pkgerrs.AuthError{
			Operation:  op,
			StatusCode: status,
			Body:       string(body),
			Message:    "unauthorized; check the password or token",
		}
	case http.StatusForbidden:
		return &pkgerrs.ForbiddenError{Operation: op, Body: string(body)}
	case http.StatusNotFound:
		return &pkgerrs.NotFoundError{Operation: op, Body: string(body)}
	case http.StatusInternalServerError:
		return &pkgerrs.ServerError{Operation: op, StatusCode: status, Body: string(body)}
	}

	apiErr := &pkgerrs.APIError{Operation: op, StatusCode: status, Body: string(body)}
	if msg := gjson.GetBytes(body, "message"); msg.Exists() {
		apiErr.Message = msg.String()
		apiErr.ErrorCode = gjson.GetBytes(body, "error").String()
	}
	return apiErr
}

// applyRateHeaders overwrites the bucket when both quota headers are
// present and parse. Remaining may be fractional and is truncated.
func (s *Sender) applyRateHeaders(ctx context.Context, h http.Header, bucket *auth.RateLimitBucket) {
	remainingHeader := h.Get(headerRemaining)
	resetHeader := h.Get(headerReset)
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, errRemaining := strconv.ParseFloat(remainingHeader, ParseFloatBitSize)
	reset, errReset := strconv.ParseFloat(resetHeader, ParseFloatBitSize)
	if errRemaining != nil || errReset != nil {
		logging.FromContext(ctx).Warn("ignoring malformed rate limit headers",
			"remaining", remainingHeader, "reset", resetHeader)
		return
	}

	bucket.UpdateAt(s.now(), int(remaining), int(reset))
	logging.FromContext(ctx).Debug("rate limit updated",
		"remaining", bucket.Remaining(), "refill_at", bucket.RefillAt())
}

// redactQuery strips the query string so parameters never reach logs.
func redactQuery(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}
