package graw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/internal/logging"
	"github.com/jamesprial/graw/pkg/auth"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/storage"
	"github.com/jamesprial/graw/pkg/types"
)

const (
	// DefaultBaseURL is the host serving authenticated API calls.
	DefaultBaseURL = internal.DefaultAPIURL
	// DefaultAuthURL is the host serving the token grant.
	DefaultAuthURL = internal.DefaultAuthURL
	// DefaultTimeout bounds a whole HTTP exchange.
	DefaultTimeout = internal.DefaultTimeout
	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = internal.DefaultConnectTimeout

	// refillGrace is added to every quota wait so the call lands after the
	// server has refilled.
	refillGrace = time.Second
)

// Config holds the configuration for the Reddit client.
//
// ClientID, ClientSecret, Username, Password and UserAgent are mandatory;
// they identify a Reddit "script" application and the account it acts as.
//
//	config := &Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		Username:     "your-username",
//		Password:     "your-password",
//		UserAgent:    "linux:myapp:v1.0 (by /u/your-username)",
//	}
type Config struct {
	// ClientID and ClientSecret come from Reddit's app preferences page.
	ClientID     string
	ClientSecret string

	// Username and Password of the account. The account must be listed
	// as a developer of the app.
	Username string
	Password string

	// UserAgent identifies your application to Reddit.
	// Should follow format: "platform:app-id:version (by /u/username)"
	UserAgent string

	// AutoSleep controls what happens when the API quota is exhausted:
	// wait until it refills (true, the default when nil) or fail at once
	// with an *errors.RateLimitError.
	AutoSleep *bool

	// BaseURL and AuthURL override the API and token hosts.
	// Usually only tests change these.
	BaseURL string
	AuthURL string

	// HTTPClient replaces the transport entirely. Timeout and
	// ConnectTimeout are ignored when it is set.
	HTTPClient *http.Client

	// Timeout bounds a whole HTTP exchange. Defaults to DefaultTimeout.
	Timeout time.Duration
	// ConnectTimeout bounds connection establishment.
	// Defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// Store caches access tokens across process restarts. Optional.
	Store storage.TokenStore

	// RequestsPerMinute enables client-side pacing on top of Reddit's
	// quota headers. Zero disables pacing.
	RequestsPerMinute int
	// Burst is the pacing burst size. Defaults to 1 when pacing is on.
	Burst int

	// Logger for structured diagnostics.
	// Optional. A nil logger discards everything.
	Logger *slog.Logger
}

// Bool returns a pointer to v, for Config.AutoSleep.
func Bool(v bool) *bool { return &v }

// Client drives the request pipeline for one Reddit account. It keeps a
// usable bearer token, honours the API quota and dispatches requests.
//
// A Client is not safe for concurrent use: it owns the token and quota
// state of its account and processes one call at a time. Use one Client
// per goroutine for parallelism.
type Client struct {
	state     *auth.State
	sender    *internal.Sender
	parser    *internal.Parser
	store     storage.TokenStore
	limiter   *rate.Limiter
	logger    *slog.Logger
	autoSleep bool

	// rejected is the last token value the server answered 401 to. The
	// store may still hold it unexpired; it is never adopted again.
	rejected string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient validates config and builds a client. It performs no network
// activity; the first call that needs a token fetches one.
//
// Returns an *errors.ConfigError if config is nil, a mandatory field is
// empty, the user agent is malformed or a URL is not absolute.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config must not be nil"}
	}

	state, err := auth.NewState(auth.Credentials{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		UserAgent:    config.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	if err := internal.NewValidator().ValidateUserAgent(config.UserAgent); err != nil {
		return nil, err
	}
	if config.RequestsPerMinute < 0 {
		return nil, &pkgerrs.ConfigError{Field: "RequestsPerMinute", Message: "must not be negative"}
	}

	c := &Client{
		state:     state,
		parser:    internal.NewParser(),
		store:     config.Store,
		logger:    config.Logger,
		autoSleep: config.AutoSleep == nil || *config.AutoSleep,
		now:       time.Now,
		sleep:     sleepContext,
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	c.sender, err = internal.NewSender(internal.SenderConfig{
		HTTPClient:     config.HTTPClient,
		APIURL:         config.BaseURL,
		AuthURL:        config.AuthURL,
		Timeout:        config.Timeout,
		ConnectTimeout: config.ConnectTimeout,
		Now:            func() time.Time { return c.now() },
	})
	if err != nil {
		return nil, err
	}

	if config.RequestsPerMinute > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60), burst)
	}

	return c, nil
}

// RateLimit reports the quota as last seen in the server's headers.
// remaining may be negative when the server over-reports usage.
func (c *Client) RateLimit() (remaining int, refillAt time.Time) {
	b := c.state.Bucket()
	return b.Remaining(), b.RefillAt()
}

// Token returns the token currently held. It may be empty or expired.
func (c *Client) Token() *auth.AccessToken {
	return c.state.Token()
}

// Authenticate makes sure the client holds a valid token and returns it.
// A stored token is preferred; the token endpoint is asked only when the
// store has none.
func (c *Client) Authenticate(ctx context.Context) (*auth.AccessToken, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c.state.Token(), nil
}

// FetchAccessToken performs the password grant and returns the new token
// without installing it. Rejected credentials surface as an
// *errors.AuthError.
func (c *Client) FetchAccessToken(ctx context.Context) (*auth.AccessToken, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)
	return c.fetchAccessToken(ctx)
}

// Reauthenticate discards the held token, skips the store and installs a
// freshly granted one. Use it after an *errors.AuthError from a call that
// was sent with a token the server no longer accepts.
func (c *Client) Reauthenticate(ctx context.Context) (*auth.AccessToken, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	if held := c.state.Token().Token(); held != "" {
		c.rejected = held
	}
	if err := c.acquireToken(ctx); err != nil {
		return nil, err
	}
	return c.state.Token(), nil
}

func (c *Client) fetchAccessToken(ctx context.Context) (*auth.AccessToken, error) {
	creds := c.state.Credentials()

	req, err := internal.NewPasswordGrant(creds)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	return internal.ReadGrant(body, creds.Username, c.now())
}

// authenticate ensures the state holds a valid token. The store is
// advisory: its failures are logged and never fail the call.
func (c *Client) authenticate(ctx context.Context) error {
	if c.state.Token().IsValidAt(c.now()) {
		return nil
	}

	logger := logging.FromContext(ctx)
	username := c.state.Credentials().Username

	if c.store != nil {
		tok, err := c.store.RetrieveLatestValid(ctx, username)
		switch {
		case err == nil && c.rejected != "" && tok.Token() == c.rejected:
			logger.Debug("stored access token was rejected by the server, ignoring")
		case err == nil && tok.IsValidAt(c.now()):
			logger.Debug("using stored access token", "token", tok)
			return c.state.ReplaceToken(tok)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			logger.Warn("token store lookup failed", "error", err)
		}
	}

	return c.acquireToken(ctx)
}

// acquireToken runs the password grant, installs the result and hands it
// to the store.
func (c *Client) acquireToken(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	tok, err := c.fetchAccessToken(ctx)
	if err != nil {
		return err
	}
	if !tok.IsValidAt(c.now()) {
		return &pkgerrs.AuthError{Operation: "authenticate", Message: "token endpoint returned a token that is already expired"}
	}
	if err := c.state.ReplaceToken(tok); err != nil {
		return err
	}
	logger.Info("fetched new access token", "token", tok)

	if c.store != nil {
		if err := c.store.Persist(ctx, tok); err != nil {
			logger.Warn("failed to persist access token", "error", err)
		}
		if err := c.store.PurgeOlderThan(ctx, storage.DefaultPurgeAge); err != nil {
			logger.Warn("failed to purge expired access tokens", "error", err)
		}
	}
	return nil
}

// send runs req through the pipeline: validate, authenticate when
// required, wait out an exhausted quota, pace, spend one unit of quota,
// transmit.
func (c *Client) send(ctx context.Context, req *internal.Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.RequiresAuth() {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	if err := c.waitForQuota(ctx, req.Operation()); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &pkgerrs.RequestError{Operation: req.Operation(), Message: "waiting for pacing limiter", Err: err}
		}
	}

	c.state.Bucket().Drip()

	body, err := c.sender.Send(ctx, req, c.state)
	var authErr *pkgerrs.AuthError
	if req.RequiresAuth() && errors.As(err, &authErr) {
		c.dropToken(ctx)
	}
	return body, err
}

// dropToken forgets a token the server refused so the next authenticated
// call starts a fresh acquisition. The failed call is not retried.
func (c *Client) dropToken(ctx context.Context) {
	held := c.state.Token()
	if held.Token() == "" {
		return
	}
	c.rejected = held.Token()
	// ReplaceToken only rejects nil.
	_ = c.state.ReplaceToken(auth.NewAccessToken(held.Username()))
	logging.FromContext(ctx).Warn("server rejected the access token, it will be replaced on the next call", "token", held)
}

func (c *Client) waitForQuota(ctx context.Context, op string) error {
	bucket := c.state.Bucket()
	now := c.now()
	if !bucket.IsEmptyAt(now) {
		return nil
	}

	refillAt := bucket.RefillAt()
	if !c.autoSleep {
		return &pkgerrs.RateLimitError{Operation: op, RefillAt: refillAt}
	}

	wait := refillAt.Sub(now) + refillGrace
	logging.FromContext(ctx).Info("API quota exhausted, sleeping until refill",
		"operation", op,
		"refill_at", refillAt,
		"wait", wait,
	)

	if err := c.sleep(ctx, wait); err != nil {
		return &pkgerrs.RequestError{Operation: op, Message: "interrupted while waiting for quota refill", Err: err}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchSubreddit retrieves information about a subreddit: subscriber
// count, description, type and submission settings.
//
// name is given without the "r/" prefix. A malformed name fails with an
// *errors.ArgumentError before any network activity.
func (c *Client) FetchSubreddit(ctx context.Context, name string) (*types.Subreddit, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	req, err := internal.NewSubredditAboutRequest(name)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	thing, err := c.parser.ParseThing(req.Operation(), body)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseSubreddit(req.Operation(), thing)
}

// FetchUser retrieves the public profile of a Reddit account.
func (c *Client) FetchUser(ctx context.Context, username string) (*types.Account, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	req, err := internal.NewUserAboutRequest(username)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	thing, err := c.parser.ParseThing(req.Operation(), body)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseAccount(req.Operation(), thing)
}

// FetchMyAccount returns the account the client authenticates as. It is a
// cheap way to verify the credentials.
func (c *Client) FetchMyAccount(ctx context.Context) (*types.Account, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	req := internal.NewMeRequest()
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseMe(req.Operation(), body)
}

// FetchInfo looks up links, comments and subreddits by fullname
// ("t3_abc123", "t1_def456", "t5_2qh1i"). At most 100 fullnames may be
// given per call.
func (c *Client) FetchInfo(ctx context.Context, fullnames ...string) (*types.InfoResponse, error) {
	ctx, _ = logging.WithRequestID(ctx, c.logger)

	req := internal.NewInfoRequest()
	if len(fullnames) > maxInfoFullnames {
		return nil, &pkgerrs.ArgumentError{Operation: req.Operation(), Parameter: "id", Message: "at most 100 fullnames per call"}
	}
	if err := req.AddParameter("id", strings.Join(fullnames, ",")); err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.parser.ExtractInfo(req.Operation(), body)
}

// FetchLink looks up a single link by fullname. Returns an
// *errors.NotFoundError when Reddit knows no such link.
func (c *Client) FetchLink(ctx context.Context, fullname string) (*types.Link, error) {
	if !strings.HasPrefix(fullname, types.KindLink+"_") {
		return nil, &pkgerrs.ArgumentError{Operation: "info", Parameter: "id", Message: "link fullname must start with t3_"}
	}

	info, err := c.FetchInfo(ctx, fullname)
	if err != nil {
		return nil, err
	}
	if len(info.Links) == 0 {
		return nil, &pkgerrs.NotFoundError{Operation: "info", Body: fullname}
	}
	return info.Links[0], nil
}

const maxInfoFullnames = 100
