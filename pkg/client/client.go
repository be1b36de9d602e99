// Package client is the Go SDK for the corredora API. It owns the session
// lifecycle: it keeps the access token fresh, carries the refresh cookie in
// its jar, and retries a request once after a transparent renewal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout bounds each HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultSkew renews the access token this long before its exp, so a
	// request never leaves with a token about to die in flight.
	DefaultSkew = 30 * time.Second
)

// Client talks to one corredora API origin on behalf of one session.
// Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store

	skew           time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	// refreshSF collapses concurrent renewals into one HTTP call.
	refreshSF singleflight.Group
}

type Option func(*Client)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpc.Timeout = d
		c.refreshTimeout = d
	}
}

// WithSkew sets how long before exp a token counts as stale.
func WithSkew(d time.Duration) Option {
	return func(c *Client) { c.skew = d }
}

// WithClock overrides the time source. Tests use this to cross expiry
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithTransport swaps the underlying RoundTripper. The cookie jar stays.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpc.Transport = rt }
}

// New builds a client against baseURL. The store may already hold a
// session from a previous run; the refresh cookie, however, only exists
// after a Login through this client's jar.
func New(baseURL string, store Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpc:          &http.Client{Jar: jar, Timeout: DefaultTimeout},
		store:          store,
		skew:           DefaultSkew,
		refreshTimeout: DefaultTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the current session, if any.
func (c *Client) Session() (Session, bool) { return c.store.Get() }

// OnSessionChange registers fn for session updates. Returns a cancel func.
func (c *Client) OnSessionChange(fn func(Session, bool)) func() {
	return c.store.Subscribe(fn)
}

// tokenExpiry reads the exp claim without verifying the signature. The
// server re-verifies everything; the client only needs the deadline.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

// EnsureFreshToken renews the access token if it is absent from the exp
// window: expired, expiring within the skew, or unparseable. With no
// session at all it is a no-op. Concurrent callers share one renewal.
func (c *Client) EnsureFreshToken(ctx context.Context) error {
	sess, ok := c.store.Get()
	if !ok || sess.Token == "" {
		return nil
	}
	if exp, err := tokenExpiry(sess.Token); err == nil && c.now().Add(c.skew).Before(exp) {
		return nil
	}
	return c.sharedRefresh(ctx)
}

// sharedRefresh funnels all callers into a single in-flight renewal. A
// caller whose context dies only stops waiting; the renewal itself runs on
// its own deadline and still lands in the store for everyone else.
func (c *Client) sharedRefresh(ctx context.Context) error {
	ch := c.refreshSF.DoChan("refresh", func() (any, error) {
		return nil, c.refresh()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return classifyTransport(ctx.Err())
	}
}

func (c *Client) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_ = c.store.Clear()
		return fmt.Errorf("%w: refresh rejected with status %d", ErrSessionExpired, resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		_ = c.store.Clear()
		return fmt.Errorf("%w: refresh response missing token", ErrSessionExpired)
	}

	// Merge, don't replace: client-side user fields survive a renewal.
	sess, _ := c.store.Get()
	sess.Token = body.Token
	return c.store.Set(sess)
}

// Do sends an authenticated JSON request. On 401/403 it renews the token
// and resends exactly once; a second auth failure clears the session. A
// 2xx body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	if err := c.EnsureFreshToken(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	resp, err := c.send(ctx, method, path, payload, c.token())
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		drain(resp)
		if err := c.sharedRefresh(ctx); err != nil {
			return err
		}
		resp, err = c.send(ctx, method, path, payload, c.token())
		if err != nil {
			return classifyTransport(err)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			drain(resp)
			_ = c.store.Clear()
			return ErrSessionExpired
		}
	}

	return decodeResponse(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpc.Do(req)
}

func (c *Client) token() string {
	sess, _ := c.store.Get()
	return sess.Token
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

/* ===================== AUTH FLOWS ===================== */

// Credentials identify an account by exactly one of username or email.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"mail,omitempty"`
	Password string `json:"password"`
}

// Login authenticates and installs the session. The refresh token arrives
// as an HTTP-only cookie and stays in the jar.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return Session{}, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/login", payload, "")
	if err != nil {
		return Session{}, classifyTransport(err)
	}

	var body struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	if err := decodeResponse(resp, &body); err != nil {
		return Session{}, err
	}

	sess := Session{Token: body.Token, User: body.User}
	if err := c.store.Set(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Logout tells the server to drop the refresh cookie and clears the local
// session even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/logout", nil, c.token())
	_ = c.store.Clear()
	if err != nil {
		return classifyTransport(err)
	}
	return decodeResponse(resp, nil)
}

// ForgotPassword requests a reset email. The server answers ok for unknown
// addresses too, so there is nothing to inspect on success.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload, err := json.Marshal(map[string]string{"mail": email})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/forgot", payload, "")
	if err != nil {
		return classifyTransport(err)
	}
	return decodeResponse(resp, nil)
}

// ResetPassword redeems a reset token from the emailed link.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	payload, err := json.Marshal(map[string]string{"token": token, "newPassword": newPassword})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/reset", payload, "")
	if err != nil {
		return classifyTransport(err)
	}
	return decodeResponse(resp, nil)
}

// CurrentUser fetches the authenticated account and folds it into the
// stored session.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var body struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/auth/user", nil, &body); err != nil {
		return User{}, err
	}

	if sess, ok := c.store.Get(); ok {
		extra := sess.User.Extra
		sess.User = body.User
		sess.User.Extra = extra
		_ = c.store.Set(sess)
	}
	return body.User, nil
}
