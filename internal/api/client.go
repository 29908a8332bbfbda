// Package api is the thin HTTP client for the back-office REST backend.
//
// Every screen depends on two cross-cutting contracts here: the bearer
// token is attached to every request, and a 401 anywhere surfaces
// ErrSessionExpired plus a single session-expired callback the app
// subscribes to. Nothing in this package redirects or exits on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice-cli/internal/session"
)

// ErrSessionExpired marks a 401 from the backend. Callers treat it as
// "log in again", never as a per-form error.
var ErrSessionExpired = errors.New("session expired")

// Error is a non-401 request failure. Message carries the server-provided
// text verbatim when the backend sent one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to one backend instance. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger

	mu    sync.Mutex
	token string
	// tokenExp is the JWT exp claim when the token carries one; requests
	// past it are doomed to 401 and are skipped locally.
	tokenExp     time.Time
	onExpired    func()
	expiredFired bool
}

type Option func(*Client)

// WithLogger enables request-level diagnostics (method, path, status,
// duration). Disabled by default; the TUI stays quiet.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken installs the bearer token and re-arms the session-expired hook.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.tokenExp = time.Time{}
	if exp, ok := session.TokenExpiry(c.token); ok {
		c.tokenExp = exp
	}
	c.expiredFired = false
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// OnSessionExpired registers the one cross-cutting 401 handler. It fires at
// most once per installed token.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

func (c *Client) fireExpired() {
	c.mu.Lock()
	fn := c.onExpired
	fired := c.expiredFired
	c.expiredFired = true
	c.token = ""
	c.mu.Unlock()
	if fn != nil && !fired {
		fn()
	}
}

// envelope is the backend's common response wrapper.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Total   *int            `json:"total"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do runs one JSON request. body (when non-nil) is JSON-encoded; the
// response envelope's result is decoded into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (*envelope, error) {
	c.mu.Lock()
	tok := c.token
	exp := c.tokenExp
	c.mu.Unlock()

	// A token past its exp claim can only produce a 401; fail locally and
	// fire the same expiry path without the round trip.
	if tok != "" && !exp.IsZero() && time.Now().After(exp) {
		c.fireExpired()
		return nil, ErrSessionExpired
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logf(req, 0, start, err)
		return nil, err
	}
	defer resp.Body.Close()
	c.logf(req, resp.StatusCode, start, nil)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.fireExpired()
		return nil, ErrSessionExpired
	}

	var env envelope
	// Tolerate non-envelope bodies; error paths below fall back to status text.
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = strings.TrimSpace(env.Error)
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return &env, nil
}

func (c *Client) logf(req *http.Request, status int, start time.Time, err error) {
	if c.log == nil {
		return
	}
	attrs := []any{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", status),
		slog.Duration("dur", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		c.log.Error("request failed", attrs...)
		return
	}
	c.log.Debug("request", attrs...)
}

// Login exchanges credentials for a bearer token and installs it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var res struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
	}
	if _, err := c.do(ctx, http.MethodPost, "auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &res); err != nil {
		return "", err
	}
	tok := res.AccessToken
	if tok == "" {
		tok = res.Token
	}
	if strings.TrimSpace(tok) == "" {
		return "", errors.New("login response missing token")
	}
	c.SetToken(tok)
	return tok, nil
}
