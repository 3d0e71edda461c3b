package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/tokenstore"
	"github.com/arcitech/arcdash/pkg/domain"
)

// API paths.
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	ProfilePath  = "/api/users/me"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// Client is the Arc-i-Tech API client. Every call goes through the same
// request pipeline, so session handling is identical for all endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pipe       *pipeline
}

// Option configures a Client.
type Option func(*Client)

// WithSignals sets where 401/403 navigation signals go.
func WithSignals(e nav.Emitter) Option {
	return func(c *Client) { c.pipe.signals = e }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.pipe.logger = l
		}
	}
}

// WithEnvironment sets the deployment tag added to annotated errors.
func WithEnvironment(env string) Option {
	return func(c *Client) { c.pipe.env = env }
}

// WithDebug logs every successful response.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.pipe.debug = debug }
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock overrides the time source used for the cache buster and
// error timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.pipe.now = now }
}

// New creates a new API client. The token is read from store on every
// call; a nil store makes every call anonymous.
func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pipe: &pipeline{
			store:  store,
			logger: slog.Default(),
			now:    time.Now,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a session token. A 401 here means bad
// credentials, not an expired session.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, LoginPath, req, &resp, true); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegistrationResult, error) {
	var res domain.RegistrationResult
	if err := c.doRequest(ctx, http.MethodPost, RegisterPath, req, &res, true); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &res, nil
}

// GetProfile returns the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := c.get(ctx, ProfilePath, &p); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &p, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, anonymous bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.pipe.buildFailed(method, path, fmt.Errorf("marshal body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return c.pipe.buildFailed(method, path, err)
	}
	c.pipe.outbound(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.pipe.unreachable(req, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best-effort read for error message
		return c.pipe.rejected(req, resp.StatusCode, respBody, anonymous)
	}
	c.pipe.succeeded(req, resp)

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return c.pipe.undecodable(req, resp.StatusCode, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, false)
}
