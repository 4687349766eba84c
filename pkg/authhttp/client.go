package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/quill/pkg/notify"
	"github.com/aussiebroadwan/quill/pkg/slogx"
	"golang.org/x/time/rate"
)

// SessionStore is the part of the session the client reads and, on a
// successful renewal, writes.
type SessionStore interface {
	CredentialSource
	RefreshCredential(ctx context.Context) (string, error)
	ApplyRenewal(ctx context.Context, credential, refresh string) error
}

// Navigator moves the user to another route. Used to send the user to the
// entry route after a failed renewal.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Client is an authenticated HTTP client. Safe for concurrent use.
type Client struct {
	cfg     Config
	session SessionStore
	logger  *slog.Logger

	notifier  notify.Notifier
	navigator Navigator

	base    http.RoundTripper // the network, below every stage
	http    *http.Client      // full pipeline
	renewal *http.Client      // request id + logging only
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithTransport replaces the network transport (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// New builds a client from cfg. A nil sess disables the attacher; it must not
// be nil when RecoverExpiry is set.
func New(cfg Config, sess SessionStore, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg.withDefaults(),
		session: sess,
		logger:  slog.Default(),
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("client", c.cfg.Name)

	logged := &slogx.Transport{Base: c.base, Logger: c.logger}

	var pipeline http.RoundTripper = logged
	if c.cfg.AttachCredential && sess != nil {
		pipeline = &credentialTransport{
			base:        pipeline,
			source:      sess,
			placeholder: PlaceholderCredential,
			logger:      c.logger,
		}
	}
	if c.cfg.RateLimit > 0 {
		pipeline = &rateLimitTransport{
			base:    pipeline,
			limiter: rate.NewLimiter(c.cfg.RateLimit, c.cfg.RateBurst),
		}
	}
	pipeline = &requestIDTransport{base: pipeline, logger: c.logger}

	c.http = &http.Client{Transport: pipeline, Timeout: c.cfg.Timeout}
	c.renewal = &http.Client{
		Transport: &requestIDTransport{base: logged, logger: c.logger},
		Timeout:   c.cfg.Timeout,
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// URL joins path onto BaseURL and BasePath.
func (c *Client) URL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + c.cfg.BasePath + path
}

// NewRequest builds a request for path with the configured default headers.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Do sends req through the pipeline. A 2xx response is returned as is; the
// caller closes its body. Any other status becomes an *APIError, after a
// single expiry recovery for a 401 when the client is configured for it.
// Transport errors are returned unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.cfg.RecoverExpiry {
		if err := makeReplayable(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}

	if resp.StatusCode != http.StatusUnauthorized || !c.cfg.RecoverExpiry {
		c.trace(req.Context(), statePassthrough, req, "status", resp.StatusCode)
		return nil, newAPIError(resp)
	}

	return c.recoverExpiry(req, resp)
}

// DoJSON sends in as a JSON body (when non-nil) and decodes a 2xx response
// into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// DoForm posts form as application/x-www-form-urlencoded and decodes a 2xx
// response into out (when non-nil).
func (c *Client) DoForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// decodeJSON closes resp.Body. An empty body leaves out untouched.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
