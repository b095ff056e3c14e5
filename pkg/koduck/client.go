// Package koduck is the Go SDK for the koduck backend API.
//
// Every call runs the same pipeline: attach the bearer token, send, check
// the HTTP status, decode the {code, message, data} envelope, and rewrite the
// payload keys from snake_case to camelCase. Callers get the payload only.
package koduck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"koduck/pkg/envelope"
	"koduck/pkg/keycase"
	"koduck/pkg/value"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-request identifier for correlating client
// logs with the server's trace. Callers may set their own via Request.Header.
const RequestIDHeader = "X-Request-ID"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 16 << 20

// Client provides a Go SDK for interacting with the koduck API. It is safe
// for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	session        Session
	log            *slog.Logger
	userAgent      string
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithSession sets the credential source. Without one, requests are sent
// unauthenticated.
func WithSession(s Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithUnauthorizedHandler registers fn to run after a 401 response has
// cleared the session. Programs use it to send the user to their login
// surface.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new koduck API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		session:    noSession{},
		log:        slog.Default(),
		userAgent:  "koduck-go",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one API call.
type Request struct {
	Method string
	Path   string

	// Query parameters are sent with their names as given; the backend binds
	// them by their camelCase names.
	Query url.Values

	// Body is converted with value.FromAny and its keys rewritten to
	// snake_case. Nil sends no body.
	Body any

	// Header is merged into the outgoing request headers.
	Header http.Header

	// Timeout overrides the client timeout for this call when positive.
	Timeout time.Duration
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (value.Value, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (value.Value, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (value.Value, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (value.Value, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (value.Value, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Do runs r through the request pipeline and returns the normalized payload.
// A successful reply without a data field yields the Absent value.
//
// Errors are *NetworkError when no response arrived (a canceled ctx is
// returned as context.Canceled instead), *HTTPError for a
// non-2xx status (wrapping ErrUnauthorized for 401, after the session has
// been cleared), and *envelope.Error when the envelope reports failure. The
// call is attempted exactly once.
func (c *Client) Do(ctx context.Context, r *Request) (value.Value, error) {
	start := time.Now()

	req, cancel, err := c.newRequest(ctx, r)
	if err != nil {
		return value.Value{}, err
	}
	defer cancel()

	c.attachAuth(req)
	reqID := req.Header.Get(RequestIDHeader)

	status, body, err := c.send(req, r)
	if err != nil {
		c.log.Warn("request failed", "method", r.Method, "path", r.Path, "request_id", reqID, "error", err)
		return value.Value{}, err
	}
	c.log.Debug("request", "method", r.Method, "path", r.Path, "status", status,
		"request_id", reqID, "elapsed", time.Since(start))

	if err := checkStatus(status, body); err != nil {
		if IsUnauthorized(err) {
			c.handleUnauthorized()
		}
		return value.Value{}, err
	}
	if status == http.StatusNoContent {
		return value.Value{}, nil
	}

	data, err := envelope.Decode(body)
	if err != nil {
		return value.Value{}, err
	}
	return keycase.KeysToCamel(data), nil
}

// ---------------------------------------------------------------------------
// Pipeline stages
// ---------------------------------------------------------------------------

// newRequest builds the outgoing request. The returned cancel func releases
// the per-request timeout and must be called once the body has been read.
func (c *Client) newRequest(ctx context.Context, r *Request) (*http.Request, context.CancelFunc, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if q := r.Query.Encode(); q != "" {
		u += "?" + q
	}

	var body io.Reader
	if r.Body != nil {
		b, err := encodeBody(r.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s %s body: %w", method, r.Path, err)
		}
		body = bytes.NewReader(b)
	}

	timeout := c.timeout
	if r.Timeout > 0 {
		timeout = r.Timeout
	}
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("building %s %s: %w", method, r.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return req, cancel, nil
}

// attachAuth sets the bearer token when the session holds a non-empty one.
func (c *Client) attachAuth(req *http.Request) {
	if tok, ok := c.session.Token(); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// send performs the round trip and reads the whole body. Any failure before
// the body is fully read is a *NetworkError, except cancellation by the
// caller, which is returned wrapped as it is.
func (c *Client) send(req *http.Request, r *Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, transportError(req, r, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, transportError(req, r, err)
	}
	return resp.StatusCode, body, nil
}

func transportError(req *http.Request, r *Request, err error) error {
	if errors.Is(req.Context().Err(), context.Canceled) {
		return fmt.Errorf("%s %s: %w", req.Method, r.Path, context.Canceled)
	}
	return &NetworkError{Method: req.Method, Path: r.Path, Err: err}
}

// checkStatus maps a non-2xx status to an *HTTPError, taking the message from
// the body when it is an envelope with one.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := ""
	if env, err := envelope.Parse(body); err == nil {
		msg = env.Message
	}

	if status == http.StatusUnauthorized {
		if msg == "" {
			msg = UnauthorizedMessage
		}
		return &HTTPError{Status: status, Message: msg, Err: ErrUnauthorized}
	}
	if msg == "" {
		msg = envelope.DefaultFailureMessage
	}
	return &HTTPError{Status: status, Message: msg}
}

// handleUnauthorized clears the session, then notifies the registered
// handler. It runs before the 401 error reaches the caller.
func (c *Client) handleUnauthorized() {
	if err := c.session.Clear(); err != nil {
		c.log.Error("clearing session after 401", "error", err)
	}
	c.log.Warn("session rejected by server, credentials cleared")
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// encodeBody converts body to JSON with snake_case keys.
func encodeBody(body any) ([]byte, error) {
	v, err := value.FromAny(body)
	if err != nil {
		return nil, err
	}
	return keycase.KeysToSnake(v).MarshalJSON()
}

// call runs r and decodes the payload into out when out is non-nil.
func (c *Client) call(ctx context.Context, r *Request, out any) error {
	v, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := v.Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}
