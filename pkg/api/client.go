// Package api is a thin SDK for the Nimbus Cloud REST API. It issues
// bearer-token-authenticated JSON requests and maps error responses to
// typed errors. All calls are synchronous and never mutate resources
// beyond what the invoked endpoint does.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sethgrid/pester"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Nimbus Cloud API endpoint.
	DefaultBaseURL = "https://api.nimbus.cloud"

	apiPath        = "/api/v1"
	defaultTimeout = 100 * time.Second

	// Client-side rate limit. The API throttles around 5 req/s per token;
	// staying under it avoids 429s on bulk operations.
	defaultRateLimit = 4
)

// validate checks request payloads before they ever reach the wire.
var validate = validator.New()

// Doer is the minimal HTTP client interface used by Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Nimbus Cloud API client.
type Client struct {
	token     string
	baseURL   string
	userAgent string
	http      Doer // mutating requests and uploads, sent exactly once
	retryHTTP Doer // idempotent reads, retried on transport failures and 5xx
	limiter   *rate.Limiter
	log       *slog.Logger
}

// Response carries transport-level details of an API call alongside the
// decoded result: the HTTP status and the raw response body. The raw body
// is what `--output raw|json|yaml` renders, byte-for-byte what the API
// returned.
type Response struct {
	StatusCode int
	Body       []byte
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (NIMBUS_ENDPOINT, tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the HTTP client for all requests, disabling
// the built-in read retries.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.http = d
		c.retryHTTP = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit sets the client-side request rate limit in requests
// per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger used for verbose request logging.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Nimbus Cloud API client. GETs are retried a
// couple of times with backoff (pester) on transport failures and 5xx;
// mutating requests are sent exactly once, since a replayed create or
// action could be applied twice.
func NewClient(token string, opts ...Option) *Client {
	rc := pester.New()
	rc.Timeout = defaultTimeout
	rc.MaxRetries = 3
	rc.Backoff = pester.ExponentialBackoff
	rc.RetryOnHTTP429 = false

	c := &Client{
		token:     token,
		baseURL:   DefaultBaseURL,
		userAgent: "nimbus-cli/" + Version,
		http:      &http.Client{Timeout: defaultTimeout},
		retryHTTP: rc,
		limiter:   rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a single API request. A nil out skips body decoding; the
// raw body is always preserved on the returned Response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, method+" "+path, out)
}

// upload performs a multipart-less raw body upload (image file contents).
// The reader is streamed as-is; contentLength may be -1 if unknown.
func (c *Client) upload(ctx context.Context, path string, r io.Reader, contentLength int64, filename string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = contentLength
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.send(req, "POST "+path, nil)
}

func (c *Client) send(req *http.Request, op string, out any) (*Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	c.log.Debug("api request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()))

	doer := c.http
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		doer = c.retryHTTP
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	c.log.Debug("api response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(raw)))

	r := &Response{StatusCode: resp.StatusCode, Body: raw}
	if resp.StatusCode >= 400 {
		return r, c.apiError(op, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return r, fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
		}
	}
	return r, nil
}

// apiError maps a non-2xx response to a typed error. 401 responses have
// no body, so they are mapped before the schema check.
func (c *Client) apiError(op string, status int, raw []byte) error {
	if status == http.StatusUnauthorized {
		return &Error{Op: op, StatusCode: status, Message: ErrUnauthorized.Error(), Err: ErrUnauthorized}
	}

	var body errBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &Error{
			Op:         op,
			StatusCode: status,
			Message:    "response has no JSON schema or has invalid JSON syntax",
			Err:        ErrMalformedResponse,
		}
	}

	apiErr := &Error{
		Op:         op,
		StatusCode: status,
		ErrorCode:  body.ErrorCode,
		Message:    body.message(),
		ResponseID: body.ResponseID,
	}
	switch status {
	case http.StatusNotFound:
		apiErr.Err = ErrNotFound
	case http.StatusForbidden:
		apiErr.Err = ErrUnauthorized
	case http.StatusTooManyRequests:
		apiErr.Err = ErrRateLimit
	}
	return apiErr
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + apiPath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// listQuery builds the standard limit/offset pagination query.
func listQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}
	return q
}
