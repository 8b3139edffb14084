// Package fetch downloads chapter pages and their images over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for fetch operations.
var (
	ErrRequest = errors.New("request failed")
	ErrStatus  = errors.New("unexpected HTTP status")
)

// Default per-request timeouts.
const (
	PageTimeout     = 180 * time.Second
	MarkdownTimeout = 60 * time.Second
)

// MaxBodySize caps a single response body (64MB).
var MaxBodySize int64 = 64 << 20

// Client performs GET requests with a bounded timeout.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithMaxBodySize caps response bodies at n bytes. Non-positive values keep
// MaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBody = n
		}
	}
}

// New creates a Client whose requests time out after timeout.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: "go-book2pdf",
		maxBody:   MaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get downloads url and returns its body. Non-2xx responses fail with ErrStatus,
// transport failures and bodies over the size cap with ErrRequest.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrRequest, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: body of %s exceeds %d bytes", ErrRequest, url, c.maxBody)
	}
	return body, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s (%s)", ErrStatus, e.Code, http.StatusText(e.Code), e.URL)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }
