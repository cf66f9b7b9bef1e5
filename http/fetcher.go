// Package http provides net/http implementations of pagegrab.Fetcher and
// pagegrab.Streamer for static pages and binary downloads.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pagegrab"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "pagegrab/1.0 (+https://github.com/fwojciec/pagegrab)"

// Ensure Fetcher implements pagegrab.Fetcher and pagegrab.Streamer at compile time.
var (
	_ pagegrab.Fetcher  = (*Fetcher)(nil)
	_ pagegrab.Streamer = (*Fetcher)(nil)
)

// Fetcher retrieves pages and images using plain HTTP GET requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
//
// By default any completed response is returned as-is, whatever its status
// code; only transport failures are errors.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	checkStatus bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the overall timeout for each request, including reading
// the body. Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithStatusCheck makes responses outside the 2xx range fail.
func WithStatusCheck() Option {
	return func(f *Fetcher) {
		f.checkStatus = true
	}
}

// WithClient sets the HTTP client. The timeout option is applied to it.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.timeout > 0 {
		f.client.Timeout = f.timeout
	}

	return f
}

// Fetch retrieves the page at url and returns its body decoded to UTF-8.
// The source encoding is taken from the Content-Type header or sniffed from
// the document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", url, err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Stream retrieves url and returns the raw response body.
// The caller must close the returned reader.
func (f *Fetcher) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pagegrab.WrapError(pagegrab.EINVALID, err, "invalid request for %q", url)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if f.checkStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return resp, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
