package pagegrab

import (
	"context"
	"io"
)

// Fetcher retrieves page HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch performs a single GET and returns the body as UTF-8 text.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Streamer retrieves binary resources without buffering them in memory.
type Streamer interface {
	// Stream performs a single GET and returns the response body.
	// The caller must close the returned reader.
	Stream(ctx context.Context, url string) (io.ReadCloser, error)
}

// RateLimiter paces outbound requests.
type RateLimiter interface {
	// Wait blocks until a request to rawURL is allowed or ctx is done.
	Wait(ctx context.Context, rawURL string) error
}
