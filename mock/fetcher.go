package mock

import (
	"context"
	"io"

	"github.com/fwojciec/pagegrab"
)

var (
	_ pagegrab.Fetcher     = (*Fetcher)(nil)
	_ pagegrab.Streamer    = (*Streamer)(nil)
	_ pagegrab.RateLimiter = (*RateLimiter)(nil)
)

// Fetcher is a mock implementation of pagegrab.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// Streamer is a mock implementation of pagegrab.Streamer.
type Streamer struct {
	StreamFn func(ctx context.Context, url string) (io.ReadCloser, error)
}

func (s *Streamer) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	return s.StreamFn(ctx, url)
}

// RateLimiter is a mock implementation of pagegrab.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context, rawURL string) error
}

func (l *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	return l.WaitFn(ctx, rawURL)
}
