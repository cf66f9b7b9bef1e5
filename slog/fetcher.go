package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagegrab"
)

var (
	_ pagegrab.Fetcher  = (*LoggingFetcher)(nil)
	_ pagegrab.Streamer = (*LoggingStreamer)(nil)
)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   pagegrab.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pagegrab.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// LoggingStreamer wraps a Streamer, logging when each response body is closed.
type LoggingStreamer struct {
	next   pagegrab.Streamer
	logger *slog.Logger
}

// NewLoggingStreamer creates a new LoggingStreamer.
func NewLoggingStreamer(next pagegrab.Streamer, logger *slog.Logger) *LoggingStreamer {
	return &LoggingStreamer{next: next, logger: logger}
}

// Stream delegates to the wrapped streamer. Failed requests are logged
// immediately; successful ones when the body is closed, with the bytes read.
func (s *LoggingStreamer) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	begin := time.Now()
	body, err := s.next.Stream(ctx, url)
	if err != nil {
		s.logger.Info("stream",
			"url", url,
			"bytes", 0,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	return &loggingBody{ReadCloser: body, url: url, begin: begin, logger: s.logger}, nil
}

type loggingBody struct {
	io.ReadCloser
	url    string
	begin  time.Time
	n      int64
	logger *slog.Logger
}

func (b *loggingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += int64(n)
	return n, err
}

func (b *loggingBody) Close() error {
	err := b.ReadCloser.Close()
	b.logger.Info("stream",
		"url", b.url,
		"bytes", b.n,
		"duration", time.Since(b.begin),
		"err", err,
	)
	return err
}
