package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagegrab"
)

var (
	_ pagegrab.ImageStore   = (*LoggingImageStore)(nil)
	_ pagegrab.IconWriter   = (*LoggingIconWriter)(nil)
	_ pagegrab.HTMLArchiver = (*LoggingArchiver)(nil)
)

// LoggingImageStore wraps an ImageStore with debug logging.
type LoggingImageStore struct {
	next   pagegrab.ImageStore
	logger *slog.Logger
}

// NewLoggingImageStore creates a new LoggingImageStore.
func NewLoggingImageStore(next pagegrab.ImageStore, logger *slog.Logger) *LoggingImageStore {
	return &LoggingImageStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs the stored file.
func (s *LoggingImageStore) Save(ctx context.Context, title string, body io.Reader) (img *pagegrab.StoredImage, err error) {
	defer func(begin time.Time) {
		var path string
		var n int64
		if img != nil {
			path, n = img.Path, img.Bytes
		}
		s.logger.Debug("save image",
			"title", title,
			"path", path,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, title, body)
}

// LoggingIconWriter wraps an IconWriter with debug logging.
type LoggingIconWriter struct {
	next   pagegrab.IconWriter
	logger *slog.Logger
}

// NewLoggingIconWriter creates a new LoggingIconWriter.
func NewLoggingIconWriter(next pagegrab.IconWriter, logger *slog.Logger) *LoggingIconWriter {
	return &LoggingIconWriter{next: next, logger: logger}
}

// WriteIcons delegates to the wrapped writer and logs the outcome.
func (w *LoggingIconWriter) WriteIcons(ctx context.Context, path string, icons []*pagegrab.Icon) (err error) {
	defer func(begin time.Time) {
		w.logger.Debug("write icons",
			"path", path,
			"count", len(icons),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteIcons(ctx, path, icons)
}

// LoggingArchiver wraps an HTMLArchiver with debug logging.
type LoggingArchiver struct {
	next   pagegrab.HTMLArchiver
	logger *slog.Logger
}

// NewLoggingArchiver creates a new LoggingArchiver.
func NewLoggingArchiver(next pagegrab.HTMLArchiver, logger *slog.Logger) *LoggingArchiver {
	return &LoggingArchiver{next: next, logger: logger}
}

// SaveHTML delegates to the wrapped archiver and logs the outcome.
func (a *LoggingArchiver) SaveHTML(ctx context.Context, path string, html string) (err error) {
	defer func(begin time.Time) {
		a.logger.Debug("save html",
			"path", path,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.SaveHTML(ctx, path, html)
}
