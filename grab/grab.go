// Package grab runs the icon and image pipelines.
//
// Each pipeline is a strict sequence of stages executed one at a time. Stage
// failures are collected on the returned report and logged; only a failure to
// prepare the download folder stops the image pipeline with an error.
package grab

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagegrab"
)

// pageFetch fetches url with the configured retry delays, logging each retry.
func pageFetch(ctx context.Context, fetcher pagegrab.Fetcher, url string, delays []time.Duration, logger *slog.Logger) (string, error) {
	return FetchWithRetry(ctx, url, fetcher.Fetch, delays, func(attempt int, err error) {
		logger.Warn("retrying page fetch", "url", url, "attempt", attempt, "err", err)
	})
}

// recordFailure appends a stage failure to failures and logs it.
func recordFailure(ctx context.Context, logger *slog.Logger, failures *[]*pagegrab.StageError, stage pagegrab.Stage, err error, args ...any) {
	*failures = append(*failures, &pagegrab.StageError{Stage: stage, Err: err})
	logger.ErrorContext(ctx, "stage failed", append([]any{"stage", string(stage), "err", err}, args...)...)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
