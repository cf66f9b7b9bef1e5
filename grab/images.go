package grab

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/pagegrab"
	"github.com/google/uuid"
)

// Skip reasons reported on DownloadResult.
const (
	SkipDuplicate = "duplicate url in page"
	SkipKnown     = "already downloaded"
)

// ImagePipeline scans a page for embedded image references and downloads
// each one, in order, into a folder.
type ImagePipeline struct {
	Fetcher  pagegrab.Fetcher
	Streamer pagegrab.Streamer
	Scanner  pagegrab.ImageScanner

	// Store writes images into the folder prepared by EnsureDir.
	Store     pagegrab.ImageStore
	EnsureDir func(dir string) error

	// Ledger records every attempt when set. With SkipKnown, URLs it already
	// holds a successful download for are skipped.
	Ledger    pagegrab.DownloadLedger
	SkipKnown bool

	// Seen skips URLs repeated within the page when set.
	Seen pagegrab.URLFilter

	// Limiter paces image requests when set.
	Limiter pagegrab.RateLimiter

	// FailFast stops at the first failed download instead of continuing.
	FailFast bool

	// RetryDelays are waited between page fetch attempts. Nil means a single attempt.
	RetryDelays []time.Duration

	// NewRunID identifies the run in the ledger. Defaults to a random UUID.
	NewRunID func() string

	Logger *slog.Logger
}

// Run executes the pipeline for cfg. It returns an error only when the
// download folder cannot be prepared; every other failure is on the report.
func (p *ImagePipeline) Run(ctx context.Context, cfg pagegrab.Config) (*pagegrab.ImageReport, error) {
	logger := loggerOrDiscard(p.Logger)

	folder := cfg.DownloadFolder
	if folder == "" {
		folder = pagegrab.DefaultDownloadFolder
	}

	newRunID := p.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	report := &pagegrab.ImageReport{
		RunID:  newRunID(),
		URL:    cfg.URL,
		Folder: folder,
	}

	if err := p.EnsureDir(folder); err != nil {
		report.Failures = append(report.Failures, &pagegrab.StageError{Stage: pagegrab.StageDirectory, Err: err})
		logger.ErrorContext(ctx, "stage failed", "stage", string(pagegrab.StageDirectory), "dir", folder, "err", err)
		return report, pagegrab.WrapError(pagegrab.EINTERNAL, err, "creating directory %s", folder)
	}
	logger.InfoContext(ctx, "directory ready", "dir", folder)

	if err := cfg.Validate(); err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageFetch, err, "url", cfg.URL)
		return report, nil
	}

	html, err := pageFetch(ctx, p.Fetcher, cfg.URL, p.RetryDelays, logger)
	if err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageFetch, err, "url", cfg.URL)
		return report, nil
	}

	for ref := range p.Scanner.Scan(html) {
		report.Matched++

		result := p.download(ctx, report, ref, logger)
		report.Downloads = append(report.Downloads, result)

		if result.Err != nil {
			recordFailure(ctx, logger, &report.Failures, pagegrab.StageDownload, result.Err, "url", ref.URL, "title", ref.Title)
			if p.FailFast || errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
				break
			}
		}
	}

	logger.InfoContext(ctx, "downloads complete",
		"matched", report.Matched,
		"downloaded", report.Downloaded(),
		"dir", folder,
	)
	return report, nil
}

// download fetches and stores a single image, recording the attempt.
func (p *ImagePipeline) download(ctx context.Context, report *pagegrab.ImageReport, ref pagegrab.ImageRef, logger *slog.Logger) *pagegrab.DownloadResult {
	result := &pagegrab.DownloadResult{Ref: ref}

	if p.Seen != nil {
		if p.Seen.Test(ref.URL) {
			result.Skipped, result.SkipReason = true, SkipDuplicate
			return result
		}
		p.Seen.Add(ref.URL)
	}

	if p.Ledger != nil && p.SkipKnown {
		known, err := p.Ledger.HasImage(ctx, ref.URL)
		if err != nil {
			recordFailure(ctx, logger, &report.Failures, pagegrab.StageLedger, err, "url", ref.URL)
		} else if known {
			result.Skipped, result.SkipReason = true, SkipKnown
			return result
		}
	}

	result.Stored, result.Err = p.fetchImage(ctx, ref)
	p.record(ctx, report, result, logger)
	return result
}

func (p *ImagePipeline) fetchImage(ctx context.Context, ref pagegrab.ImageRef) (*pagegrab.StoredImage, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx, ref.URL); err != nil {
			return nil, err
		}
	}

	body, err := p.Streamer.Stream(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return p.Store.Save(ctx, ref.Title, body)
}

func (p *ImagePipeline) record(ctx context.Context, report *pagegrab.ImageReport, result *pagegrab.DownloadResult, logger *slog.Logger) {
	if p.Ledger == nil {
		return
	}

	d := &pagegrab.Download{
		RunID:    report.RunID,
		PageURL:  report.URL,
		ImageURL: result.Ref.URL,
		Title:    result.Ref.Title,
	}
	if result.Stored != nil {
		d.FilePath = result.Stored.Path
		d.Bytes = result.Stored.Bytes
		d.ContentHash = result.Stored.ContentHash
	}
	if result.Err != nil {
		d.Error = result.Err.Error()
	}

	if err := p.Ledger.RecordDownload(ctx, d); err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageLedger, err, "url", result.Ref.URL)
	}
}
