package grab

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagegrab"
)

// IconPipeline fetches a page, archives it, extracts icons and writes them
// as JSON.
type IconPipeline struct {
	Fetcher   pagegrab.Fetcher
	Extractor pagegrab.IconExtractor
	Writer    pagegrab.IconWriter

	// Archiver saves the raw page before extraction. Optional.
	Archiver pagegrab.HTMLArchiver

	// CountTags computes the img/svg coverage diagnostic. Optional.
	CountTags func(html string) pagegrab.TagCounts

	// SVGs exports vector icons to SVGDir when both are set.
	SVGs   pagegrab.SVGWriter
	SVGDir string

	// RetryDelays are waited between page fetch attempts. Nil means a single attempt.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Run executes the pipeline for cfg. The icons file is written even when the
// fetch or extraction fails, holding whatever was extracted (possibly nothing).
func (p *IconPipeline) Run(ctx context.Context, cfg pagegrab.Config) *pagegrab.IconReport {
	logger := loggerOrDiscard(p.Logger)
	report := &pagegrab.IconReport{
		URL:   cfg.URL,
		Icons: []*pagegrab.Icon{},
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = pagegrab.DefaultOutputPath
	}

	if icons, ok := p.extract(ctx, cfg, report, logger); ok && icons != nil {
		report.Icons = icons
	}

	if err := p.Writer.WriteIcons(ctx, outputPath, report.Icons); err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageWrite, err, "path", outputPath)
	} else {
		report.OutputPath = outputPath
		logger.InfoContext(ctx, "saved icons", "count", len(report.Icons), "path", outputPath)
	}

	if p.SVGs != nil && p.SVGDir != "" {
		paths, err := p.SVGs.WriteSVGs(ctx, p.SVGDir, report.Icons)
		report.SVGPaths = paths
		if err != nil {
			recordFailure(ctx, logger, &report.Failures, pagegrab.StageSVG, err, "dir", p.SVGDir)
		}
	}

	return report
}

// extract runs the fetch, archive and extract stages.
func (p *IconPipeline) extract(ctx context.Context, cfg pagegrab.Config, report *pagegrab.IconReport, logger *slog.Logger) ([]*pagegrab.Icon, bool) {
	if err := cfg.Validate(); err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageFetch, err, "url", cfg.URL)
		return nil, false
	}

	html, err := pageFetch(ctx, p.Fetcher, cfg.URL, p.RetryDelays, logger)
	if err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageFetch, err, "url", cfg.URL)
		return nil, false
	}

	if p.Archiver != nil && cfg.ArchivePath != "" {
		if err := p.Archiver.SaveHTML(ctx, cfg.ArchivePath, html); err != nil {
			recordFailure(ctx, logger, &report.Failures, pagegrab.StageArchive, err, "path", cfg.ArchivePath)
		} else {
			report.ArchivePath = cfg.ArchivePath
			logger.InfoContext(ctx, "saved html", "path", cfg.ArchivePath)
		}
	}

	if p.CountTags != nil {
		report.Counts = p.CountTags(html)
		logger.DebugContext(ctx, "tag occurrences", "img", report.Counts.Img, "svg", report.Counts.SVG)
	}

	icons, err := p.Extractor.Extract(html)
	if err != nil {
		recordFailure(ctx, logger, &report.Failures, pagegrab.StageExtract, err)
		return nil, false
	}
	return icons, true
}
