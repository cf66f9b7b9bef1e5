// Command fetchicons downloads a page and saves the icons it embeds to a JSON file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagegrab"
	"github.com/fwojciec/pagegrab/etree"
	"github.com/fwojciec/pagegrab/fs"
	"github.com/fwojciec/pagegrab/goquery"
	"github.com/fwojciec/pagegrab/grab"
	pghttp "github.com/fwojciec/pagegrab/http"
	"github.com/fwojciec/pagegrab/rod"
	pgslog "github.com/fwojciec/pagegrab/slog"
	"github.com/fwojciec/pagegrab/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// ConfigPaths are YAML files consulted for flag defaults, in order.
	ConfigPaths []string

	// HTTPClient overrides the client used for plain HTTP fetches.
	HTTPClient *http.Client
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPaths: []string{filepath.Join(xdg.ConfigHome, "pagegrab", "config.yaml")},
	}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  kong.ConfigFlag `help:"Load flag defaults from a YAML file."`
	URL     string          `arg:"" required:"" help:"Page to extract icons from."`
	Output  string          `short:"o" default:"icons.json" env:"PAGEGRAB_OUTPUT" help:"Icons JSON output path."`
	Archive string          `default:"downloadedHtml.html" env:"PAGEGRAB_ARCHIVE" help:"Save the fetched HTML here. Empty disables the snapshot."`
	SVGDir  string          `name:"svg-dir" env:"PAGEGRAB_SVG_DIR" help:"Also write each vector icon as an .svg file in this directory."`
	Render  bool            `env:"PAGEGRAB_RENDER" help:"Render the page in headless Chrome before extracting."`
	Settle  time.Duration   `env:"PAGEGRAB_SETTLE" help:"With --render, also wait until the page has been idle this long."`
	Timeout time.Duration   `short:"t" env:"PAGEGRAB_TIMEOUT" help:"Page fetch timeout. 0 waits indefinitely."`
	Retries int             `env:"PAGEGRAB_RETRIES" help:"Retry a failed page fetch this many times with exponential backoff."`
	Strict  bool            `env:"PAGEGRAB_STRICT" help:"Exit with an error when any stage fails."`
	Verbose bool            `short:"v" env:"PAGEGRAB_VERBOSE" help:"Log debug output to stderr."`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fetchicons"),
		kong.Description("Extract <img> and <svg> icons from a web page into a JSON file"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Configuration(yaml.Loader, m.ConfigPaths...),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg := pagegrab.Config{
		URL:         cli.URL,
		OutputPath:  cli.Output,
		ArchivePath: cli.Archive,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Verbose)

	fetcher, err := m.newFetcher(cli)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	writer := fs.NewWriter()
	p := &grab.IconPipeline{
		Fetcher:     pgslog.NewLoggingFetcher(fetcher, logger),
		Extractor:   goquery.NewIconExtractor(),
		Writer:      pgslog.NewLoggingIconWriter(writer, logger),
		Archiver:    pgslog.NewLoggingArchiver(writer, logger),
		CountTags:   goquery.CountTags,
		RetryDelays: grab.RetryDelays(cli.Retries),
		Logger:      logger,
	}
	if cli.SVGDir != "" {
		p.SVGs = fs.NewSVGWriter(etree.NewRenderer())
		p.SVGDir = cli.SVGDir
	}

	report := p.Run(ctx, cfg)

	if report.OutputPath != "" {
		fmt.Fprintf(stdout, "Saved %d icons to %s\n", len(report.Icons), report.OutputPath)
	}
	if len(report.SVGPaths) > 0 {
		fmt.Fprintf(stdout, "Wrote %d SVG files to %s\n", len(report.SVGPaths), cli.SVGDir)
	}

	if cli.Strict && report.Failed() {
		return fmt.Errorf("%d stage(s) failed, first: %w", len(report.Failures), report.Failures[0])
	}
	return nil
}

func (m *Main) newFetcher(cli *CLI) (pagegrab.Fetcher, error) {
	if cli.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout), rod.WithIdleWait(cli.Settle))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		return f, nil
	}

	opts := []pghttp.Option{pghttp.WithTimeout(cli.Timeout)}
	if m.HTTPClient != nil {
		opts = append(opts, pghttp.WithClient(m.HTTPClient))
	}
	return pghttp.NewFetcher(opts...), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
