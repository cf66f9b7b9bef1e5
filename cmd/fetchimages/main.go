// Command fetchimages downloads the images a page references in its embedded
// JSON data into a local folder.
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
	"github.com/fwojciec/pagegrab/bloom"
	"github.com/fwojciec/pagegrab/fs"
	"github.com/fwojciec/pagegrab/grab"
	pghttp "github.com/fwojciec/pagegrab/http"
	"github.com/fwojciec/pagegrab/rod"
	"github.com/fwojciec/pagegrab/scan"
	pgslog "github.com/fwojciec/pagegrab/slog"
	"github.com/fwojciec/pagegrab/sqlite"
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

	// HTTPClient overrides the client used for the page and image requests.
	HTTPClient *http.Client

	// SQLite database, open while Run executes with --db.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPaths: []string{filepath.Join(xdg.ConfigHome, "pagegrab", "config.yaml")},
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    kong.ConfigFlag `help:"Load flag defaults from a YAML file."`
	URL       string          `arg:"" optional:"" default:"https://www.airbnb.com/" help:"Page to scan for image references."`
	Dir       string          `short:"d" default:"./downloaded_images" env:"PAGEGRAB_DIR" help:"Folder to save images into."`
	DB        string          `env:"PAGEGRAB_DB" help:"Record every download in this SQLite ledger."`
	SkipKnown bool            `name:"skip-known" env:"PAGEGRAB_SKIP_KNOWN" help:"Skip images the ledger already holds (requires --db)."`
	History   int             `help:"Print the N most recent ledger entries and exit (requires --db)."`
	Dedupe    bool            `env:"PAGEGRAB_DEDUPE" help:"Download each image URL at most once per run."`
	Rate      float64         `env:"PAGEGRAB_RATE" help:"Maximum image requests per second per host. 0 is unlimited."`
	Render    bool            `env:"PAGEGRAB_RENDER" help:"Render the page in headless Chrome before scanning."`
	Settle    time.Duration   `env:"PAGEGRAB_SETTLE" help:"With --render, also wait until the page has been idle this long."`
	Timeout   time.Duration   `short:"t" env:"PAGEGRAB_TIMEOUT" help:"Request timeout. 0 waits indefinitely."`
	Retries   int             `env:"PAGEGRAB_RETRIES" help:"Retry a failed page fetch this many times with exponential backoff."`
	FailFast  bool            `name:"fail-fast" env:"PAGEGRAB_FAIL_FAST" help:"Stop at the first failed download."`
	Strict    bool            `env:"PAGEGRAB_STRICT" help:"Exit with an error when any stage fails."`
	Verbose   bool            `short:"v" env:"PAGEGRAB_VERBOSE" help:"Log debug output to stderr."`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fetchimages"),
		kong.Description("Download the images a page lists in its embedded JSON data"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Configuration(yaml.Loader, m.ConfigPaths...),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if (cli.SkipKnown || cli.History > 0) && cli.DB == "" {
		return fmt.Errorf("--skip-known and --history require --db")
	}

	logger := newLogger(stderr, cli.Verbose)

	var ledger pagegrab.DownloadLedger
	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set PAGEGRAB_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()
		ledger = sqlite.NewLedgerService(m.DB)
	}

	if cli.History > 0 {
		return printHistory(ctx, stdout, ledger, cli.History)
	}

	httpFetcher := m.newHTTPFetcher(cli)

	var fetcher pagegrab.Fetcher = httpFetcher
	if cli.Render {
		rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout), rod.WithIdleWait(cli.Settle))
		if err != nil {
			return fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		fetcher = rodFetcher
	}
	defer fetcher.Close()

	p := &grab.ImagePipeline{
		Fetcher:     pgslog.NewLoggingFetcher(fetcher, logger),
		Streamer:    pgslog.NewLoggingStreamer(httpFetcher, logger),
		Scanner:     scan.NewScanner(),
		Store:       pgslog.NewLoggingImageStore(fs.NewImageStore(cli.Dir), logger),
		EnsureDir:   fs.EnsureDir,
		Ledger:      ledger,
		SkipKnown:   cli.SkipKnown,
		FailFast:    cli.FailFast,
		RetryDelays: grab.RetryDelays(cli.Retries),
		Logger:      logger,
	}
	if cli.Dedupe {
		p.Seen = bloom.NewFilter(bloom.DefaultExpectedURLs, bloom.DefaultFalsePositive)
	}
	if cli.Rate > 0 {
		p.Limiter = grab.NewHostLimiter(cli.Rate)
	}

	report, err := p.Run(ctx, pagegrab.Config{URL: cli.URL, DownloadFolder: cli.Dir})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Downloaded %d of %d images to %s\n", report.Downloaded(), report.Matched, report.Folder)

	if cli.Strict && report.Failed() {
		return fmt.Errorf("%d stage(s) failed, first: %w", len(report.Failures), report.Failures[0])
	}
	return nil
}

func (m *Main) newHTTPFetcher(cli *CLI) *pghttp.Fetcher {
	opts := []pghttp.Option{pghttp.WithTimeout(cli.Timeout)}
	if m.HTTPClient != nil {
		opts = append(opts, pghttp.WithClient(m.HTTPClient))
	}
	return pghttp.NewFetcher(opts...)
}

// printHistory writes the n most recent ledger entries, newest first.
func printHistory(ctx context.Context, w io.Writer, ledger pagegrab.DownloadLedger, n int) error {
	downloads, err := ledger.FindDownloads(ctx, pagegrab.DownloadFilter{Limit: n})
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(downloads) == 0 {
		fmt.Fprintln(w, "No downloads recorded.")
		return nil
	}

	for _, d := range downloads {
		status := d.FilePath
		if !d.Succeeded() {
			status = "FAILED: " + d.Error
		}
		fmt.Fprintf(w, "%s  %s  %s\n", d.DownloadedAt.Format(time.RFC3339), d.ImageURL, status)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
