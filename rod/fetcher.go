// Package rod fetches JavaScript-rendered pages with headless Chrome.
package rod

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/pagegrab"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ pagegrab.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless Chrome browser.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool

	fetchTimeout time.Duration
	idleWait     time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch. Zero means no timeout beyond the
// caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithIdleWait additionally waits until network requests and the DOM have
// been quiet for d, for pages that inject content late.
func WithIdleWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.idleWait = d
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, pagegrab.WrapError(pagegrab.EINTERNAL, err, "launching browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, pagegrab.WrapError(pagegrab.EINTERNAL, err, "connecting to browser")
	}

	f.browser = browser
	f.launcher = l
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	browser, closed := f.browser, f.closed
	f.mu.Unlock()
	if closed {
		return "", pagegrab.Errorf(pagegrab.EINVALID, "fetcher is closed")
	}

	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.fetchTimeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if f.idleWait > 0 {
		if err := page.WaitStable(f.idleWait); err != nil {
			return "", err
		}
	}

	return page.HTML()
}

// Close shuts down the browser and its process. Close is idempotent.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	if f.browser != nil {
		err = f.browser.Close()
	}
	if f.launcher != nil {
		f.launcher.Kill()
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}
