package grab

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/pagegrab"
	"golang.org/x/time/rate"
)

var _ pagegrab.RateLimiter = (*HostLimiter)(nil)

// HostLimiter paces requests per host using token buckets.
// Each host gets its own limiter with a burst of 1.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second per host.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to rawURL's host is allowed.
// URLs that do not parse share a single bucket.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
