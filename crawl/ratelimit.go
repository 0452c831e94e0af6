package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/harvest"
	"golang.org/x/time/rate"
)

var _ harvest.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Requests to different domains proceed independently. Domains are
// compared without a leading "www.".
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// with the given burst per domain. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    max(burst, 1),
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	domain = harvest.NormalizeHost(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
