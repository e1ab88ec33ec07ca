// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/stockcrawl/internal/utils/url"
)

// RateLimiter throttles requests per host
type RateLimiter interface {
	// Wait blocks until a request for urlStr may proceed or ctx is done
	Wait(ctx context.Context, urlStr string) error
}

// HostLimiter keeps one token bucket per host so repeated executions and
// fetch retries stay polite towards the ranking site
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond with burst per host
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 1
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for urlStr can proceed
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := urlutil.Host(urlStr)
	if host == "" {
		// Invalid URL, the request itself will fail
		return nil
	}

	return hl.limiter(host).Wait(ctx)
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	l, ok := hl.limiters[host]
	if !ok {
		l = rate.NewLimiter(hl.perHost, hl.burst)
		hl.limiters[host] = l
	}
	return l
}
