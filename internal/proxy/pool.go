package proxy

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Pool rotates through proxy URLs, skipping ones that failed recently
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	mu       sync.Mutex
	failed   map[string]time.Time
	now      func() time.Time
}

// NewPool creates a Pool; an empty list yields "" from Next (direct connection)
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies:  proxies,
		cooldown: DefaultCooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy is cooling down the
// next one in rotation is returned anyway.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for range p.proxies {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, ok := p.failed[proxy]
		if !ok {
			return proxy
		}
		if p.now().Sub(failedAt) >= p.cooldown {
			delete(p.failed, proxy)
			return proxy
		}
	}

	proxy := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return proxy
}

// MarkFailed puts proxy in cooldown
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
