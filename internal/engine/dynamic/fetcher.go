package dynamic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/internal/ratelimit"
	urlutil "github.com/law-makers/stockcrawl/internal/utils/url"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Config holds the browser settings of a Fetcher
type Config struct {
	Timeout time.Duration
	// Headers are sent as extra HTTP headers; User-Agent is applied to the browser itself
	Headers map[string]string
	// Settle is how long scripts may run after the body is ready
	Settle   time.Duration
	Headless bool
	// ExecPath overrides FindChrome
	ExecPath string
}

// Fetcher renders the page in headless Chrome and returns the resulting markup.
// Every Fetch starts and stops its own browser.
type Fetcher struct {
	limiter ratelimit.RateLimiter
	cfg     Config
}

// New creates a browser Fetcher. limiter may be nil.
func New(lim ratelimit.RateLimiter, cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Fetcher{limiter: lim, cfg: cfg}
}

// Name returns the name of this engine
func (f *Fetcher) Name() string {
	return "BrowserFetcher"
}

// Fetch navigates to opts.URL and returns the rendered document
func (f *Fetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if err := urlutil.ValidateURL(opts.URL); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "invalid URL", err)
	}

	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("engine", f.Name()).
		Msg("Starting fetch")

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, engine.ClassifyTransportError(err)
		}
	}

	timeout := f.cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	headers := mergeHeaders(f.cfg.Headers, opts.Headers)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.allocatorOptions(headers["User-Agent"], opts.Proxy)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	page := &models.Page{
		URL:     opts.URL,
		Engine:  f.Name(),
		Headers: make(map[string]string),
	}

	var mu sync.Mutex
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if page.StatusCode != 0 {
			return
		}
		page.StatusCode = int(resp.Response.Status)
		for key, value := range resp.Response.Headers {
			if s, ok := value.(string); ok {
				page.Headers[key] = s
			}
		}
	})

	extra := make(network.Headers)
	for key, value := range headers {
		if key == "User-Agent" {
			continue
		}
		extra[key] = value
	}

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extra),
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.cfg.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, engine.ClassifyTransportError(ctx.Err()).WithDetail("url", opts.URL)
		}
		return nil, browserError(err).WithDetail("url", opts.URL)
	}

	mu.Lock()
	status := page.StatusCode
	mu.Unlock()
	if status != 0 && status != 200 {
		return nil, engine.NewStatusError(status, fmt.Sprintf("from %s", f.Name())).WithDetail("url", opts.URL)
	}
	if status == 0 {
		page.StatusCode = 200
	}

	page.HTML = html
	page.FetchedAt = time.Now()
	page.ResponseTime = time.Since(start).Milliseconds()

	log.Debug().
		Str("url", opts.URL).
		Int("status", page.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Fetch completed")

	return page, nil
}

func (f *Fetcher) allocatorOptions(userAgent, proxy string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
	}

	if f.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	execPath := f.cfg.ExecPath
	if execPath == "" {
		execPath = FindChrome()
	}
	if execPath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(execPath)}, opts...)
	}
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if proxy != "" {
		opts = append(opts, chromedp.ProxyServer(proxy))
	}
	return opts
}

// browserError separates a missing Chrome binary from a failed render
func browserError(err error) *engine.EngineError {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return engine.NewEngineError(engine.ErrCodeNoBrowser, "chrome executable not available", err)
	}
	return engine.NewEngineError(engine.ErrCodeBrowser, "browser navigation failed", err)
}

func mergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
