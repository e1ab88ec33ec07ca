package static

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/internal/proxy"
	"github.com/law-makers/stockcrawl/internal/ratelimit"
	"github.com/law-makers/stockcrawl/internal/retry"
	urlutil "github.com/law-makers/stockcrawl/internal/utils/url"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Config holds the request defaults of a Fetcher
type Config struct {
	Timeout time.Duration
	// Headers are sent with every request; RequestOptions.Headers override them
	Headers map[string]string
	Retry   retry.Config
}

// Fetcher retrieves pages with plain HTTP requests and decodes them to UTF-8
type Fetcher struct {
	client  *http.Client
	limiter ratelimit.RateLimiter
	proxies *proxy.Pool
	cfg     Config
}

// New creates a Fetcher with dependency injection. limiter and proxies may be nil.
func New(client *http.Client, lim ratelimit.RateLimiter, proxies *proxy.Pool, cfg Config) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	return &Fetcher{
		client:  client,
		limiter: lim,
		proxies: proxies,
		cfg:     cfg,
	}
}

// Name returns the name of this engine
func (f *Fetcher) Name() string {
	return "StaticFetcher"
}

// Fetch performs a GET on opts.URL. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if err := urlutil.ValidateURL(opts.URL); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "invalid URL", err)
	}

	var page *models.Page
	err := retry.WithRetry(ctx, f.cfg.Retry, func(ctx context.Context) error {
		p, err := f.fetch(ctx, opts)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "failed to create request", err)
	}

	for key, value := range f.cfg.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	proxyURL := opts.Proxy
	if proxyURL == "" && f.proxies != nil {
		proxyURL = f.proxies.Next()
	}
	client, err := f.clientFor(proxyURL)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeValidation, "invalid proxy", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if f.proxies != nil {
			f.proxies.MarkFailed(proxyURL)
		}
		return nil, engine.ClassifyTransportError(err).WithDetail("url", opts.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		log.Debug().
			Str("url", opts.URL).
			Int("status", resp.StatusCode).
			Msg("Unexpected status")
		return nil, engine.NewStatusError(resp.StatusCode, http.StatusText(resp.StatusCode)).WithDetail("url", opts.URL)
	}

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeReadError, "failed to read body", err).WithRetry()
	}

	if f.proxies != nil {
		f.proxies.MarkHealthy(proxyURL)
	}

	responseTime := time.Since(start).Milliseconds()

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		HTML:         body,
		Engine:       f.Name(),
		Headers:      make(map[string]string),
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			page.Headers[key] = values[0]
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", responseTime).
		Int("chars", len([]rune(body))).
		Msg("Fetch completed")

	return page, nil
}

// clientFor returns the shared client, or a copy routed through proxyURL
func (f *Fetcher) clientFor(proxyURL string) (*http.Client, error) {
	if proxyURL == "" {
		return f.client, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:               http.ProxyURL(u),
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   f.client.Timeout,
		Jar:       f.client.Jar,
	}, nil
}

// decodeBody reads r as UTF-8, converting from the charset announced in
// contentType or sniffed from the first kilobyte
func decodeBody(r io.Reader, contentType string) (string, error) {
	br := bufio.NewReader(r)
	e := determineEncoding(br, contentType)

	data, err := io.ReadAll(transform.NewReader(br, e.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(data), nil
}

func determineEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	peek, err := r.Peek(1024)
	if err != nil && len(peek) == 0 {
		return unicode.UTF8
	}
	e, name, _ := charset.DetermineEncoding(peek, contentType)
	log.Debug().Str("charset", name).Msg("Detected page encoding")
	return e
}
