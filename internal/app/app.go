// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/stockcrawl/internal/config"
	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/internal/engine/dynamic"
	"github.com/law-makers/stockcrawl/internal/engine/hybrid"
	"github.com/law-makers/stockcrawl/internal/engine/static"
	"github.com/law-makers/stockcrawl/internal/proxy"
	"github.com/law-makers/stockcrawl/internal/ratelimit"
	"github.com/law-makers/stockcrawl/internal/retry"
	"github.com/law-makers/stockcrawl/internal/runner"
	"github.com/law-makers/stockcrawl/internal/statuslog"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup by the root command.
// Use Close() to release idle connections on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.Pool
	HTTPClient  *http.Client
	Fetcher     engine.Fetcher
	Status      *statuslog.Log
	Runner      *runner.Runner
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures the global logger from the config
//   - Creates the output directory
//   - Creates the per-host rate limiter and the proxy pool
//   - Initializes the HTTP client with proper timeouts
//   - Selects the fetch engine for the configured mode
//   - Creates the execution log and the runner
func New(ctx context.Context, cfg *config.Config, console io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := SetupLogger(cfg)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rateLimiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	proxies := proxy.NewPool(cfg.Proxies)

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("proxies", proxies.Len()).
		Msg("HTTP client initialized")

	fetcher := NewFetcher(cfg, httpClient, rateLimiter, proxies)
	logger.Debug().Str("engine", fetcher.Name()).Str("mode", string(cfg.Mode)).Msg("Fetcher initialized")

	status := statuslog.New(cfg.Path(cfg.LogFile))

	a := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		Proxies:     proxies,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		Status:      status,
		Runner:      runner.New(cfg, fetcher, status, console),
		startTime:   time.Now(),
	}

	logger.Debug().Msg("Application initialized successfully")
	return a, nil
}

// SetupLogger configures the global zerolog logger from cfg and returns it
func SetupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}

// NewFetcher builds the engine for cfg.Mode
func NewFetcher(cfg *config.Config, client *http.Client, lim ratelimit.RateLimiter, proxies *proxy.Pool) engine.Fetcher {
	headers := cfg.RequestHeaders()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Retries + 1
	retryCfg.InitialBackoff = cfg.RetryBackoff

	staticFetcher := static.New(client, lim, proxies, static.Config{
		Timeout: cfg.HTTPTimeout,
		Headers: headers,
		Retry:   retryCfg,
	})

	browserFetcher := func() engine.Fetcher {
		return dynamic.New(lim, dynamic.Config{
			Timeout:  cfg.HTTPTimeout,
			Headers:  headers,
			Settle:   cfg.BrowserSettle,
			Headless: cfg.BrowserHeadless,
			ExecPath: cfg.ChromePath,
		})
	}

	switch cfg.Mode {
	case models.ModeBrowser:
		return browserFetcher()
	case models.ModeAuto:
		return hybrid.New(staticFetcher, browserFetcher())
	default:
		return staticFetcher
	}
}

// Close releases the application's resources. It never fails the run.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
