package hybrid

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Fetcher fetches statically first and falls back to the browser when the
// markup has no ranking rows
type Fetcher struct {
	static  engine.Fetcher
	browser engine.Fetcher
}

// New creates an auto-mode Fetcher. browser may be nil, in which case the
// static page is always returned.
func New(static, browser engine.Fetcher) *Fetcher {
	return &Fetcher{static: static, browser: browser}
}

// Name returns the name of this engine
func (f *Fetcher) Name() string {
	return "HybridFetcher"
}

// Fetch returns the static page unless DetermineStrategy asks for a browser.
// A failed browser fetch falls back to the static page.
func (f *Fetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	page, err := f.static.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}

	strategy := DetermineStrategy(page.HTML)
	log.Debug().
		Str("url", opts.URL).
		Str("strategy", strategy.String()).
		Msg("Auto mode strategy")

	if strategy == StrategyStatic || f.browser == nil {
		return page, nil
	}

	rendered, err := f.browser.Fetch(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, engine.ClassifyTransportError(ctx.Err())
		}
		log.Warn().
			Err(err).
			Str("engine", f.browser.Name()).
			Msg("Browser fetch failed, using static markup")
		return page, nil
	}
	return rendered, nil
}
