package engine

import (
	"context"

	"github.com/law-makers/stockcrawl/pkg/models"
)

// Fetcher is the interface that all page fetch engines must implement
type Fetcher interface {
	// Fetch retrieves the raw markup of the requested page
	Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error)

	// Name returns the name of the engine implementation
	Name() string
}
