package app

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/law-makers/stockcrawl/internal/config"
	"github.com/law-makers/stockcrawl/internal/proxy"
	"github.com/law-makers/stockcrawl/internal/ratelimit"
	"github.com/law-makers/stockcrawl/pkg/models"
)

func TestNewFetcher_ByMode(t *testing.T) {
	tests := []struct {
		mode models.FetchMode
		want string
	}{
		{models.ModeStatic, "StaticFetcher"},
		{models.ModeBrowser, "BrowserFetcher"},
		{models.ModeAuto, "HybridFetcher"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Mode = tt.mode
			f := NewFetcher(cfg, &http.Client{}, ratelimit.NewHostLimiter(1, 1), proxy.NewPool(nil))
			if f.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, f.Name())
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = t.TempDir() + "/nested/out"

	a, err := New(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close(context.Background())

	if a.Runner == nil || a.Fetcher == nil || a.Status == nil {
		t.Fatal("Expected all dependencies to be initialized")
	}
	if a.Status.Path() != cfg.Path(config.DefaultLogFile) {
		t.Errorf("Unexpected execution log path %s", a.Status.Path())
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, io.Discard); err == nil {
		t.Error("Expected error for nil config")
	}
}
