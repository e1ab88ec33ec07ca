package config

import (
	"fmt"

	urlutil "github.com/law-makers/stockcrawl/internal/utils/url"
	"github.com/law-makers/stockcrawl/pkg/models"
)

var exportFormats = map[string]bool{
	"csv":      true,
	"markdown": true,
	"xlsx":     true,
}

func validate(c *Config) error {
	if err := urlutil.ValidateURL(c.URL); err != nil {
		return err
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top must be > 0, got %d", c.TopN)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	switch c.Mode {
	case models.ModeStatic, models.ModeBrowser, models.ModeAuto:
	default:
		return fmt.Errorf("invalid mode: %s (must be static, browser, or auto)", c.Mode)
	}
	for _, e := range c.Exports {
		if !exportFormats[e] {
			return fmt.Errorf("unknown export format: %s (must be csv, markdown, or xlsx)", e)
		}
	}
	if c.Executions < 1 {
		return fmt.Errorf("executions must be >= 1")
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be >= 0")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.DebugLimit <= 0 {
		return fmt.Errorf("debug limit must be > 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	return nil
}
