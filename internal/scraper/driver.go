package scraper

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/lumadev/amazon-product-scout/internal/browser"
	"github.com/lumadev/amazon-product-scout/internal/config"
)

// BrowserDriver drives a real browser session through the on-screen search:
// open the storefront, type the query into the search box, submit, wait for
// the results to settle, capture the viewport.
type BrowserDriver struct {
	browser *browser.Browser
	cfg     config.AutomationConfig
	logger  *slog.Logger
}

func NewBrowserDriver(b *browser.Browser, cfg config.AutomationConfig, logger *slog.Logger) *BrowserDriver {
	return &BrowserDriver{
		browser: b,
		cfg:     cfg,
		logger:  logger.With("component", "browser_driver"),
	}
}

func (d *BrowserDriver) SearchAndCapture(ctx context.Context, query string) (image.Image, error) {
	page, err := d.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := d.browser.NavigateWithRetry(page, d.cfg.StoreURL, 3); err != nil {
		return nil, fmt.Errorf("failed to open storefront: %w", err)
	}

	searchBox := page.Locator(d.cfg.SearchBoxSelector)
	if err := searchBox.Fill(query); err != nil {
		return nil, fmt.Errorf("search box not found: %w", err)
	}
	d.browser.Pause()

	if err := searchBox.Press("Enter"); err != nil {
		return nil, fmt.Errorf("failed to submit search: %w", err)
	}

	// Let the results page settle before capturing.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(d.cfg.SettleDelay):
	}

	img, err := d.browser.Screenshot(page)
	if err != nil {
		return nil, fmt.Errorf("failed to capture results: %w", err)
	}

	d.logger.Info("captured results viewport", "query", query,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return img, nil
}
