package scraper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/lumadev/amazon-product-scout/internal/config"
	"github.com/lumadev/amazon-product-scout/internal/extract"
	"github.com/lumadev/amazon-product-scout/internal/models"
	"github.com/lumadev/amazon-product-scout/internal/ocr"
	"github.com/lumadev/amazon-product-scout/internal/region"
)

// ScreenDriver performs the on-screen search and hands back the captured
// results viewport. It owns all browser interaction; the collector only sees
// pixels.
type ScreenDriver interface {
	SearchAndCapture(ctx context.Context, query string) (image.Image, error)
}

// ScreenScraper is the screen-path collector: capture the results page,
// decompose it along the calibrated product boxes, recognize the name and
// price sub-regions, and assemble records. Regions are processed strictly in
// visual top-to-bottom order, one at a time; the OCR engine and the browser
// session tolerate no concurrent use.
type ScreenScraper struct {
	driver         ScreenDriver
	engine         ocr.Engine
	boxes          []region.Box
	currencyMarker string
	screenshotDir  string
	logger         *slog.Logger
}

func NewScreenScraper(driver ScreenDriver, engine ocr.Engine, cfg config.AutomationConfig, currencyMarker string, logger *slog.Logger) *ScreenScraper {
	return &ScreenScraper{
		driver:         driver,
		engine:         engine,
		boxes:          cfg.ProductBoxes,
		currencyMarker: currencyMarker,
		screenshotDir:  cfg.ScreenshotDir,
		logger:         logger.With("component", "screen_scraper"),
	}
}

// Search runs one screen-automation batch. The result count is capped by the
// number of calibrated boxes (the visible tiles). One bad region never aborts
// the batch: a failed field degrades to the sentinel, a failed crop save
// drops that region only.
func (s *ScreenScraper) Search(ctx context.Context, query string) ([]models.Product, error) {
	s.logger.Info("searching via screen path", "query", query, "regions", len(s.boxes))

	screenshot, err := s.driver.SearchAndCapture(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to capture search results: %w", err)
	}

	sessionDir := filepath.Join(s.screenshotDir, uuid.New().String())
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	crops := region.Decompose(screenshot, s.boxes)

	products := make([]models.Product, 0, len(crops))
	for i, crop := range crops {
		product, err := s.processRegion(sessionDir, i, crop)
		if err != nil {
			s.logger.Warn("skipping region", "index", i, "error", err)
			continue
		}
		products = append(products, product)
	}

	s.logger.Info("screen search finished", "query", query, "products", len(products))
	return products, nil
}

// processRegion turns one product crop into a record. OCR field failures are
// expected on noisy crops and degrade to the sentinel; only an unusable crop
// or a failed image save drops the region.
func (s *ScreenScraper) processRegion(sessionDir string, index int, crop region.CroppedProduct) (models.Product, error) {
	if crop.Full.Bounds().Empty() {
		return models.Product{}, errors.New("empty crop")
	}

	imagePath := filepath.Join(sessionDir, fmt.Sprintf("product_%d.png", index+1))
	if err := imaging.Save(crop.Image, imagePath); err != nil {
		return models.Product{}, fmt.Errorf("failed to save product image: %w", err)
	}

	name := s.recognizeName(index, crop.Name)
	price := s.recognizePrice(index, crop.Price)

	return models.Product{
		Name:      name,
		Price:     price,
		Image:     imagePath,
		Source:    models.SourceScreen,
		ScrapedAt: time.Now(),
	}, nil
}

func (s *ScreenScraper) recognizeName(index int, img image.Image) string {
	tokens, err := s.engine.Recognize(img)
	if err != nil {
		s.logger.Warn("name recognition failed", "index", index, "error", err)
		return models.NotAvailable
	}

	name, err := extract.Name(tokens)
	if err != nil {
		s.logger.Debug("no name in region", "index", index, "error", err)
		return models.NotAvailable
	}

	return name
}

func (s *ScreenScraper) recognizePrice(index int, img image.Image) string {
	tokens, err := s.engine.Recognize(img)
	if err != nil {
		s.logger.Warn("price recognition failed", "index", index, "error", err)
		return models.NotAvailable
	}

	price, err := extract.Price(tokens, s.currencyMarker)
	if err != nil {
		s.logger.Debug("no price in region", "index", index, "error", err)
		return models.NotAvailable
	}

	return price
}
