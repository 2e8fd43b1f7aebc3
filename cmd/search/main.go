package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumadev/amazon-product-scout/internal/api"
	"github.com/lumadev/amazon-product-scout/internal/browser"
	"github.com/lumadev/amazon-product-scout/internal/config"
	"github.com/lumadev/amazon-product-scout/internal/fetch"
	"github.com/lumadev/amazon-product-scout/internal/models"
	"github.com/lumadev/amazon-product-scout/internal/ocr"
	"github.com/lumadev/amazon-product-scout/internal/parser"
	"github.com/lumadev/amazon-product-scout/internal/scraper"
	"github.com/lumadev/amazon-product-scout/pkg/logger"
)

func main() {
	var (
		query    = flag.String("query", "", "Product search query")
		mode     = flag.String("mode", "web", "Acquisition path: web or screen")
		max      = flag.Int("max", 0, "Maximum results (web mode, default from config)")
		headless = flag.Bool("headless", true, "Run browser in headless mode (screen mode)")
	)
	flag.Parse()

	if *query == "" {
		fmt.Println(api.NoticeEmptyQuery)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *max > 0 {
		cfg.Fetcher.MaxResults = *max
	}

	lg := logger.New(cfg.Logging.Level, "text")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("shutdown signal received")
		cancel()
	}()

	var products []models.Product

	switch *mode {
	case "web":
		fetchClient := fetch.NewClient(fetch.Options{
			BaseURL:   cfg.Fetcher.BaseURL,
			UserAgent: cfg.Fetcher.UserAgent,
			Timeout:   cfg.Fetcher.Timeout,
			MinDelay:  cfg.Fetcher.MinDelay,
			MaxDelay:  cfg.Fetcher.MaxDelay,
		}, lg)
		searchParser := parser.NewSearchParser(parser.Options{
			SponsoredMarker: cfg.Extract.SponsoredMarker,
			CurrencySuffix:  cfg.Extract.CurrencySuffix,
		}, lg)
		webScraper := scraper.NewWebScraper(fetchClient, searchParser, cfg.Fetcher.MaxResults, lg)

		products, err = webScraper.Search(ctx, *query)

	case "screen":
		b, berr := browser.New(&browser.Options{
			Headless:       *headless && cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			AcceptLanguage: cfg.Browser.AcceptLanguage,
			TimezoneID:     cfg.Browser.TimezoneID,
			Locale:         cfg.Browser.Locale,
			ActionPause:    cfg.Browser.ActionPause,
		})
		if berr != nil {
			lg.Error("failed to initialize browser", "error", berr)
			os.Exit(1)
		}
		defer b.Close()

		engine := ocr.NewTesseractEngine(ocr.TesseractOptions{
			Language:   cfg.OCR.Language,
			Preprocess: cfg.OCR.Preprocess,
		}, lg)
		defer engine.Close()

		driver := scraper.NewBrowserDriver(b, cfg.Automation, lg)
		screenScraper := scraper.NewScreenScraper(driver, engine, cfg.Automation, cfg.Extract.CurrencyMarker, lg)

		products, err = screenScraper.Search(ctx, *query)

	default:
		fmt.Printf("Unknown mode %q, use web or screen\n", *mode)
		os.Exit(1)
	}

	if err != nil {
		lg.Error("search failed", "error", err)
		fmt.Println(api.NoticeSearchFailed)
		os.Exit(1)
	}

	if len(products) == 0 {
		fmt.Println(api.NoticeNoResults)
		return
	}

	for i, p := range products {
		fmt.Printf("%2d. %s\n    price: %s\n    image: %s\n", i+1, p.Name, p.Price, p.Image)
	}
}
