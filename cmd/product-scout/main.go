package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/lumadev/amazon-product-scout/internal/api"
	"github.com/lumadev/amazon-product-scout/internal/browser"
	"github.com/lumadev/amazon-product-scout/internal/cache"
	"github.com/lumadev/amazon-product-scout/internal/config"
	"github.com/lumadev/amazon-product-scout/internal/fetch"
	"github.com/lumadev/amazon-product-scout/internal/ocr"
	"github.com/lumadev/amazon-product-scout/internal/parser"
	"github.com/lumadev/amazon-product-scout/internal/scraper"
	"github.com/lumadev/amazon-product-scout/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis page cache for the fetch path.
	var pageCache cache.PageCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		pageCache = cache.NewRedisPageCache(redisClient, cfg.Redis.CacheTTL, log)
	}

	// Web path: HTTP fetch + markup parse.
	fetchClient := fetch.NewClient(fetch.Options{
		BaseURL:   cfg.Fetcher.BaseURL,
		UserAgent: cfg.Fetcher.UserAgent,
		Timeout:   cfg.Fetcher.Timeout,
		MinDelay:  cfg.Fetcher.MinDelay,
		MaxDelay:  cfg.Fetcher.MaxDelay,
		Cache:     pageCache,
	}, log)
	searchParser := parser.NewSearchParser(parser.Options{
		SponsoredMarker: cfg.Extract.SponsoredMarker,
		CurrencySuffix:  cfg.Extract.CurrencySuffix,
	}, log)
	webScraper := scraper.NewWebScraper(fetchClient, searchParser, cfg.Fetcher.MaxResults, log)

	// Screen path: browser automation + OCR.
	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ActionPause:    cfg.Browser.ActionPause,
	})
	if err != nil {
		log.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	engine := ocr.NewTesseractEngine(ocr.TesseractOptions{
		Language:   cfg.OCR.Language,
		Preprocess: cfg.OCR.Preprocess,
	}, log)
	defer engine.Close()

	driver := scraper.NewBrowserDriver(b, cfg.Automation, log)
	screenScraper := scraper.NewScreenScraper(driver, engine, cfg.Automation, cfg.Extract.CurrencyMarker, log)

	handlers := api.NewHandlers(webScraper, screenScraper, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", handlers.SearchWeb)
		r.Post("/search/screen", handlers.SearchScreen)
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down cleanly", "error", err)
	}

	// Give in-flight batches a moment before the browser goes away.
	time.Sleep(100 * time.Millisecond)
	log.Info("server stopped")
}
