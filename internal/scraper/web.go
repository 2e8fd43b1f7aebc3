package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumadev/amazon-product-scout/internal/models"
	"github.com/lumadev/amazon-product-scout/internal/parser"
)

// Fetcher supplies raw search-results markup for a query.
type Fetcher interface {
	FetchSearchResults(ctx context.Context, query string) (string, error)
}

// WebScraper is the markup-path collector: fetch the results page over HTTP,
// parse it, return up to maxResults valid records in page order.
type WebScraper struct {
	fetcher    Fetcher
	parser     parser.Parser
	maxResults int
	logger     *slog.Logger
}

func NewWebScraper(fetcher Fetcher, p parser.Parser, maxResults int, logger *slog.Logger) *WebScraper {
	if maxResults <= 0 {
		maxResults = parser.DefaultMaxResults
	}
	return &WebScraper{
		fetcher:    fetcher,
		parser:     p,
		maxResults: maxResults,
		logger:     logger.With("component", "web_scraper"),
	}
}

// Search runs one fetch+parse batch with the configured default cap.
func (s *WebScraper) Search(ctx context.Context, query string) ([]models.Product, error) {
	return s.SearchN(ctx, query, s.maxResults)
}

// SearchN runs one fetch+parse batch capped at max records; max <= 0 falls
// back to the configured default. A fetch failure surfaces as an error so the
// caller can show a user-facing notice; an empty page yields an empty slice,
// not an error.
func (s *WebScraper) SearchN(ctx context.Context, query string, max int) ([]models.Product, error) {
	if max <= 0 {
		max = s.maxResults
	}

	s.logger.Info("searching via web path", "query", query, "max_results", max)

	html, err := s.fetcher.FetchSearchResults(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}

	products, err := s.parser.ParseSearchResults(html, max)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	s.logger.Info("web search finished", "query", query, "products", len(products))
	return products, nil
}
