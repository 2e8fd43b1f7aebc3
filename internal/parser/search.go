package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lumadev/amazon-product-scout/internal/models"
)

const (
	// DefaultMaxResults caps one parsed results page.
	DefaultMaxResults = 10
	// DefaultSponsoredMarker is the amazon.es phrase flagging paid placements.
	// Locale-specific, so it is injected, never matched on in logic.
	DefaultSponsoredMarker = "Anuncio patrocinado"
)

// SearchParser extracts product listings from an Amazon search-results page.
type SearchParser struct {
	imagePattern    *regexp.Regexp
	namePattern     *regexp.Regexp
	pricePattern    *regexp.Regexp
	sponsoredMarker string
	currencySuffix  string
	logger          *slog.Logger
}

// Options tunes the locale-dependent parts of the parser.
type Options struct {
	// SponsoredMarker excludes paid placements from organic results.
	SponsoredMarker string
	// CurrencySuffix is appended to the normalized price amount.
	CurrencySuffix string
}

func NewSearchParser(opts Options, logger *slog.Logger) *SearchParser {
	if opts.SponsoredMarker == "" {
		opts.SponsoredMarker = DefaultSponsoredMarker
	}
	if opts.CurrencySuffix == "" {
		opts.CurrencySuffix = "€"
	}

	return &SearchParser{
		imagePattern:    regexp.MustCompile(`<img.*?src="(.*?)"`),
		namePattern:     regexp.MustCompile(`<img.*?alt="(.*?)"`),
		pricePattern:    regexp.MustCompile(`\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?`),
		sponsoredMarker: opts.SponsoredMarker,
		currencySuffix:  opts.CurrencySuffix,
		logger:          logger.With("component", "search_parser"),
	}
}

// ParseSearchResults extracts up to maxResults valid products from the page,
// in document order. A malformed result tile is dropped and parsing continues.
func (p *SearchParser) ParseSearchResults(html string, maxResults int) ([]models.Product, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	products := []models.Product{}

	doc.Find(".s-main-slot .s-result-item").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		fragment, err := goquery.OuterHtml(sel)
		if err != nil {
			p.logger.Warn("failed to serialize result tile", "index", i, "error", err)
			return true
		}

		name := p.extractName(fragment)
		image := p.extractImage(fragment)
		price := p.extractPrice(sel)

		if !p.isValidProduct(name, image, price) {
			return true
		}

		products = append(products, models.Product{
			Name:      name,
			Price:     price,
			Image:     image,
			Source:    models.SourceWeb,
			ScrapedAt: time.Now(),
		})

		return len(products) < maxResults
	})

	return products, nil
}

func (p *SearchParser) extractImage(fragment string) string {
	return p.firstSubmatch(p.imagePattern, fragment)
}

func (p *SearchParser) extractName(fragment string) string {
	return p.firstSubmatch(p.namePattern, fragment)
}

// extractPrice pulls the price-bearing child's text and normalizes the amount:
// thousands dots stripped, decimal comma turned into a dot ("1.234,56" ->
// "1234.56"), currency suffix appended.
func (p *SearchParser) extractPrice(sel *goquery.Selection) string {
	priceTag := sel.Find(".a-price").First()
	if priceTag.Length() == 0 {
		return ""
	}

	match := p.pricePattern.FindString(priceTag.Text())
	if match == "" {
		return ""
	}

	amount := strings.ReplaceAll(match, ".", "")
	amount = strings.ReplaceAll(amount, ",", ".")

	return amount + p.currencySuffix
}

func (p *SearchParser) firstSubmatch(pattern *regexp.Regexp, text string) string {
	matches := pattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// isValidProduct keeps only complete, organic listings: every field non-empty
// after trimming and the name free of the sponsored marker.
func (p *SearchParser) isValidProduct(name, image, price string) bool {
	if strings.TrimSpace(name) == "" ||
		strings.TrimSpace(image) == "" ||
		strings.TrimSpace(price) == "" {
		return false
	}

	return !strings.Contains(name, p.sponsoredMarker)
}
