package extract

import (
	"errors"
	"strings"

	"github.com/lumadev/amazon-product-scout/internal/ocr"
)

var (
	// ErrNoText means the token bag held no non-empty tokens.
	ErrNoText = errors.New("no recognizable text in region")
	// ErrNoPrice means no token carried the currency marker.
	ErrNoPrice = errors.New("no price marker in region")
)

// DefaultCurrencyMarker is the marker for the reference storefront (amazon.es).
// OCR mangles digits often enough that the glyph is the reliable price signal.
const DefaultCurrencyMarker = "€"

// Name assembles a product name from OCR tokens: trim each token, drop the
// empties, join the first two that remain with a single space. The two-token
// cut is layout-derived (the title occupies the first two text lines of its
// sub-region) and must not be widened.
func Name(tokens ocr.TokenBag) (string, error) {
	lines := make([]string, 0, 2)
	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		lines = append(lines, text)
		if len(lines) == 2 {
			break
		}
	}

	if len(lines) == 0 {
		return "", ErrNoText
	}

	return strings.Join(lines, " "), nil
}

// Price returns the first trimmed token containing the currency marker.
// Digit-pattern matching is deliberately avoided: tesseract misreads digits
// far more often than it drops the currency glyph.
func Price(tokens ocr.TokenBag, marker string) (string, error) {
	if marker == "" {
		marker = DefaultCurrencyMarker
	}

	for _, tok := range tokens {
		if strings.Contains(tok.Text, marker) {
			return strings.TrimSpace(tok.Text), nil
		}
	}

	return "", ErrNoPrice
}
