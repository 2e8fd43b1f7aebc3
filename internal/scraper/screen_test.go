package scraper

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumadev/amazon-product-scout/internal/config"
	"github.com/lumadev/amazon-product-scout/internal/models"
	"github.com/lumadev/amazon-product-scout/internal/ocr"
	"github.com/lumadev/amazon-product-scout/internal/region"
)

type stubDriver struct {
	img image.Image
	err error
}

func (d *stubDriver) SearchAndCapture(_ context.Context, _ string) (image.Image, error) {
	return d.img, d.err
}

// queueEngine answers Recognize calls in order: per region, the name crop is
// recognized first, then the price crop.
type queueEngine struct {
	bags []ocr.TokenBag
	errs []error
	call int
}

func (e *queueEngine) Recognize(_ image.Image) (ocr.TokenBag, error) {
	i := e.call
	e.call++
	if i < len(e.errs) && e.errs[i] != nil {
		return nil, e.errs[i]
	}
	if i < len(e.bags) {
		return e.bags[i], nil
	}
	return ocr.TokenBag{}, nil
}

func (e *queueEngine) Close() error { return nil }

func tokens(texts ...string) ocr.TokenBag {
	bag := make(ocr.TokenBag, 0, len(texts))
	for i, text := range texts {
		bag = append(bag, ocr.Token{Text: text, Index: i})
	}
	return bag
}

func automationConfig(t *testing.T, boxes []region.Box) config.AutomationConfig {
	t.Helper()
	return config.AutomationConfig{
		ScreenshotDir: t.TempDir(),
		ProductBoxes:  boxes,
	}
}

func testScreenshot() image.Image {
	return imaging.New(1200, 800, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

func twoBoxes() []region.Box {
	return []region.Box{
		{Left: 0, Top: 0, Right: 200, Bottom: 400},
		{Left: 220, Top: 0, Right: 420, Bottom: 400},
	}
}

func TestScreenScraperSearch(t *testing.T) {
	driver := &stubDriver{img: testScreenshot()}
	engine := &queueEngine{bags: []ocr.TokenBag{
		tokens("Lenovo", "IdeaPad", "3"), // region 0 name
		tokens("449,00€"),                // region 0 price
		tokens("HP", "Pavilion"),         // region 1 name
		tokens("ruido", "599,99€"),       // region 1 price
	}}

	s := NewScreenScraper(driver, engine, automationConfig(t, twoBoxes()), "€", slog.Default())

	products, err := s.Search(context.Background(), "portátil")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Lenovo IdeaPad", products[0].Name)
	assert.Equal(t, "449,00€", products[0].Price)
	assert.Equal(t, models.SourceScreen, products[0].Source)
	assert.False(t, products[0].IsImageURL())

	assert.Equal(t, "HP Pavilion", products[1].Name)
	assert.Equal(t, "599,99€", products[1].Price)

	// Image sub-crops were written to disk.
	for _, p := range products {
		info, err := os.Stat(p.Image)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestScreenScraperFieldFailuresDegradeToSentinel(t *testing.T) {
	driver := &stubDriver{img: testScreenshot()}
	engine := &queueEngine{
		bags: []ocr.TokenBag{
			tokens("   ", ""),  // region 0 name: nothing usable
			tokens("no-price"), // region 0 price: no marker
		},
	}

	s := NewScreenScraper(driver, engine, automationConfig(t, twoBoxes()[:1]), "€", slog.Default())

	products, err := s.Search(context.Background(), "portátil")
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, models.NotAvailable, products[0].Name)
	assert.Equal(t, models.NotAvailable, products[0].Price)
}

func TestScreenScraperOneBadRegionDoesNotAbortBatch(t *testing.T) {
	boxes := []region.Box{
		{Left: 0, Top: 0, Right: 200, Bottom: 400},
		{Left: 5000, Top: 5000, Right: 5200, Bottom: 5400}, // outside the screenshot
		{Left: 220, Top: 0, Right: 420, Bottom: 400},
	}

	driver := &stubDriver{img: testScreenshot()}
	engine := &queueEngine{bags: []ocr.TokenBag{
		tokens("First", "Product"),
		tokens("100,00€"),
		tokens("Third", "Product"),
		tokens("300,00€"),
	}}

	s := NewScreenScraper(driver, engine, automationConfig(t, boxes), "€", slog.Default())

	products, err := s.Search(context.Background(), "portátil")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "First Product", products[0].Name)
	assert.Equal(t, "Third Product", products[1].Name)
}

func TestScreenScraperRecognitionErrorDegradesToSentinel(t *testing.T) {
	driver := &stubDriver{img: testScreenshot()}
	engine := &queueEngine{
		bags: []ocr.TokenBag{nil, tokens("449,00€")},
		errs: []error{errors.New("tesseract crashed"), nil},
	}

	s := NewScreenScraper(driver, engine, automationConfig(t, twoBoxes()[:1]), "€", slog.Default())

	products, err := s.Search(context.Background(), "portátil")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.NotAvailable, products[0].Name)
	assert.Equal(t, "449,00€", products[0].Price)
}

func TestScreenScraperCaptureFailure(t *testing.T) {
	driver := &stubDriver{err: errors.New("browser gone")}
	engine := &queueEngine{}

	s := NewScreenScraper(driver, engine, automationConfig(t, twoBoxes()), "€", slog.Default())

	products, err := s.Search(context.Background(), "portátil")
	require.Error(t, err)
	assert.Nil(t, products)
}
