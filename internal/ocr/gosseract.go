package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs gosseract against in-memory crops. A fresh client is
// created per call and released immediately after: no pooling, the engine is
// shared with nothing else during a batch run.
type TesseractEngine struct {
	language   string
	preprocess bool
	logger     *slog.Logger
}

// TesseractOptions configures the engine for one batch run.
type TesseractOptions struct {
	// Language is the tesseract traineddata name, e.g. "spa" or "eng".
	Language string
	// Preprocess enables the grayscale/sharpen/contrast pass before
	// recognition. Product tiles are low-contrast on white, so this is on
	// by default.
	Preprocess bool
}

func NewTesseractEngine(opts TesseractOptions, logger *slog.Logger) *TesseractEngine {
	if opts.Language == "" {
		opts.Language = "spa"
	}
	return &TesseractEngine{
		language:   opts.Language,
		preprocess: opts.Preprocess,
		logger:     logger.With("component", "ocr"),
	}
}

// Recognize runs tesseract in structured mode and returns word tokens in
// reading order. Recognizing an empty crop is not an error; it yields an
// empty bag.
func (e *TesseractEngine) Recognize(img image.Image) (TokenBag, error) {
	if img == nil || img.Bounds().Empty() {
		return TokenBag{}, nil
	}

	if e.preprocess {
		img = Preprocess(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("failed to set language %q: %w", e.language, err)
	}
	client.SetPageSegMode(gosseract.PSM_AUTO)

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load crop: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	bag := make(TokenBag, 0, len(boxes))
	for i, box := range boxes {
		bag = append(bag, Token{Text: box.Word, Index: i})
	}

	e.logger.Debug("recognized crop", "tokens", len(bag))
	return bag, nil
}

func (e *TesseractEngine) Close() error {
	return nil
}
