package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preprocess prepares a crop for recognition: grayscale, sharpen, then a
// contrast boost. Tesseract reads the thin product-tile fonts noticeably
// better on the boosted image.
func Preprocess(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.Sharpen(out, 1.0)
	out = imaging.AdjustContrast(out, 40)
	return out
}
