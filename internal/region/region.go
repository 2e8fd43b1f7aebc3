package region

import (
	"image"

	"github.com/disintegration/imaging"
)

// Box is a rectangular product region in screenshot pixel coordinates.
// Boxes come from calibration config, they are never computed at runtime.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Valid reports whether the box spans a positive area.
func (b Box) Valid() bool {
	return b.Left < b.Right && b.Top < b.Bottom
}

func (b Box) rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// CroppedProduct bundles one product crop with its three sub-crops.
// The search-result tile layout puts the photo in the top half, the title in
// the next quarter and the price in the bottom quarter.
type CroppedProduct struct {
	Full  image.Image
	Image image.Image
	Name  image.Image
	Price image.Image
}

// Decompose cuts the given screenshot along the configured product boxes and
// splits each crop into image/name/price sub-regions. Output order matches the
// box order. An out-of-bounds box degenerates to an empty or partial crop; it
// is not an error here, downstream extraction fails per item and the batch
// continues.
func Decompose(img image.Image, boxes []Box) []CroppedProduct {
	products := make([]CroppedProduct, 0, len(boxes))

	for _, box := range boxes {
		full := imaging.Crop(img, box.rect())
		products = append(products, split(full))
	}

	return products
}

// split partitions a product crop into its three sub-regions. The sub-region
// heights always sum to the crop height: h/2 + (3h/4 - h/2) + (h - 3h/4) == h.
func split(full image.Image) CroppedProduct {
	w := full.Bounds().Dx()
	h := full.Bounds().Dy()

	return CroppedProduct{
		Full:  full,
		Image: imaging.Crop(full, image.Rect(0, 0, w, h/2)),
		Name:  imaging.Crop(full, image.Rect(0, h/2, w, 3*h/4)),
		Price: imaging.Crop(full, image.Rect(0, 3*h/4, w, h)),
	}
}
