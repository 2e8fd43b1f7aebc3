package ocr

import "image"

// Token is one recognized text fragment. Index is the engine reading-order
// position (lines top-to-bottom, words left-to-right). Text may be empty or
// whitespace-only; filtering is the normalizer's job.
type Token struct {
	Text  string
	Index int
}

// TokenBag is the ordered token sequence produced by one recognition call.
type TokenBag []Token

// Engine recognizes text in a cropped image region. Implementations are not
// safe for concurrent use; the screen collector calls Recognize sequentially
// and exclusively.
type Engine interface {
	Recognize(img image.Image) (TokenBag, error)
	Close() error
}
