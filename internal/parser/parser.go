package parser

import (
	"github.com/lumadev/amazon-product-scout/internal/models"
)

type Parser interface {
	ParseSearchResults(html string, maxResults int) ([]models.Product, error)
}
