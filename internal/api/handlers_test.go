package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumadev/amazon-product-scout/internal/models"
)

type stubSearcher struct {
	products []models.Product
	err      error
	gotQuery string
	gotMax   int
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]models.Product, error) {
	s.gotQuery = query
	return s.products, s.err
}

func (s *stubSearcher) SearchN(_ context.Context, query string, max int) ([]models.Product, error) {
	s.gotQuery = query
	s.gotMax = max
	if max > 0 && len(s.products) > max {
		return s.products[:max], s.err
	}
	return s.products, s.err
}

func doSearch(t *testing.T, h *Handlers, body string) (*httptest.ResponseRecorder, models.SearchResult) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.SearchWeb(rec, req)

	var result models.SearchResult
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &result)
	}
	return rec, result
}

func TestSearchWebReturnsProducts(t *testing.T) {
	web := &stubSearcher{products: []models.Product{
		{Name: "Lenovo IdeaPad 3", Price: "449.00€", Image: "https://img.example/1.jpg"},
	}}
	h := NewHandlers(web, &stubSearcher{}, slog.Default())

	rec, result := doSearch(t, h, `{"query":"portátil i5"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Lenovo IdeaPad 3", result.Products[0].Name)
	assert.Empty(t, result.Notice)
}

func TestSearchWebHonorsRequestMax(t *testing.T) {
	web := &stubSearcher{products: []models.Product{
		{Name: "Lenovo IdeaPad 3", Price: "449.00€", Image: "https://img.example/1.jpg"},
		{Name: "HP Pavilion 15", Price: "599.99€", Image: "https://img.example/2.jpg"},
		{Name: "Asus VivoBook", Price: "529.00€", Image: "https://img.example/3.jpg"},
	}}
	h := NewHandlers(web, &stubSearcher{}, slog.Default())

	rec, result := doSearch(t, h, `{"query":"laptop","max":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, web.gotMax)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Lenovo IdeaPad 3", result.Products[0].Name)
}

func TestSearchWebMaxDefaults(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMax int
	}{
		{name: "omitted", body: `{"query":"laptop"}`, wantMax: 0},
		{name: "zero", body: `{"query":"laptop","max":0}`, wantMax: 0},
		{name: "negative", body: `{"query":"laptop","max":-5}`, wantMax: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			web := &stubSearcher{products: []models.Product{
				{Name: "Lenovo IdeaPad 3", Price: "449.00€", Image: "https://img.example/1.jpg"},
			}}
			h := NewHandlers(web, &stubSearcher{}, slog.Default())

			rec, _ := doSearch(t, h, tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantMax, web.gotMax)
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	h := NewHandlers(&stubSearcher{}, &stubSearcher{}, slog.Default())

	rec, result := doSearch(t, h, `{"query":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, NoticeEmptyQuery, result.Notice)
}

func TestSearchFailureYieldsNotice(t *testing.T) {
	web := &stubSearcher{err: errors.New("connection refused")}
	h := NewHandlers(web, &stubSearcher{}, slog.Default())

	rec, result := doSearch(t, h, `{"query":"laptop"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, NoticeSearchFailed, result.Notice)
	// The raw error never reaches the client.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSearchNoResultsYieldsNotice(t *testing.T) {
	h := NewHandlers(&stubSearcher{}, &stubSearcher{}, slog.Default())

	rec, result := doSearch(t, h, `{"query":"laptop"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, NoticeNoResults, result.Notice)
}

func TestSearchInvalidBody(t *testing.T) {
	h := NewHandlers(&stubSearcher{}, &stubSearcher{}, slog.Default())

	rec, _ := doSearch(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchScreenUsesScreenPath(t *testing.T) {
	screen := &stubSearcher{products: []models.Product{
		{Name: "HP Pavilion", Price: "599,99€", Image: "screenshots/abc/product_1.png", Source: models.SourceScreen},
	}}
	h := NewHandlers(&stubSearcher{}, screen, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/search/screen", bytes.NewBufferString(`{"query":"flabelus"}`))
	rec := httptest.NewRecorder()
	h.SearchScreen(rec, req)

	var result models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Products, 1)
	assert.Equal(t, "HP Pavilion", result.Products[0].Name)
	assert.False(t, result.Products[0].IsImageURL())
}

func TestHealth(t *testing.T) {
	h := NewHandlers(&stubSearcher{}, &stubSearcher{}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
