package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lumadev/amazon-product-scout/internal/models"
)

// Searcher is either acquisition path: query in, ordered records out.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Product, error)
}

// WebSearcher additionally honors a per-request result cap. The screen path
// has no equivalent: its cap is the number of calibrated regions.
type WebSearcher interface {
	SearchN(ctx context.Context, query string, max int) ([]models.Product, error)
}

// Notices shown to the user instead of raw errors.
const (
	NoticeEmptyQuery   = "please enter a product name"
	NoticeSearchFailed = "search failed"
	NoticeNoResults    = "no results"
)

type Handlers struct {
	web    WebSearcher
	screen Searcher
	logger *slog.Logger
}

func NewHandlers(web WebSearcher, screen Searcher, logger *slog.Logger) *Handlers {
	return &Handlers{
		web:    web,
		screen: screen,
		logger: logger,
	}
}

// SearchRequest triggers one search batch. Max caps the result count on the
// web path; zero or negative means the configured default.
type SearchRequest struct {
	Query string `json:"query"`
	Max   int    `json:"max"`
}

// SearchWeb handles the fetch+parse path.
func (h *Handlers) SearchWeb(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "web", func(ctx context.Context, req SearchRequest) ([]models.Product, error) {
		max := req.Max
		if max < 0 {
			max = 0
		}
		return h.web.SearchN(ctx, req.Query, max)
	})
}

// SearchScreen handles the browser-automation + OCR path. The result count
// is fixed by the calibrated regions, so Max is ignored here.
func (h *Handlers) SearchScreen(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "screen", func(ctx context.Context, req SearchRequest) ([]models.Product, error) {
		return h.screen.Search(ctx, req.Query)
	})
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request, path string, run func(context.Context, SearchRequest) ([]models.Product, error)) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.respondJSON(w, http.StatusBadRequest, models.SearchResult{Notice: NoticeEmptyQuery})
		return
	}

	products, err := run(r.Context(), req)
	if err != nil {
		// The user gets a plain notice, the log gets the cause.
		h.logger.Error("search failed", "path", path, "query", req.Query, "error", err)
		h.respondJSON(w, http.StatusOK, models.SearchResult{Notice: NoticeSearchFailed})
		return
	}

	if len(products) == 0 {
		h.respondJSON(w, http.StatusOK, models.SearchResult{Notice: NoticeNoResults})
		return
	}

	h.respondJSON(w, http.StatusOK, models.SearchResult{Products: products})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
