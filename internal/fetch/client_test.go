package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumadev/amazon-product-scout/internal/cache"
)

type memoryCache struct {
	mu    sync.Mutex
	pages map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	html, ok := m.pages[query]
	if !ok {
		return "", cache.ErrMiss
	}
	return html, nil
}

func (m *memoryCache) Set(_ context.Context, query, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[query] = html
	return nil
}

func newTestClient(baseURL string, pageCache cache.PageCache) *Client {
	return NewClient(Options{
		BaseURL:  baseURL,
		Cache:    pageCache,
		MinDelay: time.Millisecond,
		MaxDelay: time.Millisecond,
	}, slog.Default())
}

func TestFetchSearchResults(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("k")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>results</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	html, err := client.FetchSearchResults(context.Background(), "portátil i5")
	require.NoError(t, err)

	assert.Equal(t, "<html>results</html>", html)
	assert.Equal(t, "portátil i5", gotQuery)
	assert.NotEmpty(t, gotUA)
}

func TestFetchSearchResultsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.FetchSearchResults(context.Background(), "laptop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchSearchResultsServesCachedPage(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemoryCache())

	first, err := client.FetchSearchResults(context.Background(), "laptop")
	require.NoError(t, err)
	second, err := client.FetchSearchResults(context.Background(), "laptop")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}

func TestFetchSearchResultsContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchSearchResults(ctx, "laptop")
	assert.Error(t, err)
}
