package alpaca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/auspex/internal/interfaces"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("key-id", "key-secret",
		WithBaseURL(srv.URL),
		WithRateLimit(1000),
	)
}

func TestFetchNewsRequestShape(t *testing.T) {
	since := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "key-id", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "key-secret", r.Header.Get("APCA-API-SECRET-KEY"))

		q := r.URL.Query()
		assert.Equal(t, "ACME", q.Get("symbols"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Equal(t, "true", q.Get("include_content"))
		assert.Equal(t, "true", q.Get("exclude_contentless"))
		assert.Equal(t, "2025-11-07T12:00:00Z", q.Get("start"))

		w.Write([]byte(`{"news": [{"id": 42, "headline": "Acme rallies", "content": "<p>Body</p>", "symbols": ["ACME"]}]}`))
	})

	items, err := client.FetchNews(context.Background(), interfaces.NewsQuery{
		Symbol: "ACME",
		Limit:  25,
		Since:  since,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(42), items[0].ID)
	assert.Equal(t, "Acme rallies", items[0].Headline)
	assert.Equal(t, "<p>Body</p>", items[0].Content)
}

func TestFetchNewsClampsLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"news": []}`))
	})

	_, err := client.FetchNews(context.Background(), interfaces.NewsQuery{Symbol: "ACME", Limit: 500})
	require.NoError(t, err)
}

func TestFetchNewsDefaultsLimitAndSort(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Empty(t, q.Get("start"), "zero Since omits the start bound")
		w.Write([]byte(`{"news": []}`))
	})

	_, err := client.FetchNews(context.Background(), interfaces.NewsQuery{Symbol: "ACME"})
	require.NoError(t, err)
}

func TestFetchNewsRateLimitedReturnsTypedError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchNews(context.Background(), interfaces.NewsQuery{Symbol: "ACME"})
	require.Error(t, err)
	var rateErr *RateLimitError
	assert.ErrorAs(t, err, &rateErr)
}

func TestFetchNewsAuthFailureReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("forbidden"))
	})

	_, err := client.FetchNews(context.Background(), interfaces.NewsQuery{Symbol: "ACME"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
