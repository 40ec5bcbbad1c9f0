package collector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
	"github.com/ternarybob/auspex/internal/services/chunker"
	"github.com/ternarybob/auspex/internal/services/transform"
)

// memStore is an in-memory Store recording mutations for assertions.
type memStore struct {
	tickers  map[string]*models.Ticker
	articles map[int64]*models.Article
	segments []*models.Segment
	links    map[int64][]int64

	nextTickerID  int64
	nextArticleID int64

	inserted []int64
	deleted  []int64
}

func newMemStore() *memStore {
	return &memStore{
		tickers:  make(map[string]*models.Ticker),
		articles: make(map[int64]*models.Article),
		links:    make(map[int64][]int64),
	}
}

func (m *memStore) GetTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	t, ok := m.tickers[symbol]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (m *memStore) UpsertTicker(ctx context.Context, ticker *models.Ticker) error {
	if existing, ok := m.tickers[ticker.Symbol]; ok {
		ticker.ID = existing.ID
	} else if ticker.ID == 0 {
		m.nextTickerID++
		ticker.ID = m.nextTickerID
	}
	copied := *ticker
	m.tickers[ticker.Symbol] = &copied
	return nil
}

func (m *memStore) EnsureTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error) {
	out := make(map[string]*models.Ticker, len(symbols))
	for _, sym := range symbols {
		if _, ok := m.tickers[sym]; !ok {
			m.nextTickerID++
			m.tickers[sym] = &models.Ticker{ID: m.nextTickerID, Symbol: sym}
		}
		out[sym] = m.tickers[sym]
	}
	return out, nil
}

func (m *memStore) ListTickers(ctx context.Context) ([]*models.Ticker, error) {
	var out []*models.Ticker
	for _, t := range m.tickers {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) GetArticlesByTicker(ctx context.Context, symbol string) ([]*models.Article, error) {
	ticker, ok := m.tickers[symbol]
	if !ok {
		return nil, nil
	}
	var out []*models.Article
	for id, article := range m.articles {
		for _, tid := range m.links[id] {
			if tid == ticker.ID {
				out = append(out, article)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) InsertArticle(ctx context.Context, article *models.Article) error {
	m.nextArticleID++
	article.ID = m.nextArticleID
	copied := *article
	m.articles[article.ID] = &copied
	m.inserted = append(m.inserted, article.ExternalID)
	return nil
}

func (m *memStore) LinkArticleTickers(ctx context.Context, articleID int64, tickerIDs []int64) error {
	m.links[articleID] = append(m.links[articleID], tickerIDs...)
	return nil
}

func (m *memStore) DeleteArticle(ctx context.Context, articleID int64) error {
	delete(m.articles, articleID)
	delete(m.links, articleID)
	var kept []*models.Segment
	for _, seg := range m.segments {
		if seg.ArticleID != articleID {
			kept = append(kept, seg)
		}
	}
	m.segments = kept
	m.deleted = append(m.deleted, articleID)
	return nil
}

func (m *memStore) InsertSegment(ctx context.Context, segment *models.Segment) error {
	copied := *segment
	m.segments = append(m.segments, &copied)
	return nil
}

func (m *memStore) GetSegmentsByArticle(ctx context.Context, articleID int64) ([]*models.Segment, error) {
	var out []*models.Segment
	for _, seg := range m.segments {
		if seg.ArticleID == articleID {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (m *memStore) NearestSegments(ctx context.Context, embedding []float32, limit int) ([]*models.SegmentMatch, error) {
	return nil, nil
}

// memManager satisfies StorageManager over a memStore; WithTx runs fn
// directly, rollback behavior is not under test here.
type memManager struct {
	store *memStore
}

func (m *memManager) Store() interfaces.Store { return m.store }

func (m *memManager) WithTx(ctx context.Context, fn func(ctx context.Context, store interfaces.Store) error) error {
	return fn(ctx, m.store)
}

func (m *memManager) AuditStorage() interfaces.AuditStorage { return nil }

func (m *memManager) Close() error { return nil }

// mockMarket implements MarketDataProvider
type mockMarket struct {
	data  *interfaces.StockData
	err   error
	calls int
}

func (m *mockMarket) GetStockData(ctx context.Context, symbol string) (*interfaces.StockData, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.data != nil {
		return m.data, nil
	}
	return &interfaces.StockData{}, nil
}

// mockNews implements NewsProvider
type mockNews struct {
	items     []models.NewsItem
	err       error
	calls     int
	lastQuery interfaces.NewsQuery
}

func (m *mockNews) FetchNews(ctx context.Context, query interfaces.NewsQuery) ([]models.NewsItem, error) {
	m.calls++
	m.lastQuery = query
	return m.items, m.err
}

// mockEmbedding implements EmbeddingService
type mockEmbedding struct {
	failFor map[string]bool
}

func (m *mockEmbedding) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.failFor[text] {
		return nil, errors.New("embed failed")
	}
	return []float32{0.5, 0.5}, nil
}

func (m *mockEmbedding) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return m.GenerateEmbedding(ctx, query)
}

func (m *mockEmbedding) Dimension() int { return 2 }

func (m *mockEmbedding) IsAvailable(ctx context.Context) bool { return true }

func testCollectorConfig() *common.CollectorConfig {
	return &common.CollectorConfig{
		ProfileMaxAge:  10 * 24 * time.Hour,
		NewsMaxAge:     24 * time.Hour,
		NewsLookback:   3 * 24 * time.Hour,
		NewsFetchLimit: 50,
		ChunkSize:      1500,
		MinChunkChars:  24,
	}
}

func newTestService(store *memStore, market *mockMarket, news *mockNews, embedding *mockEmbedding) *Service {
	logger := common.GetLogger()
	svc := NewService(
		&memManager{store: store},
		market,
		news,
		transform.NewService(logger),
		chunker.New(1500, 24),
		embedding,
		testCollectorConfig(),
		logger,
	)
	return svc
}

func fixedNow() time.Time {
	return time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
}

func newsItem(id int64, symbols []string, content string) models.NewsItem {
	return models.NewsItem{
		ID:       id,
		Symbols:  symbols,
		Headline: "Headline",
		URL:      "https://news.test/a",
		Created:  "2025-11-09T08:00:00Z",
		Content:  content,
	}
}

func TestCollectNewTickerFetchesEverything(t *testing.T) {
	store := newMemStore()
	market := &mockMarket{data: &interfaces.StockData{
		Profile: &interfaces.CompanyProfile{
			Name:     "Acme Corp",
			Industry: "Manufacturing",
			Exchange: "NYSE",
		},
		RecommendationTrends: json.RawMessage(`[{"buy":10}]`),
	}}
	news := &mockNews{items: []models.NewsItem{
		newsItem(100, []string{"ACME"}, "<p>Acme shares rallied on strong quarterly earnings and raised guidance.</p>"),
	}}
	svc := newTestService(store, market, news, &mockEmbedding{})
	svc.now = fixedNow

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	ticker := store.tickers["ACME"]
	require.NotNil(t, ticker)
	assert.Equal(t, "Acme Corp", ticker.Company)
	assert.Equal(t, "NYSE", ticker.Exchange)
	require.NotNil(t, ticker.LastUpdated)
	assert.Equal(t, fixedNow(), *ticker.LastUpdated)
	require.NotNil(t, ticker.LastUpdatedNews)

	require.Len(t, store.articles, 1)
	for _, article := range store.articles {
		assert.NotContains(t, article.Content, "<p>", "content must be cleaned")
	}
	assert.NotEmpty(t, store.segments, "article content must be embedded")
}

func TestCollectFreshTickerIsNoOp(t *testing.T) {
	now := fixedNow()
	store := newMemStore()
	recent := now.Add(-time.Hour)
	store.tickers["ACME"] = &models.Ticker{
		ID:              1,
		Symbol:          "ACME",
		LastUpdated:     &recent,
		LastUpdatedNews: &recent,
	}
	market := &mockMarket{}
	news := &mockNews{}
	svc := newTestService(store, market, news, &mockEmbedding{})
	svc.now = func() time.Time { return now }

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	assert.Zero(t, market.calls, "fresh profile must not be refetched")
	assert.Zero(t, news.calls, "fresh news must not be refetched")
}

func TestCollectStaleNewsOnlyRefetchesNews(t *testing.T) {
	now := fixedNow()
	store := newMemStore()
	recentProfile := now.Add(-time.Hour)
	staleNews := now.Add(-48 * time.Hour)
	store.tickers["ACME"] = &models.Ticker{
		ID:              1,
		Symbol:          "ACME",
		LastUpdated:     &recentProfile,
		LastUpdatedNews: &staleNews,
	}
	market := &mockMarket{}
	news := &mockNews{items: []models.NewsItem{
		newsItem(200, []string{"ACME"}, "Fresh news body with enough words to pass through chunking."),
	}}
	svc := newTestService(store, market, news, &mockEmbedding{})
	svc.now = func() time.Time { return now }

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	assert.Zero(t, market.calls)
	assert.Equal(t, 1, news.calls)
	assert.Equal(t, now.Add(-3*24*time.Hour), news.lastQuery.Since)
	assert.Equal(t, 50, news.lastQuery.Limit)
	assert.Equal(t, "desc", news.lastQuery.Sort)
}

func TestCollectEmptyNewsFetchKeepsStaleMarker(t *testing.T) {
	now := fixedNow()
	store := newMemStore()
	recentProfile := now.Add(-time.Hour)
	staleNews := now.Add(-48 * time.Hour)
	store.tickers["ACME"] = &models.Ticker{
		ID:              1,
		Symbol:          "ACME",
		LastUpdated:     &recentProfile,
		LastUpdatedNews: &staleNews,
	}
	svc := newTestService(store, &mockMarket{}, &mockNews{}, &mockEmbedding{})
	svc.now = func() time.Time { return now }

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	// An empty fetch must not advance the freshness marker; the next pass
	// should try again.
	assert.Equal(t, staleNews, *store.tickers["ACME"].LastUpdatedNews)
}

func TestCollectReconcilesNewsByExternalID(t *testing.T) {
	now := fixedNow()
	store := newMemStore()
	staleNews := now.Add(-48 * time.Hour)
	recentProfile := now.Add(-time.Hour)
	store.tickers["ACME"] = &models.Ticker{
		ID:              1,
		Symbol:          "ACME",
		LastUpdated:     &recentProfile,
		LastUpdatedNews: &staleNews,
	}

	// Stored article 300 survives, 301 disappears from the feed.
	store.articles[11] = &models.Article{ID: 11, ExternalID: 300}
	store.articles[12] = &models.Article{ID: 12, ExternalID: 301}
	store.links[11] = []int64{1}
	store.links[12] = []int64{1}
	store.nextArticleID = 12

	news := &mockNews{items: []models.NewsItem{
		newsItem(300, []string{"ACME"}, "Still in the feed."),
		newsItem(302, []string{"ACME"}, "Newly published article body."),
	}}
	svc := newTestService(store, &mockMarket{}, news, &mockEmbedding{})
	svc.now = func() time.Time { return now }

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{302}, store.inserted, "only the unseen item is ingested")
	assert.Equal(t, []int64{12}, store.deleted, "the vanished article is removed")
	_, ok := store.articles[11]
	assert.True(t, ok, "the still-present article survives")
}

func TestCollectEmbedFailureSkipsChunkOnly(t *testing.T) {
	store := newMemStore()
	market := &mockMarket{}
	body := "First paragraph with plenty of words to form a chunk of text.\r\n" +
		"Second paragraph, also with plenty of words to form its own chunk."
	news := &mockNews{items: []models.NewsItem{newsItem(400, []string{"ACME"}, body)}}

	embedding := &mockEmbedding{failFor: map[string]bool{}}
	svc := newTestService(store, market, news, embedding)
	// Chunk small enough to split the two paragraphs apart.
	svc.chunker = chunker.New(70, 10)
	svc.now = fixedNow

	chunks := svc.chunker.Chunk(svc.transform.CleanHTML(body))
	require.Len(t, chunks, 2)
	embedding.failFor[chunks[0].Text] = true

	err := svc.Collect(context.Background(), "ACME", nil)
	require.NoError(t, err)

	require.Len(t, store.segments, 1, "failed chunk skipped, good chunk stored")
	assert.Equal(t, 1, store.segments[0].Ord)
}

func TestCollectEmitsStatusEvents(t *testing.T) {
	store := newMemStore()
	news := &mockNews{items: []models.NewsItem{newsItem(500, []string{"ACME"}, "Body text for the article.")}}
	svc := newTestService(store, &mockMarket{}, news, &mockEmbedding{})
	svc.now = fixedNow

	var updates []string
	sink := interfaces.EventSinkFunc(func(event models.Event) error {
		updates = append(updates, event.Update)
		return nil
	})

	err := svc.Collect(context.Background(), "ACME", sink)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Collecting data about ACME",
		"Fetching ticker data about ACME",
		"Fetching news about ACME",
	}, updates)
}

func TestCollectMarketFailureAborts(t *testing.T) {
	store := newMemStore()
	market := &mockMarket{err: errors.New("provider down")}
	svc := newTestService(store, market, &mockNews{}, &mockEmbedding{})
	svc.now = fixedNow

	err := svc.Collect(context.Background(), "ACME", nil)
	require.Error(t, err)
	assert.Empty(t, store.tickers, "nothing is stored when the fetch fails")
}
