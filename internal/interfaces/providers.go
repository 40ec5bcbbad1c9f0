package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ternarybob/auspex/internal/models"
)

// CompanyProfile is the typed subset of the market-data provider's company
// profile used to populate Ticker rows.
type CompanyProfile struct {
	Name     string `json:"name"`
	Industry string `json:"finnhubIndustry"`
	Exchange string `json:"exchange"`
	Logo     string `json:"logo"`
	IPO      string `json:"ipo"`
	WebURL   string `json:"weburl"`
	Country  string `json:"country"`
}

// StockData aggregates one ticker's market data. Every field is
// independently fallible at fetch time; zero values mean that sub-fetch
// failed and are persisted as-is.
type StockData struct {
	Profile              *CompanyProfile
	RecommendationTrends json.RawMessage
	EarningsSurprises    json.RawMessage
	InsiderSentiment     json.RawMessage
}

// MarketDataProvider fetches profile and analytical data for a symbol.
// GetStockData never fails outright: sub-fetch errors are logged by the
// implementation and the corresponding fields left empty.
type MarketDataProvider interface {
	GetStockData(ctx context.Context, symbol string) (*StockData, error)
}

// NewsQuery bounds a news fetch.
type NewsQuery struct {
	Symbol string
	Limit  int
	Sort   string // "asc" or "desc"
	Since  time.Time
}

// NewsProvider fetches recent news items for a symbol. Returned items carry
// raw HTML content; callers are responsible for cleaning.
type NewsProvider interface {
	FetchNews(ctx context.Context, query NewsQuery) ([]models.NewsItem, error)
}
