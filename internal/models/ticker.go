package models

import (
	"encoding/json"
	"time"
)

// Ticker represents a tracked security symbol with cached profile data.
// Profile fields are overwritten wholesale on refresh, never merged.
type Ticker struct {
	ID     int64  `json:"id"`
	Symbol string `json:"ticker"` // unique key, uppercase

	Company    string `json:"company,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Exchange   string `json:"exchange,omitempty"`
	Logo       string `json:"logo,omitempty"`
	IPO        string `json:"ipo,omitempty"`
	CompanyURL string `json:"company_url,omitempty"`
	Country    string `json:"country,omitempty"`

	// Time-varying analytical arrays, stored as opaque JSON from the
	// market-data provider.
	RecommendationTrends json.RawMessage `json:"recommendation_trends,omitempty"`
	EarningsSurprises    json.RawMessage `json:"earnings_surprises,omitempty"`
	InsiderSentiment     json.RawMessage `json:"insider_sentiment,omitempty"`

	LastUpdated     *time.Time `json:"last_updated,omitempty"`      // profile freshness
	LastUpdatedNews *time.Time `json:"last_updated_news,omitempty"` // news freshness
}

// ProfileStale reports whether the cached profile is older than maxAge at
// the given instant. A ticker with no recorded update is always stale.
func (t *Ticker) ProfileStale(now time.Time, maxAge time.Duration) bool {
	return t.LastUpdated == nil || t.LastUpdated.Before(now.Add(-maxAge))
}

// NewsStale reports whether the cached news set is older than maxAge.
func (t *Ticker) NewsStale(now time.Time, maxAge time.Duration) bool {
	return t.LastUpdatedNews == nil || t.LastUpdatedNews.Before(now.Add(-maxAge))
}

// TickerSummary is the API-facing view of a ticker with article previews.
type TickerSummary struct {
	Ticker
	Articles []ArticlePreview `json:"articles"`
}

// ArticlePreview is the reduced article shape embedded in ticker summaries.
type ArticlePreview struct {
	URL      string         `json:"url"`
	Headline string         `json:"headline"`
	Images   []ArticleImage `json:"images,omitempty"`
	Mentions []string       `json:"mentions,omitempty"`
	Summary  string         `json:"summary,omitempty"`
}
