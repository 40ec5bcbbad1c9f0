package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/auspex/internal/models"
)

const tickerColumns = `id, symbol, company, industry, exchange, logo, ipo, company_url, country,
	recommendation_trends, earnings_surprises, insider_sentiment, last_updated, last_updated_news`

// GetTicker returns the stored ticker for a symbol, or nil if unseen.
func (s *dbStore) GetTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+tickerColumns+` FROM tickers WHERE symbol = ?`, symbol)

	ticker, err := scanTicker(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker %s: %w", symbol, err)
	}
	return ticker, nil
}

// UpsertTicker inserts or updates a ticker by symbol.
func (s *dbStore) UpsertTicker(ctx context.Context, ticker *models.Ticker) error {
	query := `
		INSERT INTO tickers (
			symbol, company, industry, exchange, logo, ipo, company_url, country,
			recommendation_trends, earnings_surprises, insider_sentiment,
			last_updated, last_updated_news
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			company = excluded.company,
			industry = excluded.industry,
			exchange = excluded.exchange,
			logo = excluded.logo,
			ipo = excluded.ipo,
			company_url = excluded.company_url,
			country = excluded.country,
			recommendation_trends = excluded.recommendation_trends,
			earnings_surprises = excluded.earnings_surprises,
			insider_sentiment = excluded.insider_sentiment,
			last_updated = excluded.last_updated,
			last_updated_news = excluded.last_updated_news
	`

	_, err := s.q.ExecContext(ctx, query,
		ticker.Symbol,
		ticker.Company,
		ticker.Industry,
		ticker.Exchange,
		ticker.Logo,
		ticker.IPO,
		ticker.CompanyURL,
		ticker.Country,
		rawJSONOrNil(ticker.RecommendationTrends),
		rawJSONOrNil(ticker.EarningsSurprises),
		rawJSONOrNil(ticker.InsiderSentiment),
		unixOrNil(ticker.LastUpdated),
		unixOrNil(ticker.LastUpdatedNews),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ticker %s: %w", ticker.Symbol, err)
	}

	// Resolve the row ID so callers can link articles without a re-read.
	if ticker.ID == 0 {
		row := s.q.QueryRowContext(ctx, `SELECT id FROM tickers WHERE symbol = ?`, ticker.Symbol)
		if err := row.Scan(&ticker.ID); err != nil {
			return fmt.Errorf("failed to resolve ticker id for %s: %w", ticker.Symbol, err)
		}
	}

	return nil
}

// EnsureTickers resolves or creates rows for all symbols and returns them
// keyed by symbol.
func (s *dbStore) EnsureTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error) {
	result := make(map[string]*models.Ticker, len(symbols))

	for _, symbol := range symbols {
		ticker, err := s.GetTicker(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if ticker == nil {
			ticker = &models.Ticker{Symbol: symbol}
			if err := s.UpsertTicker(ctx, ticker); err != nil {
				return nil, err
			}
		}
		result[symbol] = ticker
	}

	return result, nil
}

// ListTickers returns all stored tickers ordered by symbol.
func (s *dbStore) ListTickers(ctx context.Context) ([]*models.Ticker, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+tickerColumns+` FROM tickers ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}
	defer rows.Close()

	var tickers []*models.Ticker
	for rows.Next() {
		ticker, err := scanTicker(rows)
		if err != nil {
			return nil, err
		}
		tickers = append(tickers, ticker)
	}

	return tickers, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan code.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicker(row scanner) (*models.Ticker, error) {
	var (
		t                         models.Ticker
		company, industry         sql.NullString
		exchange, logo, ipo       sql.NullString
		companyURL, country       sql.NullString
		trends, earnings, insider sql.NullString
		lastUpdated, lastNews     sql.NullInt64
	)

	err := row.Scan(&t.ID, &t.Symbol, &company, &industry, &exchange, &logo, &ipo,
		&companyURL, &country, &trends, &earnings, &insider, &lastUpdated, &lastNews)
	if err != nil {
		return nil, err
	}

	t.Company = company.String
	t.Industry = industry.String
	t.Exchange = exchange.String
	t.Logo = logo.String
	t.IPO = ipo.String
	t.CompanyURL = companyURL.String
	t.Country = country.String

	if trends.Valid {
		t.RecommendationTrends = json.RawMessage(trends.String)
	}
	if earnings.Valid {
		t.EarningsSurprises = json.RawMessage(earnings.String)
	}
	if insider.Valid {
		t.InsiderSentiment = json.RawMessage(insider.String)
	}
	if lastUpdated.Valid {
		ts := time.Unix(lastUpdated.Int64, 0).UTC()
		t.LastUpdated = &ts
	}
	if lastNews.Valid {
		ts := time.Unix(lastNews.Int64, 0).UTC()
		t.LastUpdatedNews = &ts
	}

	return &t, nil
}

func rawJSONOrNil(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func unixOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}
