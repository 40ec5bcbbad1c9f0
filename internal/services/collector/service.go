// Package collector refreshes cached market data and news for tickers. Each
// collect pass is idempotent within the configured freshness windows and
// commits all its mutations in a single transaction.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
	"github.com/ternarybob/auspex/internal/services/chunker"
	"github.com/ternarybob/auspex/internal/services/transform"
)

// Service implements the Collector interface.
type Service struct {
	storage   interfaces.StorageManager
	market    interfaces.MarketDataProvider
	news      interfaces.NewsProvider
	transform *transform.Service
	chunker   *chunker.Chunker
	embedding interfaces.EmbeddingService
	config    *common.CollectorConfig
	logger    arbor.ILogger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new collector service
func NewService(
	storage interfaces.StorageManager,
	market interfaces.MarketDataProvider,
	news interfaces.NewsProvider,
	transformSvc *transform.Service,
	chunkerSvc *chunker.Chunker,
	embedding interfaces.EmbeddingService,
	config *common.CollectorConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:   storage,
		market:    market,
		news:      news,
		transform: transformSvc,
		chunker:   chunkerSvc,
		embedding: embedding,
		config:    config,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Collect refreshes the profile and news cache for one symbol. Fresh data is
// left untouched, so repeated calls inside the freshness windows are no-ops.
func (s *Service) Collect(ctx context.Context, symbol string, sink interfaces.EventSink) error {
	if sink != nil {
		if err := sink.Send(models.StatusEvent(fmt.Sprintf("Collecting data about %s", symbol))); err != nil {
			return err
		}
	}

	return s.storage.WithTx(ctx, func(ctx context.Context, store interfaces.Store) error {
		ticker, err := store.GetTicker(ctx, symbol)
		if err != nil {
			return err
		}

		now := s.now()

		if ticker == nil || ticker.ProfileStale(now, s.config.ProfileMaxAge) {
			if sink != nil {
				if err := sink.Send(models.StatusEvent(fmt.Sprintf("Fetching ticker data about %s", symbol))); err != nil {
					return err
				}
			}

			data, err := s.market.GetStockData(ctx, symbol)
			if err != nil {
				return fmt.Errorf("failed to fetch stock data for %s: %w", symbol, err)
			}

			if ticker == nil {
				ticker = &models.Ticker{Symbol: symbol}
			}
			applyStockData(ticker, data)
			ticker.LastUpdated = &now

			if err := store.UpsertTicker(ctx, ticker); err != nil {
				return err
			}
		}

		if ticker.NewsStale(now, s.config.NewsMaxAge) {
			if sink != nil {
				if err := sink.Send(models.StatusEvent(fmt.Sprintf("Fetching news about %s", symbol))); err != nil {
					return err
				}
			}

			news, err := s.news.FetchNews(ctx, interfaces.NewsQuery{
				Symbol: symbol,
				Limit:  s.config.NewsFetchLimit,
				Sort:   "desc",
				Since:  now.Add(-s.config.NewsLookback),
			})
			if err != nil {
				return fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
			}

			if len(news) > 0 {
				ticker.LastUpdatedNews = &now
				if err := store.UpsertTicker(ctx, ticker); err != nil {
					return err
				}
				if err := s.reconcileNews(ctx, store, ticker, news); err != nil {
					return err
				}
			}
		}

		s.logger.Info().
			Str("symbol", symbol).
			Msg("Collect pass completed")

		return nil
	})
}

// applyStockData overwrites the ticker's profile fields wholesale. Partial
// provider data overwrites with zero values; freshness is tracked by
// LastUpdated, not by field presence.
func applyStockData(ticker *models.Ticker, data *interfaces.StockData) {
	if data.Profile != nil {
		ticker.Company = data.Profile.Name
		ticker.Industry = data.Profile.Industry
		ticker.Exchange = data.Profile.Exchange
		ticker.Logo = data.Profile.Logo
		ticker.IPO = data.Profile.IPO
		ticker.CompanyURL = data.Profile.WebURL
		ticker.Country = data.Profile.Country
	}
	ticker.RecommendationTrends = data.RecommendationTrends
	ticker.EarningsSurprises = data.EarningsSurprises
	ticker.InsiderSentiment = data.InsiderSentiment
}

// reconcileNews diffs the fetched news set against the ticker's stored
// articles by external ID: unseen items are ingested, stored articles absent
// from the fetch are deleted (segments cascade).
func (s *Service) reconcileNews(ctx context.Context, store interfaces.Store, ticker *models.Ticker, news []models.NewsItem) error {
	existing, err := store.GetArticlesByTicker(ctx, ticker.Symbol)
	if err != nil {
		return err
	}

	toDelete := make(map[int64]*models.Article, len(existing))
	for _, article := range existing {
		toDelete[article.ExternalID] = article
	}

	var toAdd []models.NewsItem
	for _, item := range news {
		if _, ok := toDelete[item.ID]; ok {
			delete(toDelete, item.ID)
		} else {
			toAdd = append(toAdd, item)
		}
	}

	if err := s.addArticlesBatch(ctx, store, ticker, toAdd); err != nil {
		return err
	}

	for _, article := range toDelete {
		if err := store.DeleteArticle(ctx, article.ID); err != nil {
			return err
		}
	}

	s.logger.Debug().
		Str("symbol", ticker.Symbol).
		Int("fetched", len(news)).
		Int("added", len(toAdd)).
		Int("deleted", len(toDelete)).
		Msg("News reconciliation completed")

	return nil
}

// addArticlesBatch ingests new articles: clean content, persist, link every
// mentioned ticker, then chunk and embed. A chunk whose embedding fails is
// skipped rather than failing the batch.
func (s *Service) addArticlesBatch(ctx context.Context, store interfaces.Store, ticker *models.Ticker, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	// Resolve every mentioned symbol once for the whole batch.
	symbolSet := make(map[string]bool)
	for _, item := range items {
		for _, sym := range item.Symbols {
			symbolSet[sym] = true
		}
	}
	symbols := make([]string, 0, len(symbolSet))
	for sym := range symbolSet {
		symbols = append(symbols, sym)
	}

	tickerMap, err := store.EnsureTickers(ctx, symbols)
	if err != nil {
		return err
	}
	tickerMap[ticker.Symbol] = ticker

	for _, item := range items {
		article := &models.Article{
			ExternalID: item.ID,
			Symbols:    item.Symbols,
			Author:     item.Author,
			Source:     item.Source,
			URL:        item.URL,
			Created:    item.Created,
			Headline:   item.Headline,
			Summary:    item.Summary,
			Content:    s.transform.CleanHTML(item.Content),
			Images:     item.Images,
		}

		if err := store.InsertArticle(ctx, article); err != nil {
			return err
		}

		var tickerIDs []int64
		for _, sym := range item.Symbols {
			if t, ok := tickerMap[sym]; ok {
				tickerIDs = append(tickerIDs, t.ID)
			}
		}
		if err := store.LinkArticleTickers(ctx, article.ID, tickerIDs); err != nil {
			return err
		}

		if err := s.embedArticle(ctx, store, article); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) embedArticle(ctx context.Context, store interfaces.Store, article *models.Article) error {
	chunks := s.chunker.Chunk(article.Content)

	for i, chunk := range chunks {
		if chunk.Text == "" {
			continue
		}

		vector, err := s.embedding.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("article_id", article.ID).
				Int("chunk", i).
				Msg("Skipping chunk, embedding failed")
			continue
		}

		segment := &models.Segment{
			ArticleID: article.ID,
			Ord:       i,
			StartInd:  chunk.Start,
			EndInd:    chunk.End,
			Symbols:   article.Symbols,
			Embedding: vector,
		}
		if err := store.InsertSegment(ctx, segment); err != nil {
			return err
		}
	}

	return nil
}
