package interfaces

import (
	"context"

	"github.com/ternarybob/auspex/internal/models"
)

// TickerStorage persists tickers keyed by symbol.
type TickerStorage interface {
	// GetTicker returns the stored ticker or nil if the symbol is unseen.
	GetTicker(ctx context.Context, symbol string) (*models.Ticker, error)

	// UpsertTicker inserts or updates by symbol. On conflict the stored row
	// is overwritten with the given fields; concurrent upserts for the same
	// symbol must not error.
	UpsertTicker(ctx context.Context, ticker *models.Ticker) error

	// EnsureTickers resolves or creates rows for all symbols in one pass and
	// returns them keyed by symbol.
	EnsureTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error)

	// ListTickers returns all stored tickers.
	ListTickers(ctx context.Context) ([]*models.Ticker, error)
}

// ArticleStorage persists articles, their ticker links, and their segments.
type ArticleStorage interface {
	// GetArticlesByTicker returns the articles linked to a symbol.
	GetArticlesByTicker(ctx context.Context, symbol string) ([]*models.Article, error)

	// InsertArticle stores the article and sets its assigned ID.
	InsertArticle(ctx context.Context, article *models.Article) error

	// LinkArticleTickers records the many-to-many association.
	LinkArticleTickers(ctx context.Context, articleID int64, tickerIDs []int64) error

	// DeleteArticle removes the article, its ticker links, and its segments.
	DeleteArticle(ctx context.Context, articleID int64) error

	// InsertSegment stores a segment and its embedding vector.
	InsertSegment(ctx context.Context, segment *models.Segment) error

	// GetSegmentsByArticle returns an article's segments in Ord order.
	GetSegmentsByArticle(ctx context.Context, articleID int64) ([]*models.Segment, error)

	// NearestSegments returns up to limit segments ordered by ascending
	// cosine distance from the query embedding, each joined with its parent
	// article.
	NearestSegments(ctx context.Context, embedding []float32, limit int) ([]*models.SegmentMatch, error)
}

// Store combines the relational storage surfaces. A Store may be backed by
// the database directly (auto-commit) or by an open transaction.
type Store interface {
	TickerStorage
	ArticleStorage
}

// AuditStorage persists the LLM audit trail.
type AuditStorage interface {
	Append(record *models.AuditRecord) error
	Recent(limit int) ([]models.AuditRecord, error)
	Close() error
}

// StorageManager owns the storage backends.
type StorageManager interface {
	// Store returns the auto-commit store.
	Store() Store

	// WithTx runs fn inside one transaction: commit on nil return, rollback
	// on error or panic.
	WithTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error

	// AuditStorage returns the audit-trail store.
	AuditStorage() AuditStorage

	Close() error
}
