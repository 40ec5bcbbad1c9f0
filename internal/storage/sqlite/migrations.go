package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrate runs database migrations
func (s *SQLiteDB) migrate() error {
	ctx := context.Background()

	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: migrateV1},
	}

	for _, m := range migrations {
		if err := s.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return nil
}

type migration struct {
	version int
	name    string
	up      func(context.Context, *sql.Tx) error
}

func (s *SQLiteDB) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLiteDB) runMigration(ctx context.Context, m migration) error {
	// Check if migration already applied
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Already applied
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.up(ctx, tx); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, strftime('%s', 'now'))",
		m.version, m.name)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// migrateV1 creates the initial schema
func migrateV1(ctx context.Context, tx *sql.Tx) error {
	queries := []string{
		// Tracked securities. Profile fields are refreshed wholesale when
		// they go stale; the JSON columns hold provider arrays verbatim.
		`CREATE TABLE IF NOT EXISTS tickers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE,
			company TEXT,
			industry TEXT,
			exchange TEXT,
			logo TEXT,
			ipo TEXT,
			company_url TEXT,
			country TEXT,
			recommendation_trends JSON,
			earnings_surprises JSON,
			insider_sentiment JSON,
			last_updated INTEGER,
			last_updated_news INTEGER
		)`,

		// News articles, de-duplicated on the provider's external ID.
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id INTEGER NOT NULL UNIQUE,
			author TEXT,
			source TEXT,
			url TEXT,
			created TEXT,
			headline TEXT,
			summary TEXT,
			content TEXT,
			symbols JSON,
			images JSON
		)`,

		// Many-to-many ticker/article association.
		`CREATE TABLE IF NOT EXISTS ticker_articles (
			ticker_id INTEGER NOT NULL,
			article_id INTEGER NOT NULL,
			PRIMARY KEY (ticker_id, article_id),
			FOREIGN KEY (ticker_id) REFERENCES tickers(id) ON DELETE CASCADE,
			FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
		)`,

		// Article chunks with their embedding vectors. The embedding column
		// holds a little-endian float32 blob in the layout sqlite-vec expects,
		// so vec_distance_cosine can scan it directly.
		`CREATE TABLE IF NOT EXISTS segments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			article_id INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			start_ind INTEGER NOT NULL,
			end_ind INTEGER NOT NULL,
			symbols JSON,
			embedding BLOB NOT NULL,
			FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_ticker_articles_article ON ticker_articles(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_article ON segments(article_id, ord)`,
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}
