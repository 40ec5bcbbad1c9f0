package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/auspex/internal/models"
)

const articleColumns = `a.id, a.external_id, a.author, a.source, a.url, a.created, a.headline, a.summary, a.content, a.symbols, a.images`

// GetArticlesByTicker returns the articles linked to a symbol.
func (s *dbStore) GetArticlesByTicker(ctx context.Context, symbol string) ([]*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles a
		JOIN ticker_articles ta ON ta.article_id = a.id
		JOIN tickers t ON t.id = ta.ticker_id
		WHERE t.symbol = ?
		ORDER BY a.created DESC
	`

	rows, err := s.q.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles for %s: %w", symbol, err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// InsertArticle stores an article and sets its assigned ID.
func (s *dbStore) InsertArticle(ctx context.Context, article *models.Article) error {
	symbolsJSON, err := json.Marshal(article.Symbols)
	if err != nil {
		return fmt.Errorf("failed to marshal symbols: %w", err)
	}
	imagesJSON, err := json.Marshal(article.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO articles (external_id, author, source, url, created, headline, summary, content, symbols, images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ExternalID,
		article.Author,
		article.Source,
		article.URL,
		article.Created,
		article.Headline,
		article.Summary,
		article.Content,
		string(symbolsJSON),
		string(imagesJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article %d: %w", article.ExternalID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted article id: %w", err)
	}
	article.ID = id

	return nil
}

// LinkArticleTickers records the many-to-many association.
func (s *dbStore) LinkArticleTickers(ctx context.Context, articleID int64, tickerIDs []int64) error {
	for _, tickerID := range tickerIDs {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO ticker_articles (ticker_id, article_id) VALUES (?, ?)
			ON CONFLICT(ticker_id, article_id) DO NOTHING`,
			tickerID, articleID)
		if err != nil {
			return fmt.Errorf("failed to link article %d to ticker %d: %w", articleID, tickerID, err)
		}
	}
	return nil
}

// DeleteArticle removes the article. Ticker links and segments cascade.
func (s *dbStore) DeleteArticle(ctx context.Context, articleID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to delete article %d: %w", articleID, err)
	}
	return nil
}

// InsertSegment stores a segment and its embedding vector.
func (s *dbStore) InsertSegment(ctx context.Context, segment *models.Segment) error {
	symbolsJSON, err := json.Marshal(segment.Symbols)
	if err != nil {
		return fmt.Errorf("failed to marshal segment symbols: %w", err)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO segments (article_id, ord, start_ind, end_ind, symbols, embedding)
		VALUES (?, ?, ?, ?, ?, ?)`,
		segment.ArticleID,
		segment.Ord,
		segment.StartInd,
		segment.EndInd,
		string(symbolsJSON),
		encodeEmbedding(segment.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert segment for article %d: %w", segment.ArticleID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted segment id: %w", err)
	}
	segment.ID = id

	return nil
}

// GetSegmentsByArticle returns an article's segments in chunk order.
func (s *dbStore) GetSegmentsByArticle(ctx context.Context, articleID int64) ([]*models.Segment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, article_id, ord, start_ind, end_ind, symbols, embedding
		FROM segments WHERE article_id = ? ORDER BY ord`,
		articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments for article %d: %w", articleID, err)
	}
	defer rows.Close()

	var segments []*models.Segment
	for rows.Next() {
		var (
			seg         models.Segment
			symbolsJSON sql.NullString
			blob        []byte
		)
		if err := rows.Scan(&seg.ID, &seg.ArticleID, &seg.Ord, &seg.StartInd,
			&seg.EndInd, &symbolsJSON, &blob); err != nil {
			return nil, err
		}
		if symbolsJSON.Valid && symbolsJSON.String != "" {
			if err := json.Unmarshal([]byte(symbolsJSON.String), &seg.Symbols); err != nil {
				return nil, fmt.Errorf("failed to unmarshal segment symbols: %w", err)
			}
		}
		embedding, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		seg.Embedding = embedding
		segments = append(segments, &seg)
	}

	return segments, rows.Err()
}

// NearestSegments returns up to limit segments ordered by ascending cosine
// distance from the query embedding, each joined with its parent article.
func (s *dbStore) NearestSegments(ctx context.Context, embedding []float32, limit int) ([]*models.SegmentMatch, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT
			s.id, s.article_id, s.ord, s.start_ind, s.end_ind, s.symbols,
			vec_distance_cosine(s.embedding, ?) AS distance,
			` + articleColumns + `
		FROM segments s
		JOIN articles a ON a.id = s.article_id
		ORDER BY distance ASC
		LIMIT ?
	`

	rows, err := s.q.QueryContext(ctx, query, encodeEmbedding(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var matches []*models.SegmentMatch
	for rows.Next() {
		var (
			match       models.SegmentMatch
			seg         models.Segment
			art         models.Article
			symbolsJSON sql.NullString

			author, source, url   sql.NullString
			created, headline     sql.NullString
			summary, content      sql.NullString
			artSymbols, artImages sql.NullString
		)

		err := rows.Scan(
			&seg.ID, &seg.ArticleID, &seg.Ord, &seg.StartInd, &seg.EndInd, &symbolsJSON,
			&match.Distance,
			&art.ID, &art.ExternalID, &author, &source, &url, &created, &headline,
			&summary, &content, &artSymbols, &artImages,
		)
		if err != nil {
			return nil, err
		}

		if symbolsJSON.Valid && symbolsJSON.String != "" {
			if err := json.Unmarshal([]byte(symbolsJSON.String), &seg.Symbols); err != nil {
				return nil, fmt.Errorf("failed to unmarshal segment symbols: %w", err)
			}
		}

		art.Author = author.String
		art.Source = source.String
		art.URL = url.String
		art.Created = created.String
		art.Headline = headline.String
		art.Summary = summary.String
		art.Content = content.String
		if artSymbols.Valid && artSymbols.String != "" {
			if err := json.Unmarshal([]byte(artSymbols.String), &art.Symbols); err != nil {
				return nil, fmt.Errorf("failed to unmarshal article symbols: %w", err)
			}
		}
		if artImages.Valid && artImages.String != "" {
			if err := json.Unmarshal([]byte(artImages.String), &art.Images); err != nil {
				return nil, fmt.Errorf("failed to unmarshal article images: %w", err)
			}
		}

		match.Segment = seg
		match.Article = art
		matches = append(matches, &match)
	}

	return matches, rows.Err()
}

func scanArticle(row scanner) (*models.Article, error) {
	var (
		a                     models.Article
		author, source, url   sql.NullString
		created, headline     sql.NullString
		summary, content      sql.NullString
		symbolsJSON, imgsJSON sql.NullString
	)

	err := row.Scan(&a.ID, &a.ExternalID, &author, &source, &url, &created,
		&headline, &summary, &content, &symbolsJSON, &imgsJSON)
	if err != nil {
		return nil, err
	}

	a.Author = author.String
	a.Source = source.String
	a.URL = url.String
	a.Created = created.String
	a.Headline = headline.String
	a.Summary = summary.String
	a.Content = content.String

	if symbolsJSON.Valid && symbolsJSON.String != "" {
		if err := json.Unmarshal([]byte(symbolsJSON.String), &a.Symbols); err != nil {
			return nil, fmt.Errorf("failed to unmarshal article symbols: %w", err)
		}
	}
	if imgsJSON.Valid && imgsJSON.String != "" {
		if err := json.Unmarshal([]byte(imgsJSON.String), &a.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal article images: %w", err)
		}
	}

	return &a, nil
}
