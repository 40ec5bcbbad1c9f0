// Package retrieval runs semantic search over stored article segments and
// formats the matches for the reasoning stages.
package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// Service implements RetrievalService. Both presentation modes share one
// KNN pass: embed the query, fetch candidates in ascending distance order,
// truncate at the similarity floor.
type Service struct {
	store     interfaces.Store
	embedding interfaces.EmbeddingService
	config    *common.RetrievalConfig
	logger    arbor.ILogger
}

// NewService creates a new retrieval service
func NewService(store interfaces.Store, embedding interfaces.EmbeddingService, config *common.RetrievalConfig, logger arbor.ILogger) *Service {
	return &Service{
		store:     store,
		embedding: embedding,
		config:    config,
		logger:    logger,
	}
}

// search embeds the query and returns candidates at or above the similarity
// floor. Candidates arrive in ascending distance order, so the scan stops at
// the first one below the floor.
func (s *Service) search(ctx context.Context, query string, limit int) ([]*models.SegmentMatch, error) {
	vector, err := s.embedding.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := s.store.NearestSegments(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	var matches []*models.SegmentMatch
	for _, candidate := range candidates {
		if candidate.Similarity() < s.config.SimilarityFloor {
			break
		}
		matches = append(matches, candidate)
	}

	s.logger.Debug().
		Str("query", query).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("Semantic search completed")

	return matches, nil
}

// SearchArticles returns full-article context for a query. Matches are
// deduplicated by owning article, first match wins, capped at the configured
// article limit. The output format is a stable contract parsed downstream.
func (s *Service) SearchArticles(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	if sink != nil {
		if err := sink.Send(models.StatusEvent(fmt.Sprintf("Searching articles... '%s'", query))); err != nil {
			return "", err
		}
	}

	matches, err := s.search(ctx, query, s.config.MaxCandidates)
	if err != nil {
		return "", err
	}

	seen := make(map[int64]bool)
	res := ""
	count := 0
	for _, m := range matches {
		if seen[m.Article.ID] {
			continue
		}
		seen[m.Article.ID] = true
		if count >= s.config.MaxArticles {
			break
		}
		count++

		if sink != nil {
			if err := sink.Send(models.PreviewEvent(&m.Article)); err != nil {
				return "", err
			}
		}
		res += fmt.Sprintf("Reference: [%s](%s),\nDate: %s, Text: %s)\n",
			m.Article.Headline, m.Article.URL, m.Article.Created, m.Article.Content)
	}

	return res, nil
}

// SearchSnippets returns offset-sliced excerpts for a query. The candidate
// pool is already capped at the snippet limit, mirroring the narrower scope
// of snippet queries.
func (s *Service) SearchSnippets(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	if sink != nil {
		if err := sink.Send(models.StatusEvent(fmt.Sprintf("Searching... '%s'", query))); err != nil {
			return "", err
		}
	}

	matches, err := s.search(ctx, query, s.config.MaxSnippets)
	if err != nil {
		return "", err
	}

	res := ""
	for _, m := range matches {
		if sink != nil {
			if err := sink.Send(models.PreviewEvent(&m.Article)); err != nil {
				return "", err
			}
		}
		res += fmt.Sprintf("Reference: [%s](%s),\nDate: %s\nSnippet: %s\n",
			m.Article.Headline, m.Article.URL, m.Article.Created, m.Excerpt())
	}

	return res, nil
}
