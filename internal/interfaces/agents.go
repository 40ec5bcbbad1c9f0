package interfaces

import (
	"context"
)

// The reasoning steps below are black boxes over the LLM service. Their
// output contracts are literal strings; callers must compare exactly.

// TickerExtractor identifies the ticker symbols a query concerns.
type TickerExtractor interface {
	// ExtractTickers returns normalized uppercase symbols, possibly empty.
	ExtractTickers(ctx context.Context, query string) ([]string, error)
}

// Researcher gathers an evidence bundle for a query via bounded retrieval.
type Researcher interface {
	// Research returns retrieved evidence verbatim, or the literal sentinel
	// "not relevant" when the query is not about stocks or portfolios. An
	// empty (but non-sentinel) result is a valid outcome.
	Research(ctx context.Context, query string, sink EventSink) (string, error)
}

// Writer synthesizes a streamed markdown answer.
type Writer interface {
	// Write streams answer tokens through the sink and returns the complete
	// answer text.
	Write(ctx context.Context, query, research string, sink EventSink) (string, error)
}

// Critic judges whether an answer satisfies the query.
type Critic interface {
	// Review returns true only when the judgment is the literal string
	// "true"; any other output means the answer did not pass.
	Review(ctx context.Context, query, answer string) (bool, error)
}

// RetrievalService exposes the two presentation modes of semantic search.
// Both return a delimited text block whose exact field order and labels are
// a stable contract parsed by downstream reasoning stages.
type RetrievalService interface {
	// SearchArticles deduplicates matches by owning article and formats at
	// most a handful of distinct articles with their full content.
	SearchArticles(ctx context.Context, query string, sink EventSink) (string, error)

	// SearchSnippets formats the raw top matches with offset-sliced excerpts.
	SearchSnippets(ctx context.Context, query string, sink EventSink) (string, error)
}

// Collector refreshes cached data for one ticker symbol.
type Collector interface {
	// Collect is idempotent per freshness window; all mutations for one call
	// are committed in a single transaction.
	Collect(ctx context.Context, symbol string, sink EventSink) error
}
