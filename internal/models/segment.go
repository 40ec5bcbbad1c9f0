package models

// Segment is one chunk of an article's content plus its embedding vector.
// Offsets recover the exact substring: content[StartInd:EndInd].
// Invariant: 0 <= StartInd <= EndInd <= len(content); segments of one
// article have non-overlapping ranges, non-decreasing in Ord order.
type Segment struct {
	ID        int64 `json:"id"`
	ArticleID int64 `json:"article_id"`
	Ord       int   `json:"order"` // chunk index within the article
	StartInd  int   `json:"start_ind"`
	EndInd    int   `json:"end_ind"`

	// Symbols are the parent article's tickers at creation time,
	// denormalized for filtering without a join.
	Symbols []string `json:"symbols"`

	Embedding []float32 `json:"-"`
}
