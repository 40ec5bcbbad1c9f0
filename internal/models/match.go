package models

// SegmentMatch is one nearest-neighbor candidate: a segment, its parent
// article, and the cosine distance from the query vector (ascending order
// from the store). Similarity() normalizes distance to 0..1, higher = more
// similar.
type SegmentMatch struct {
	Segment  Segment
	Article  Article
	Distance float64
}

// Similarity converts cosine distance to a normalized similarity score.
func (m *SegmentMatch) Similarity() float64 {
	return 1.0 - m.Distance
}

// Excerpt returns the segment's exact substring of the article content.
// Out-of-range offsets (content changed underneath, never expected) clamp
// to the content bounds.
func (m *SegmentMatch) Excerpt() string {
	content := m.Article.Content
	start, end := m.Segment.StartInd, m.Segment.EndInd
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	if start >= end {
		return ""
	}
	return content[start:end]
}
