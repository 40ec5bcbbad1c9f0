// Package chunker splits article text into bounded, contiguous chunks for
// embedding. Chunks partition the input exactly: concatenating them in order
// reproduces the original text, and each chunk's offsets index into it.
package chunker

import "strings"

const (
	// DefaultChunkSize is the maximum chunk length in bytes.
	DefaultChunkSize = 1500

	// DefaultMinChars is the minimum chunk length; shorter chunks are merged
	// into a neighbor.
	DefaultMinChars = 24
)

// Chunk is one contiguous slice of the input text.
// Invariant: Text == input[Start:End].
type Chunk struct {
	Text  string
	Start int
	End   int
}

// Chunker performs recursive character chunking. Splitting prefers paragraph
// boundaries, then sentence punctuation, then falls back to fixed-size cuts.
type Chunker struct {
	chunkSize int
	minChars  int
}

// New creates a chunker. Non-positive arguments fall back to defaults.
func New(chunkSize, minChars int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Chunker{chunkSize: chunkSize, minChars: minChars}
}

// delimiter sets per recursion level. Delimiters stay attached to the end of
// the preceding piece so no text is lost.
var levels = [][]string{
	{"\r\n", "\n\n", "\n"},
	{".", "?", "!", ";", ":"},
}

// Chunk splits text into chunks of at most the configured size. Empty input
// yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	if text == "" {
		return nil
	}

	pieces := c.split(text, 0)
	pieces = c.mergeShort(pieces)

	chunks := make([]Chunk, 0, len(pieces))
	start := 0
	for _, piece := range pieces {
		end := start + len(piece)
		chunks = append(chunks, Chunk{Text: piece, Start: start, End: end})
		start = end
	}
	return chunks
}

// split recursively partitions text into pieces no longer than chunkSize.
func (c *Chunker) split(text string, level int) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	if level >= len(levels) {
		// Fallback: fixed-size cuts.
		var pieces []string
		for len(text) > c.chunkSize {
			pieces = append(pieces, text[:c.chunkSize])
			text = text[c.chunkSize:]
		}
		if text != "" {
			pieces = append(pieces, text)
		}
		return pieces
	}

	parts := splitKeepDelims(text, levels[level])
	parts = c.packParts(parts)

	var pieces []string
	for _, part := range parts {
		if len(part) > c.chunkSize {
			pieces = append(pieces, c.split(part, level+1)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// splitKeepDelims splits text after each delimiter occurrence, keeping the
// delimiter on the preceding part.
func splitKeepDelims(text string, delims []string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); {
		matched := 0
		for _, d := range delims {
			if strings.HasPrefix(text[i:], d) {
				matched = len(d)
				break
			}
		}
		if matched > 0 {
			parts = append(parts, text[start:i+matched])
			i += matched
			start = i
		} else {
			i++
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// packParts greedily merges adjacent parts while the result stays within
// chunkSize, reducing fragmentation from dense delimiters.
func (c *Chunker) packParts(parts []string) []string {
	var packed []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && current.Len()+len(part) > c.chunkSize {
			packed = append(packed, current.String())
			current.Reset()
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		packed = append(packed, current.String())
	}
	return packed
}

// mergeShort folds pieces shorter than minChars into the previous piece, or
// the next one when there is no previous. A single short piece survives
// as-is so short articles still produce one chunk.
func (c *Chunker) mergeShort(pieces []string) []string {
	if len(pieces) <= 1 {
		return pieces
	}

	var merged []string
	for _, piece := range pieces {
		if len(piece) < c.minChars && len(merged) > 0 {
			merged[len(merged)-1] += piece
			continue
		}
		merged = append(merged, piece)
	}

	// A short first piece has nothing before it; fold it forward.
	if len(merged) > 1 && len(merged[0]) < c.minChars {
		merged[1] = merged[0] + merged[1]
		merged = merged[1:]
	}

	return merged
}
