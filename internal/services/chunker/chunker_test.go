package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	c := New(DefaultChunkSize, DefaultMinChars)
	assert.Nil(t, c.Chunk(""))
}

func TestChunkShortInputSingleChunk(t *testing.T) {
	c := New(DefaultChunkSize, DefaultMinChars)

	chunks := c.Chunk("Hi.\nBye.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hi.\nBye.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 8, chunks[0].End)
}

func TestChunkSingleShortPieceSurvives(t *testing.T) {
	// Shorter than minChars but there is nothing to merge it into.
	c := New(DefaultChunkSize, DefaultMinChars)

	chunks := c.Chunk("Hi")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hi", chunks[0].Text)
}

func TestChunkSplitsOnParagraphBoundary(t *testing.T) {
	c := New(20, 3)
	text := "First paragraph here.\n\nSecond one follows."

	chunks := c.Chunk(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph here.\n\n", chunks[0].Text)
	assert.Equal(t, "Second one follows.", chunks[1].Text)
}

func TestChunkSplitsOnSentenceBoundary(t *testing.T) {
	c := New(30, 3)
	text := "One sentence. Another one. More text here."

	chunks := c.Chunk(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "One sentence. Another one.", chunks[0].Text)
	assert.Equal(t, " More text here.", chunks[1].Text)
}

func TestChunkFixedSizeFallback(t *testing.T) {
	// No delimiters at all, so splitting degrades to fixed cuts.
	c := New(40, 5)
	text := strings.Repeat("a", 100)

	chunks := c.Chunk(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, 40, len(chunks[0].Text))
	assert.Equal(t, 40, len(chunks[1].Text))
	assert.Equal(t, 20, len(chunks[2].Text))
}

func TestChunkShortFirstPieceFoldsForward(t *testing.T) {
	c := New(10, 5)

	chunks := c.Chunk("ab\ncdefghijklmnop")
	require.Len(t, chunks, 1)
	assert.Equal(t, "ab\ncdefghijklmnop", chunks[0].Text)
}

func TestChunkReconstructsInputExactly(t *testing.T) {
	c := New(50, 10)
	text := "Shares of Acme Corp rose 4% on Tuesday.\n\n" +
		"The company beat earnings expectations; analysts raised targets. " +
		"Management cited strong demand.\nGuidance for the full year was " +
		"lifted, and the dividend was left unchanged. Investors cheered."

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	prevEnd := 0
	for _, chunk := range chunks {
		assert.Equal(t, prevEnd, chunk.Start, "chunks must be contiguous")
		assert.Equal(t, chunk.Text, text[chunk.Start:chunk.End], "offsets must index the input")
		rebuilt.WriteString(chunk.Text)
		prevEnd = chunk.End
	}
	assert.Equal(t, text, rebuilt.String())
	assert.Equal(t, len(text), prevEnd)
}

func TestChunkOffsetsWithRepeatedContent(t *testing.T) {
	// Identical pieces must still get distinct offsets.
	c := New(12, 3)
	text := strings.Repeat("same text.\n", 4)

	chunks := c.Chunk(text)
	require.True(t, len(chunks) > 1)

	seen := make(map[int]bool)
	for _, chunk := range chunks {
		assert.False(t, seen[chunk.Start], "duplicate start offset")
		seen[chunk.Start] = true
		assert.Equal(t, chunk.Text, text[chunk.Start:chunk.End])
	}
}

func TestNewDefaultsOnNonPositiveArgs(t *testing.T) {
	c := New(0, -1)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultMinChars, c.minChars)
}
