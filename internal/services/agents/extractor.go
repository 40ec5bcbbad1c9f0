// Package agents implements the reasoning stages of the chat pipeline:
// ticker extraction, research, answer writing, and answer review. Each stage
// treats the LLM as a black box with a literal string contract.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// Extractor identifies ticker symbols in a query via the chat model.
type Extractor struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewExtractor creates a new ticker extractor
func NewExtractor(llm interfaces.LLMService, logger arbor.ILogger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// ExtractTickers returns the normalized symbols the query concerns. Model
// output that fails to parse yields an empty result rather than an error so
// off-topic queries flow through the pipeline unimpeded.
func (e *Extractor) ExtractTickers(ctx context.Context, query string) ([]string, error) {
	response, err := e.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: extractorSystemPrompt},
		{Role: "user", Content: query},
	})
	if err != nil {
		return nil, fmt.Errorf("ticker extraction failed: %w", err)
	}

	// Normalization drops the noise the model occasionally invents.
	valid := common.NormalizeSymbols(parseSymbolArray(response))

	e.logger.Debug().
		Str("query", query).
		Strs("symbols", valid).
		Msg("Ticker extraction completed")

	return valid, nil
}

// parseSymbolArray reads a JSON string array out of a model reply, tolerating
// surrounding prose and code fences.
func parseSymbolArray(response string) []string {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil
	}

	var symbols []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &symbols); err != nil {
		return nil
	}
	return symbols
}
