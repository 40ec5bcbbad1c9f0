package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
)

// NotRelevantSentinel is the researcher's literal reply for queries outside
// the stock/portfolio domain. Compared exactly.
const NotRelevantSentinel = "not relevant"

const (
	toolSearchArticles = "search_articles"
	toolSearchSnippets = "search_snippets"
)

// toolCall is the JSON shape the model emits per protocol turn.
type toolCall struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
	Final string `json:"final"`
}

// Researcher gathers evidence for a query through a bounded tool loop. The
// model plans which searches to run; the loop enforces the call budget and
// duplicate rejection regardless of what the model asks for.
type Researcher struct {
	llm        interfaces.LLMService
	retrieval  interfaces.RetrievalService
	callBudget int
	logger     arbor.ILogger
}

// NewResearcher creates a new researcher. callBudget bounds retrieval calls
// per invocation.
func NewResearcher(llm interfaces.LLMService, retrieval interfaces.RetrievalService, callBudget int, logger arbor.ILogger) *Researcher {
	if callBudget <= 0 {
		callBudget = 3
	}
	return &Researcher{
		llm:        llm,
		retrieval:  retrieval,
		callBudget: callBudget,
		logger:     logger,
	}
}

// Research runs the tool loop and returns the evidence bundle, or the
// "not relevant" sentinel for off-topic queries. A budget violation by the
// model does not fail the stage: the evidence gathered so far is returned.
func (r *Researcher) Research(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	messages := []interfaces.Message{
		{Role: "system", Content: researcherSystemPrompt},
		{Role: "system", Content: fmt.Sprintf("Today's date is %s", time.Now().UTC().Format("2006-01-02"))},
		{Role: "user", Content: query},
	}

	calls := 0
	usedQueries := map[string]map[string]bool{
		toolSearchArticles: {},
		toolSearchSnippets: {},
	}
	var evidence strings.Builder

	// One extra turn beyond the budget lets the model deliver its final
	// answer after the last tool result.
	for turn := 0; turn <= r.callBudget; turn++ {
		response, err := r.llm.Chat(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("research turn failed: %w", err)
		}

		call, err := parseToolCall(response)
		if err != nil {
			// A non-protocol reply is treated as the final research text.
			r.logger.Debug().Str("response", truncate(response, 120)).Msg("Researcher reply is not a tool call, treating as final")
			return strings.TrimSpace(response), nil
		}

		if call.Tool == "" {
			return strings.TrimSpace(call.Final), nil
		}

		if calls >= r.callBudget {
			r.logger.Warn().
				Str("tool", call.Tool).
				Msg("Research call budget exhausted, returning gathered evidence")
			return evidence.String(), nil
		}
		if call.Tool != toolSearchArticles && call.Tool != toolSearchSnippets {
			r.logger.Warn().Str("tool", call.Tool).Msg("Unknown research tool requested, returning gathered evidence")
			return evidence.String(), nil
		}
		if usedQueries[call.Tool][call.Query] {
			r.logger.Warn().
				Str("tool", call.Tool).
				Str("query", call.Query).
				Msg("Duplicate research sub-query rejected, returning gathered evidence")
			return evidence.String(), nil
		}

		usedQueries[call.Tool][call.Query] = true
		calls++

		var result string
		switch call.Tool {
		case toolSearchArticles:
			result, err = r.retrieval.SearchArticles(ctx, call.Query, sink)
		case toolSearchSnippets:
			result, err = r.retrieval.SearchSnippets(ctx, call.Query, sink)
		}
		if err != nil {
			return "", fmt.Errorf("retrieval tool %s failed: %w", call.Tool, err)
		}

		evidence.WriteString(result)

		messages = append(messages,
			interfaces.Message{Role: "assistant", Content: response},
			interfaces.Message{Role: "user", Content: fmt.Sprintf("TOOL_RESULT:\n%s", result)},
		)
	}

	// The model never produced a final turn; the gathered evidence stands.
	return evidence.String(), nil
}

// parseToolCall extracts the protocol JSON object from a model reply.
func parseToolCall(response string) (*toolCall, error) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var call toolCall
	if err := json.Unmarshal([]byte(text[start:end+1]), &call); err != nil {
		return nil, fmt.Errorf("malformed tool call: %w", err)
	}
	if call.Tool == "" && call.Final == "" {
		return nil, fmt.Errorf("tool call carries neither tool nor final")
	}
	return &call, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
