package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// scriptedLLM implements interfaces.LLMService, replying from a fixed script.
type scriptedLLM struct {
	replies []string
	turn    int
	err     error

	lastMessages []interfaces.Message
}

func (s *scriptedLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not supported")
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	s.lastMessages = messages
	if s.err != nil {
		return "", s.err
	}
	if s.turn >= len(s.replies) {
		return "", errors.New("script exhausted")
	}
	reply := s.replies[s.turn]
	s.turn++
	return reply, nil
}

func (s *scriptedLLM) ChatStream(ctx context.Context, messages []interfaces.Message, fn interfaces.StreamFunc) (string, error) {
	s.lastMessages = messages
	if s.err != nil {
		return "", s.err
	}
	if s.turn >= len(s.replies) {
		return "", errors.New("script exhausted")
	}
	reply := s.replies[s.turn]
	s.turn++
	// Deliver in two pieces to exercise token ordering.
	half := len(reply) / 2
	for _, token := range []string{reply[:half], reply[half:]} {
		if token == "" {
			continue
		}
		if err := fn(token); err != nil {
			return "", err
		}
	}
	return reply, nil
}

func (s *scriptedLLM) HealthCheck(ctx context.Context) error { return nil }

func (s *scriptedLLM) GetMode() interfaces.LLMMode { return interfaces.LLMModeCloud }

func (s *scriptedLLM) Close() error { return nil }

// recordingRetrieval implements interfaces.RetrievalService
type recordingRetrieval struct {
	articleCalls []string
	snippetCalls []string
	err          error
}

func (r *recordingRetrieval) SearchArticles(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	r.articleCalls = append(r.articleCalls, query)
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("articles(%s)\n", query), nil
}

func (r *recordingRetrieval) SearchSnippets(ctx context.Context, query string, sink interfaces.EventSink) (string, error) {
	r.snippetCalls = append(r.snippetCalls, query)
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("snippets(%s)\n", query), nil
}

func TestExtractTickersParsesSymbols(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`["AAPL", "msft"]`}}
	extractor := NewExtractor(llm, common.GetLogger())

	symbols, err := extractor.ExtractTickers(context.Background(), "compare apple and microsoft")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestExtractTickersToleratesCodeFences(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"```json\n[\"NVDA\"]\n```"}}
	extractor := NewExtractor(llm, common.GetLogger())

	symbols, err := extractor.ExtractTickers(context.Background(), "nvidia outlook")
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, symbols)
}

func TestExtractTickersUnparsableYieldsEmpty(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"I could not find any tickers in that."}}
	extractor := NewExtractor(llm, common.GetLogger())

	symbols, err := extractor.ExtractTickers(context.Background(), "what is the weather")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestExtractTickersDropsInvalidEntries(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`["AAPL", "NOT A TICKER", ""]`}}
	extractor := NewExtractor(llm, common.GetLogger())

	symbols, err := extractor.ExtractTickers(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}

func TestResearchRunsToolsThenFinal(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_articles", "query": "acme earnings"}`,
		`{"tool": "search_snippets", "query": "acme guidance"}`,
		`{"final": "articles(acme earnings)\nsnippets(acme guidance)\n"}`,
	}}
	retrieval := &recordingRetrieval{}
	r := NewResearcher(llm, retrieval, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "how is acme doing", nil)
	require.NoError(t, err)
	assert.Equal(t, "articles(acme earnings)\nsnippets(acme guidance)\n", result)
	assert.Equal(t, []string{"acme earnings"}, retrieval.articleCalls)
	assert.Equal(t, []string{"acme guidance"}, retrieval.snippetCalls)
}

func TestResearchNotRelevantSentinelPassesThrough(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`{"final": "not relevant"}`}}
	r := NewResearcher(llm, &recordingRetrieval{}, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "best pasta recipe", nil)
	require.NoError(t, err)
	assert.Equal(t, NotRelevantSentinel, result)
}

func TestResearchBudgetViolationReturnsEvidence(t *testing.T) {
	// Four distinct tool calls against a budget of three: the fourth is
	// refused and the evidence gathered so far comes back, not an error.
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_articles", "query": "q1"}`,
		`{"tool": "search_articles", "query": "q2"}`,
		`{"tool": "search_articles", "query": "q3"}`,
		`{"tool": "search_articles", "query": "q4"}`,
	}}
	retrieval := &recordingRetrieval{}
	r := NewResearcher(llm, retrieval, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "deep dive", nil)
	require.NoError(t, err)
	assert.Equal(t, "articles(q1)\narticles(q2)\narticles(q3)\n", result)
	assert.Len(t, retrieval.articleCalls, 3)
}

func TestResearchDuplicateSubQueryRejected(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_articles", "query": "same"}`,
		`{"tool": "search_articles", "query": "same"}`,
	}}
	retrieval := &recordingRetrieval{}
	r := NewResearcher(llm, retrieval, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "articles(same)\n", result)
	assert.Len(t, retrieval.articleCalls, 1)
}

func TestResearchSameQueryDifferentToolAllowed(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_articles", "query": "acme"}`,
		`{"tool": "search_snippets", "query": "acme"}`,
		`{"final": "done"}`,
	}}
	retrieval := &recordingRetrieval{}
	r := NewResearcher(llm, retrieval, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Len(t, retrieval.articleCalls, 1)
	assert.Len(t, retrieval.snippetCalls, 1)
}

func TestResearchUnknownToolReturnsEvidence(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_articles", "query": "acme"}`,
		`{"tool": "web_search", "query": "acme"}`,
	}}
	r := NewResearcher(llm, &recordingRetrieval{}, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "articles(acme)\n", result)
}

func TestResearchNonProtocolReplyIsFinal(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"  Plain prose answer with no JSON.  "}}
	r := NewResearcher(llm, &recordingRetrieval{}, 3, common.GetLogger())

	result, err := r.Research(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "Plain prose answer with no JSON.", result)
}

func TestResearchToolResultFedBackToModel(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"tool": "search_snippets", "query": "acme"}`,
		`{"final": "summary"}`,
	}}
	r := NewResearcher(llm, &recordingRetrieval{}, 3, common.GetLogger())

	_, err := r.Research(context.Background(), "query", nil)
	require.NoError(t, err)

	last := llm.lastMessages[len(llm.lastMessages)-1]
	assert.Equal(t, "user", last.Role)
	assert.True(t, strings.HasPrefix(last.Content, "TOOL_RESULT:\n"))
	assert.Contains(t, last.Content, "snippets(acme)")
}

func TestWriteWithResearchIncludesEvidence(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Markdown answer."}}
	w := NewAnswerWriter(llm, common.GetLogger())

	var tokens []string
	sink := interfaces.EventSinkFunc(func(event models.Event) error {
		tokens = append(tokens, event.Response)
		return nil
	})

	answer, err := w.Write(context.Background(), "how is acme", "evidence text", sink)
	require.NoError(t, err)
	assert.Equal(t, "Markdown answer.", answer)
	assert.Equal(t, "Markdown answer.", strings.Join(tokens, ""))

	prompt := llm.lastMessages[len(llm.lastMessages)-1].Content
	assert.Equal(t, "USER_QUERY: how is acme\n\nRESEARCH: evidence text", prompt)
}

func TestWriteNoResearchSentinelOmitsEvidence(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"General answer."}}
	w := NewAnswerWriter(llm, common.GetLogger())

	_, err := w.Write(context.Background(), "hello", NoResearchSentinel, nil)
	require.NoError(t, err)

	prompt := llm.lastMessages[len(llm.lastMessages)-1].Content
	assert.Equal(t, "USER_QUERY: hello", prompt)
}

func TestReviewPassesOnlyOnLiteralTrue(t *testing.T) {
	cases := []struct {
		reply  string
		passed bool
	}{
		{"true", true},
		{"  true\n", true},
		{"false", false},
		{"True", false},
		{"true, because the answer is complete", false},
	}

	for _, tc := range cases {
		llm := &scriptedLLM{replies: []string{tc.reply}}
		c := NewCritic(llm, common.GetLogger())

		passed, err := c.Review(context.Background(), "query", "answer")
		require.NoError(t, err)
		assert.Equal(t, tc.passed, passed, "reply %q", tc.reply)
	}
}

func TestReviewErrorPropagates(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("backend down")}
	c := NewCritic(llm, common.GetLogger())

	_, err := c.Review(context.Background(), "query", "answer")
	require.Error(t, err)
}
