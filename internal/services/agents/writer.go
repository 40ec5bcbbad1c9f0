package agents

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// NoResearchSentinel marks an empty evidence bundle handed to the writer;
// the prompt then carries the query alone.
const NoResearchSentinel = "none"

// AnswerWriter streams the final markdown answer.
type AnswerWriter struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewAnswerWriter creates a new writer stage
func NewAnswerWriter(llm interfaces.LLMService, logger arbor.ILogger) *AnswerWriter {
	return &AnswerWriter{llm: llm, logger: logger}
}

// Write streams answer tokens through the sink in emission order and
// returns the complete answer. Stream errors surface to the caller; there
// is no retry.
func (w *AnswerWriter) Write(ctx context.Context, query, research string, sink interfaces.EventSink) (string, error) {
	var prompt string
	if research == NoResearchSentinel || research == "" {
		prompt = fmt.Sprintf("USER_QUERY: %s", query)
	} else {
		prompt = fmt.Sprintf("USER_QUERY: %s\n\nRESEARCH: %s", query, research)
	}

	messages := []interfaces.Message{
		{Role: "system", Content: writerSystemPrompt},
		{Role: "user", Content: prompt},
	}

	answer, err := w.llm.ChatStream(ctx, messages, func(token string) error {
		if sink == nil {
			return nil
		}
		return sink.Send(models.TokenEvent(token))
	})
	if err != nil {
		return "", fmt.Errorf("answer writing failed: %w", err)
	}

	w.logger.Debug().
		Int("answer_length", len(answer)).
		Msg("Answer writing completed")

	return answer, nil
}
