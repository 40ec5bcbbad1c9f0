package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
)

// Critic judges whether an answer satisfies the query. Only the literal
// reply "true" passes; anything else, including hedged or malformed output,
// counts as a fail and sends the pipeline back to research.
type Critic struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewCritic creates a new critic stage
func NewCritic(llm interfaces.LLMService, logger arbor.ILogger) *Critic {
	return &Critic{llm: llm, logger: logger}
}

// Review asks the model to judge the answer against the query.
func (c *Critic) Review(ctx context.Context, query, answer string) (bool, error) {
	prompt := fmt.Sprintf(`Is the following text satisfactory to all the requirements of the assignment and the user's remarks?

USER REQUEST:
%s

TEXT:
%s`, query, answer)

	response, err := c.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: criticSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return false, fmt.Errorf("answer review failed: %w", err)
	}

	verdict := strings.TrimSpace(response)
	passed := verdict == "true"

	c.logger.Debug().
		Str("verdict", verdict).
		Msg("Answer review completed")

	return passed, nil
}
