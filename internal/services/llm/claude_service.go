package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// ClaudeService implements the chat half of the LLMService interface using
// the Anthropic API. Embedding requests are rejected; the Gemini service
// always owns embeddings.
type ClaudeService struct {
	config    *common.LLMConfig
	logger    arbor.ILogger
	client    *anthropic.Client
	audit     AuditLogger
	maxTokens int
	timeout   time.Duration
}

// convertMessagesToClaude converts []interfaces.Message to Claude format.
// System messages are extracted for the request's System field.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude chat service instance.
func NewClaudeService(config *common.Config, audit AuditLogger, logger arbor.ILogger) (*ClaudeService, error) {
	apiKey := config.LLM.AnthropicAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set AUSPEX_LLM_ANTHROPIC_API_KEY, ANTHROPIC_API_KEY, or llm.anthropic_api_key in config)")
	}

	model := config.LLM.ChatModelName
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	maxTokens := config.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	timeout, err := time.ParseDuration(config.LLM.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.LLM.Timeout, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	if audit == nil {
		audit = NoopAuditLogger{}
	}

	cfg := config.LLM
	cfg.ChatModelName = model

	service := &ClaudeService{
		config:    &cfg,
		logger:    logger,
		client:    &client,
		audit:     audit,
		maxTokens: maxTokens,
		timeout:   timeout,
	}

	logger.Info().
		Str("chat_model", model).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Embed is not supported; embeddings always come from the Gemini service.
func (s *ClaudeService) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("Claude service does not provide embeddings")
}

// Chat generates a completion response based on the conversation history.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	response, err := s.generateCompletion(timeoutCtx, messages)
	s.audit.LogChat(interfaces.LLMModeCloud, err == nil, time.Since(startTime), err, lastUserMessage(messages))
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Chat completion completed")

	return response, nil
}

// ChatStream generates a completion, delivering text fragments through fn
// in emission order, and returns the full concatenated response.
func (s *ClaudeService) ChatStream(ctx context.Context, messages []interfaces.Message, fn interfaces.StreamFunc) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.ChatModelName),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	var full strings.Builder
	var streamErr error

	stream := s.client.Messages.NewStreaming(timeoutCtx, params)
	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text == "" {
					continue
				}
				full.WriteString(deltaVariant.Text)
				if fn != nil {
					if err := fn(deltaVariant.Text); err != nil {
						streamErr = err
					}
				}
			}
		}
		if streamErr != nil {
			break
		}
	}
	if streamErr == nil {
		streamErr = stream.Err()
	}

	s.audit.LogStream(interfaces.LLMModeCloud, streamErr == nil, time.Since(startTime), streamErr, lastUserMessage(messages))

	if streamErr != nil {
		s.logger.Error().Err(streamErr).Msg("Streamed chat completion failed")
		return full.String(), fmt.Errorf("streamed chat completion failed: %w", streamErr)
	}
	if full.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return full.String(), nil
}

// HealthCheck verifies the service can handle requests with a minimal probe.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("anthropic client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	response, err := s.generateCompletion(healthCtx, []interfaces.Message{
		{Role: "user", Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("chat probe failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("chat probe returned empty response")
	}

	s.logger.Debug().Msg("Claude health check passed")
	return nil
}

// GetMode returns the operational mode of the service.
func (s *ClaudeService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeCloud
}

// Close releases resources.
func (s *ClaudeService) Close() error {
	s.logger.Info().Msg("Closing Claude LLM service")
	s.client = nil
	return nil
}

func (s *ClaudeService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.ChatModelName),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}
