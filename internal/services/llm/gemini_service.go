package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// GeminiService implements the LLMService interface using the Gemini API.
// It provides both embeddings and chat completions; embeddings always run
// here regardless of the configured chat provider.
type GeminiService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  *genai.Client
	audit   AuditLogger
	timeout time.Duration
}

// convertMessagesToGemini converts []interfaces.Message to Gemini Content
// format, extracting the first system message for SystemInstruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
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

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a new Gemini LLM service instance.
func NewGeminiService(config *common.Config, audit AuditLogger, logger arbor.ILogger) (*GeminiService, error) {
	apiKey := config.LLM.GoogleAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required (set AUSPEX_LLM_GOOGLE_API_KEY, GOOGLE_API_KEY, or llm.google_api_key in config)")
	}

	if config.LLM.EmbedDimension != config.Storage.SQLite.EmbeddingDimension {
		return nil, fmt.Errorf("LLM.EmbedDimension (%d) must match SQLite.EmbeddingDimension (%d)",
			config.LLM.EmbedDimension, config.Storage.SQLite.EmbeddingDimension)
	}

	// Work on a copy so another provider's chat model name never leaks in.
	cfg := config.LLM
	if cfg.EmbedModelName == "" {
		cfg.EmbedModelName = "gemini-embedding-001"
	}
	if cfg.ChatModelName == "" || cfg.Provider != common.LLMProviderGemini {
		cfg.ChatModelName = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", cfg.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	if audit == nil {
		audit = NoopAuditLogger{}
	}

	service := &GeminiService{
		config:  &cfg,
		logger:  logger,
		client:  client,
		audit:   audit,
		timeout: timeout,
	}

	logger.Info().
		Str("embed_model", cfg.EmbedModelName).
		Str("chat_model", cfg.ChatModelName).
		Int("embed_dimension", cfg.EmbedDimension).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// Embed generates an embedding vector for the given text using the
// configured embedding model and output dimensionality.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	embedding, err := s.generateEmbedding(timeoutCtx, text)
	s.audit.LogEmbed(interfaces.LLMModeCloud, err == nil, time.Since(startTime), err, text)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("text_length", len(text)).
			Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	s.logger.Debug().
		Int("text_length", len(text)).
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(startTime)).
		Msg("Embedding generation completed")

	return embedding, nil
}

// Chat generates a completion response based on the conversation history.
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
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
func (s *GeminiService) ChatStream(ctx context.Context, messages []interfaces.Message, fn interfaces.StreamFunc) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	var full strings.Builder
	var streamErr error

	for resp, iterErr := range s.client.Models.GenerateContentStream(timeoutCtx, s.config.ChatModelName, geminiContents, config) {
		if iterErr != nil {
			streamErr = iterErr
			break
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text == "" {
					continue
				}
				full.WriteString(part.Text)
				if fn != nil {
					if err := fn(part.Text); err != nil {
						streamErr = err
						break
					}
				}
			}
			if streamErr != nil {
				break
			}
		}
		if streamErr != nil {
			break
		}
	}

	s.audit.LogStream(interfaces.LLMModeCloud, streamErr == nil, time.Since(startTime), streamErr, lastUserMessage(messages))

	if streamErr != nil {
		s.logger.Error().Err(streamErr).Msg("Streamed chat completion failed")
		return full.String(), fmt.Errorf("streamed chat completion failed: %w", streamErr)
	}
	if full.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return full.String(), nil
}

// HealthCheck verifies the service can handle requests with a lightweight
// embedding probe.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	embedding, err := s.generateEmbedding(healthCtx, "health check probe")
	if err != nil {
		return fmt.Errorf("embedding probe failed: %w", err)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding probe returned empty vector")
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Msg("Gemini health check passed")

	return nil
}

// GetMode returns the operational mode of the service.
func (s *GeminiService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeCloud
}

// Close releases resources. The genai client needs no explicit cleanup
// beyond dropping the reference.
func (s *GeminiService) Close() error {
	s.logger.Info().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}

func (s *GeminiService) generateEmbedding(ctx context.Context, text string) ([]float32, error) {
	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := s.client.Models.EmbedContent(ctx, s.config.EmbedModelName,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
	if err != nil {
		return nil, err
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	if len(embedding) != s.config.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			s.config.EmbedDimension, len(embedding))
	}

	return embedding, nil
}

func (s *GeminiService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.ChatModelName, geminiContents, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	// Iterate candidates until non-empty text is found.
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response.String(), nil
}

// lastUserMessage returns the most recent user message, used as the audit
// query text.
func lastUserMessage(messages []interfaces.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
