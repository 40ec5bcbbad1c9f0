package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// Services bundles the LLM backends the application uses. Embed always
// points at Gemini; Chat follows the configured provider.
type Services struct {
	// Chat runs completions for agents and the writer.
	Chat interfaces.LLMService

	// Embed generates vectors for ingestion and queries.
	Embed interfaces.LLMService
}

// NewServices creates the LLM services for the configured provider. The
// Gemini service is always constructed because embeddings depend on it;
// when the provider is claude a second service handles chat.
func NewServices(cfg *common.Config, auditStorage interfaces.AuditStorage, logger arbor.ILogger) (*Services, error) {
	var audit AuditLogger = NoopAuditLogger{}
	if cfg.LLM.Audit.Enabled && auditStorage != nil {
		audit = NewBadgerAuditLogger(auditStorage, cfg.LLM.Audit.LogQueries, logger)
	}

	logger.Info().
		Str("provider", string(cfg.LLM.Provider)).
		Msg("Initializing LLM services")

	gemini, err := NewGeminiService(cfg, audit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}

	switch cfg.LLM.Provider {
	case common.LLMProviderGemini, "":
		return &Services{Chat: gemini, Embed: gemini}, nil

	case common.LLMProviderClaude:
		claude, err := NewClaudeService(cfg, audit, logger)
		if err != nil {
			gemini.Close()
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return &Services{Chat: claude, Embed: gemini}, nil

	default:
		gemini.Close()
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}

// Close closes all underlying services.
func (s *Services) Close() error {
	var firstErr error
	if s.Chat != nil && s.Chat != s.Embed {
		if err := s.Chat.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Embed != nil {
		if err := s.Embed.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
