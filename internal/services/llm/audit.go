package llm

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// AuditLogger records LLM operations for compliance and debugging.
type AuditLogger interface {
	LogEmbed(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string)
	LogChat(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string)
	LogStream(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string)
}

// BadgerAuditLogger implements AuditLogger on the badger audit store.
type BadgerAuditLogger struct {
	storage    interfaces.AuditStorage
	logQueries bool
	logger     arbor.ILogger
}

// NewBadgerAuditLogger creates a new audit logger. When logQueries is false
// query text is omitted from the stored records.
func NewBadgerAuditLogger(storage interfaces.AuditStorage, logQueries bool, logger arbor.ILogger) *BadgerAuditLogger {
	return &BadgerAuditLogger{
		storage:    storage,
		logQueries: logQueries,
		logger:     logger,
	}
}

// LogEmbed records an embedding operation
func (l *BadgerAuditLogger) LogEmbed(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string) {
	l.logOperation("embed", mode, success, duration, err, queryText)
}

// LogChat records a chat completion
func (l *BadgerAuditLogger) LogChat(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string) {
	l.logOperation("chat", mode, success, duration, err, queryText)
}

// LogStream records a streamed completion
func (l *BadgerAuditLogger) LogStream(mode interfaces.LLMMode, success bool, duration time.Duration, err error, queryText string) {
	l.logOperation("stream", mode, success, duration, err, queryText)
}

func (l *BadgerAuditLogger) logOperation(operation string, mode interfaces.LLMMode, success bool, duration time.Duration, opErr error, queryText string) {
	var errorMsg string
	if opErr != nil {
		errorMsg = opErr.Error()
	}

	var query string
	if l.logQueries {
		query = queryText
	}

	record := &models.AuditRecord{
		Timestamp: time.Now().UTC(),
		Mode:      string(mode),
		Operation: operation,
		Success:   success,
		Error:     errorMsg,
		Duration:  duration.Milliseconds(),
		QueryText: query,
	}

	// Audit failures must not fail the operation itself.
	if err := l.storage.Append(record); err != nil {
		l.logger.Warn().
			Err(err).
			Str("operation", operation).
			Msg("Failed to append audit record")
	}
}

// NoopAuditLogger discards all audit records. Used when auditing is disabled.
type NoopAuditLogger struct{}

func (NoopAuditLogger) LogEmbed(interfaces.LLMMode, bool, time.Duration, error, string)  {}
func (NoopAuditLogger) LogChat(interfaces.LLMMode, bool, time.Duration, error, string)   {}
func (NoopAuditLogger) LogStream(interfaces.LLMMode, bool, time.Duration, error, string) {}
