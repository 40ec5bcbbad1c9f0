package models

import "time"

// AuditRecord is one entry in the persisted LLM audit trail.
type AuditRecord struct {
	ID        uint64    `badgerhold:"key" json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`      // provider mode ("cloud")
	Operation string    `json:"operation"` // "embed", "chat", "stream"
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	QueryText string    `json:"query_text,omitempty"`
}
