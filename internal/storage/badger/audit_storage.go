package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// AuditStorage persists the LLM audit trail in Badger.
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

// Append stores one audit record. The key is assigned from the store's
// sequence so records order by insertion.
func (a *AuditStorage) Append(record *models.AuditRecord) error {
	if err := a.db.store.Insert(badgerhold.NextSequence(), record); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (a *AuditStorage) Recent(limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var records []models.AuditRecord
	query := badgerhold.Where("ID").Ge(uint64(0)).SortBy("ID").Reverse().Limit(limit)
	if err := a.db.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}

	return records, nil
}

// Close closes the underlying store.
func (a *AuditStorage) Close() error {
	return a.db.Close()
}
