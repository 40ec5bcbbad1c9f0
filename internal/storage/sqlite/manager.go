package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// Manager implements the relational half of interfaces.StorageManager.
type Manager struct {
	db     *SQLiteDB
	store  *dbStore
	audit  interfaces.AuditStorage
	logger arbor.ILogger
}

// NewManager creates a new SQLite storage manager. The audit store is
// injected because it lives in a separate backend.
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig, audit interfaces.AuditStorage) (*Manager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:     db,
		store:  newStore(db.DB(), logger),
		audit:  audit,
		logger: logger,
	}, nil
}

// Store returns the auto-commit store.
func (m *Manager) Store() interfaces.Store {
	return m.store
}

// WithTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back on error or panic.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, store interfaces.Store) error) error {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	done := false
	defer func() {
		if !done {
			tx.Rollback()
		}
	}()

	if err := fn(ctx, newStore(tx, m.logger)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	done = true

	return nil
}

// AuditStorage returns the audit-trail store.
func (m *Manager) AuditStorage() interfaces.AuditStorage {
	return m.audit
}

// DB returns the underlying SQLite connection, for health checks.
func (m *Manager) DB() *SQLiteDB {
	return m.db
}

// Close closes the relational store and the audit store.
func (m *Manager) Close() error {
	var firstErr error
	if m.audit != nil {
		if err := m.audit.Close(); err != nil {
			firstErr = err
		}
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
