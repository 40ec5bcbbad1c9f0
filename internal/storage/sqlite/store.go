package sqlite

import (
	"context"
	"database/sql"

	"github.com/ternarybob/arbor"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same store code serves auto-commit and transactional callers.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// dbStore implements interfaces.Store over a querier.
type dbStore struct {
	q      querier
	logger arbor.ILogger
}

func newStore(q querier, logger arbor.ILogger) *dbStore {
	return &dbStore{q: q, logger: logger}
}
