package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Execer runs one statement against a live connection. PostgresClient,
// SQLiteClient and MySQLClient implement it.
type Execer interface {
	Exec(ctx context.Context, statement string) error
}

// StatementError reports the statement that failed while applying a plan.
// Statements before Index were applied; the schema may be partially migrated.
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d failed: %s: %v", e.Index+1, e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Apply runs statements in order and stops at the first failure. Nothing is
// retried.
func Apply(ctx context.Context, e Execer, statements []string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return &StatementError{Index: i, Statement: stmt, Err: err}
		}
		if err := e.Exec(ctx, stmt); err != nil {
			logger.Error("statement failed",
				zap.Int("index", i),
				zap.String("statement", stmt),
				zap.Error(err))
			return &StatementError{Index: i, Statement: stmt, Err: err}
		}
		logger.Info("statement applied", zap.Int("index", i), zap.String("statement", stmt))
	}
	return nil
}
