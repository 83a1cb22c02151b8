// Package db connects to live databases: it loads the current shape of a
// table and applies compiled statements.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// ErrTableNotFound is returned when an introspected table does not exist
var ErrTableNotFound = errors.New("table not found")

// Introspector loads table snapshots from a live database
type Introspector interface {
	LoadTable(ctx context.Context, name string) (*schema.Table, error)
	HasTable(ctx context.Context, name string) (bool, error)
	HasColumn(ctx context.Context, table, column string) (bool, error)
}

// tableLoader is the part of introspection that differs per dialect
type tableLoader interface {
	HasTable(ctx context.Context, name string) (bool, error)
	columns(ctx context.Context, table string) ([]schema.Column, error)
	indexes(ctx context.Context, table string) ([]schema.Index, error)
	foreignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}

func loadTable(ctx context.Context, l tableLoader, name string) (*schema.Table, error) {
	exists, err := l.HasTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	table := schema.NewTable(name)

	// Extract columns
	columns, err := l.columns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns

	// Extract indexes
	indexes, err := l.indexes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	// Extract foreign keys
	fks, err := l.foreignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	table.ForeignKeys = fks

	return table, nil
}

func hasColumn(ctx context.Context, l Introspector, table, column string) (bool, error) {
	t, err := l.LoadTable(ctx, table)
	if errors.Is(err, ErrTableNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return t.HasColumn(column), nil
}
