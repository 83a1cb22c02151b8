package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// SQLiteIntrospector reads table snapshots through PRAGMA statements
type SQLiteIntrospector struct {
	client *SQLiteClient
}

// NewSQLiteIntrospector creates a new SQLite introspector
func NewSQLiteIntrospector(client *SQLiteClient) *SQLiteIntrospector {
	return &SQLiteIntrospector{client: client}
}

// LoadTable returns the current shape of a table
func (e *SQLiteIntrospector) LoadTable(ctx context.Context, name string) (*schema.Table, error) {
	return loadTable(ctx, e, name)
}

// HasTable checks if a table exists
func (e *SQLiteIntrospector) HasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := e.client.GetDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	return count > 0, err
}

// HasColumn checks if a table has a column
func (e *SQLiteIntrospector) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return hasColumn(ctx, e, table, column)
}

func (e *SQLiteIntrospector) columns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := schema.ColumnFromNative(name, colType)
		col.Nullable = notNull == 0 && pk == 0
		col.Primary = pk > 0
		if defaultValue.Valid {
			col.Default = schema.Expression(defaultValue.String)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *SQLiteIntrospector) indexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name   string
		unique bool
	}
	var entries []entry
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}

		// Skip auto-generated primary key indexes
		if strings.HasPrefix(name, "sqlite_autoindex") {
			continue
		}
		entries = append(entries, entry{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var indexes []schema.Index
	for _, en := range entries {
		columns, err := e.indexColumns(ctx, en.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}
		kind := schema.IndexPlain
		if en.unique {
			kind = schema.IndexUnique
		}
		indexes = append(indexes, schema.Index{Name: en.name, Kind: kind, Columns: columns})
	}
	return indexes, nil
}

func (e *SQLiteIntrospector) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteSQLite(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}

func (e *SQLiteIntrospector) foreignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fks = append(fks, schema.ForeignKey{
			Name:             tableName + "_" + fromCol + "_foreign",
			Column:           fromCol,
			ReferencesTable:  targetTable,
			ReferencesColumn: toCol.String,
			OnDelete:         noAction(onDelete),
			OnUpdate:         noAction(onUpdate),
		})
	}

	return fks, rows.Err()
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// noAction drops the implicit NO ACTION rule
func noAction(rule string) string {
	if strings.EqualFold(rule, "NO ACTION") {
		return ""
	}
	return strings.ToLower(rule)
}
