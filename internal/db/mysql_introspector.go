package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// MySQLIntrospector reads table snapshots from information_schema
type MySQLIntrospector struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLIntrospector creates a new MySQL introspector for one database
func NewMySQLIntrospector(client *MySQLClient, schemaName string) *MySQLIntrospector {
	return &MySQLIntrospector{
		client:     client,
		schemaName: schemaName,
	}
}

// LoadTable returns the current shape of a table
func (e *MySQLIntrospector) LoadTable(ctx context.Context, name string) (*schema.Table, error) {
	return loadTable(ctx, e, name)
}

// HasTable checks if a table exists
func (e *MySQLIntrospector) HasTable(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ? AND table_type = 'BASE TABLE'
	`
	var count int
	err := e.client.GetDB().QueryRowContext(ctx, query, e.schemaName, name).Scan(&count)
	return count > 0, err
}

// HasColumn checks if a table has a column
func (e *MySQLIntrospector) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return hasColumn(ctx, e, table, column)
}

func (e *MySQLIntrospector) columns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.column_key = 'PRI' AS is_primary,
			c.extra
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, columnType, nullable, extra string
		var defaultVal sql.NullString
		var primary bool

		if err := rows.Scan(&name, &columnType, &nullable, &defaultVal, &primary, &extra); err != nil {
			return nil, err
		}

		col := schema.ColumnFromNative(name, columnType)
		col.Nullable = nullable == "YES"
		col.Primary = primary
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		if defaultVal.Valid {
			col.Default = schema.Expression(defaultVal.String)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *MySQLIntrospector) indexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique = 0 AS is_unique,
			s.index_type,
			GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index) AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name != 'PRIMARY'
		GROUP BY s.index_name, s.non_unique, s.index_type
		ORDER BY s.index_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var isUnique int
		var indexType, columnNames string

		if err := rows.Scan(&idx.Name, &isUnique, &indexType, &columnNames); err != nil {
			return nil, err
		}

		switch {
		case indexType == "FULLTEXT":
			idx.Kind = schema.IndexFulltext
		case isUnique == 1:
			idx.Kind = schema.IndexUnique
		default:
			idx.Kind = schema.IndexPlain
		}
		idx.Columns = strings.Split(columnNames, ",")

		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func (e *MySQLIntrospector) foreignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.table_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		var onDelete, onUpdate string
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencesTable, &fk.ReferencesColumn, &onDelete, &onUpdate); err != nil {
			return nil, err
		}
		fk.OnDelete = noAction(onDelete)
		fk.OnUpdate = noAction(onUpdate)
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}
