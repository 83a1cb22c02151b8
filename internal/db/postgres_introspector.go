package db

import (
	"context"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// PostgresIntrospector reads table snapshots from information_schema and pg_catalog
type PostgresIntrospector struct {
	client *PostgresClient
	schema string
}

// NewPostgresIntrospector creates a new PostgreSQL introspector for one schema
func NewPostgresIntrospector(client *PostgresClient, schemaName string) *PostgresIntrospector {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresIntrospector{client: client, schema: schemaName}
}

// LoadTable returns the current shape of a table
func (e *PostgresIntrospector) LoadTable(ctx context.Context, name string) (*schema.Table, error) {
	return loadTable(ctx, e, name)
}

// HasTable checks if a table exists
func (e *PostgresIntrospector) HasTable(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2 AND table_type = 'BASE TABLE'
		)
	`
	var exists bool
	err := e.client.GetConnection().QueryRow(ctx, query, e.schema, name).Scan(&exists)
	return exists, err
}

// HasColumn checks if a table has a column
func (e *PostgresIntrospector) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return hasColumn(ctx, e, table, column)
}

func (e *PostgresIntrospector) columns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			CASE WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name ELSE c.data_type END,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length::int,
			c.numeric_precision::int,
			c.numeric_scale::int,
			EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) AS is_primary
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, dataType, nullable string
		var defaultVal *string
		var charLength, precision, scale *int32
		var primary bool

		if err := rows.Scan(&name, &dataType, &nullable, &defaultVal, &charLength, &precision, &scale, &primary); err != nil {
			return nil, err
		}

		col := schema.ColumnFromNative(name, dataType)
		col.Nullable = nullable == "YES"
		col.Primary = primary
		switch col.Type {
		case schema.TypeString, schema.TypeChar:
			if charLength != nil {
				col.Length = int(*charLength)
			}
		case schema.TypeDecimal:
			if precision != nil {
				col.Length = int(*precision)
			}
			if scale != nil {
				col.Scale = int(*scale)
			}
		}
		if defaultVal != nil {
			if strings.HasPrefix(*defaultVal, "nextval(") {
				col.AutoIncrement = true
			} else {
				col.Default = schema.Expression(*defaultVal)
			}
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *PostgresIntrospector) indexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.relname AS index_name,
			ix.indisunique AS is_unique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var unique bool
		if err := rows.Scan(&idx.Name, &unique, &idx.Columns); err != nil {
			return nil, err
		}
		idx.Kind = schema.IndexPlain
		if unique {
			idx.Kind = schema.IndexUnique
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func (e *PostgresIntrospector) foreignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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
