package grammar

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

var sqliteTypes = map[schema.ColumnType]string{
	schema.TypeIncrements:    "INTEGER",
	schema.TypeBigIncrements: "INTEGER",
	schema.TypeString:        "VARCHAR",
	schema.TypeChar:          "CHAR",
	schema.TypeText:          "TEXT",
	schema.TypeLongText:      "TEXT",
	schema.TypeInteger:       "INTEGER",
	schema.TypeBigInteger:    "BIGINT",
	schema.TypeSmallInteger:  "SMALLINT",
	schema.TypeTinyInteger:   "TINYINT",
	schema.TypeBoolean:       "BOOLEAN",
	schema.TypeDecimal:       "DECIMAL",
	schema.TypeDouble:        "DOUBLE",
	schema.TypeFloat:         "FLOAT",
	schema.TypeDate:          "DATE",
	schema.TypeDateTime:      "DATETIME",
	schema.TypeTimestamp:     "TIMESTAMP",
	schema.TypeTime:          "TIME",
	schema.TypeJSON:          "JSON",
	schema.TypeBinary:        "BLOB",
	schema.TypeUUID:          "CHAR",
	schema.TypeEnum:          "VARCHAR",
}

var sqliteSized = map[schema.ColumnType]bool{
	schema.TypeString:  true,
	schema.TypeChar:    true,
	schema.TypeDecimal: true,
	schema.TypeUUID:    true,
}

// SQLite renders DDL for SQLite. It has no native column change, drop or
// rename, so those operations force a table rebuild. Table names are
// double-quoted in CREATE TABLE and INSERT, column names are left bare.
type SQLite struct {
	quote func(string) string
}

// NewSQLite creates the SQLite grammar
func NewSQLite() *SQLite {
	return &SQLite{quote: quoteWith(`"`)}
}

func (g *SQLite) Dialect() string { return "sqlite" }

func (g *SQLite) WrapTable(name string) string { return g.quote(name) }

func (g *SQLite) RenderColumn(col schema.Column) string {
	return declare(col.Name, typeName(sqliteTypes, col)+lengthSuffix(sqliteSized, col))
}

func (g *SQLite) defaultValue(v any) string {
	return defaultValue(v, "CURRENT_TIMESTAMP", func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	})
}

func (g *SQLite) columnDefinition(t *schema.Table, col schema.Column) string {
	var sb strings.Builder
	sb.WriteString(g.RenderColumn(col))
	if inlinePrimary(t, col) {
		sb.WriteString(" PRIMARY KEY")
		if col.AutoIncrement {
			sb.WriteString(" AUTOINCREMENT")
		}
	} else if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.HasDefault() {
		sb.WriteString(" DEFAULT " + g.defaultValue(col.Default))
	}
	if col.Type == schema.TypeEnum && len(col.Values) > 0 {
		sb.WriteString(fmt.Sprintf(" CHECK(%s IN (%s))", col.Name, enumValues(col.Values)))
	}
	return sb.String()
}

func (g *SQLite) CompileCreate(t *schema.Table) ([]string, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("sqlite: table %s has no columns", t.Name)
	}
	parts := splitCreate(t)

	defs := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		defs = append(defs, g.columnDefinition(t, col))
	}
	if len(parts.primary) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(parts.primary, ", ")))
	}
	for _, idx := range parts.constraints {
		kind := "UNIQUE"
		if idx.Kind == schema.IndexPrimary {
			kind = "PRIMARY KEY"
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s %s (%s)", idx.Name, kind, strings.Join(idx.Columns, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s",
			fk.Name, fk.Column, g.quote(fk.ReferencesTable), fk.ReferencesColumn, referentialActions(fk)))
	}

	sql := []string{fmt.Sprintf("CREATE TABLE %s (%s)", g.WrapTable(t.Name), strings.Join(defs, ", "))}
	for _, idx := range parts.statements {
		stmt, err := g.CompileAddIndex(t.Name, idx)
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmt)
	}
	return sql, nil
}

// CompileAddColumn renders ALTER TABLE ... ADD COLUMN. SQLite refuses NOT NULL
// columns without a default on existing rows, so nullability is only
// rendered alongside a default.
func (g *SQLite) CompileAddColumn(table string, col schema.Column) (string, error) {
	if col.Primary {
		return "", unsupported(g.Dialect(), "add primary key column", fmt.Sprintf("column %s on table %s", col.Name, table))
	}
	def := declare(col.Name, typeName(sqliteTypes, col))
	if col.HasDefault() {
		def += " DEFAULT " + g.defaultValue(col.Default)
		if !col.Nullable {
			def += " NOT NULL"
		}
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def), nil
}

func (g *SQLite) CompileChangeColumn(table string, col schema.Column) (string, error) {
	return "", unsupported(g.Dialect(), "change column", "requires a table rebuild")
}

func (g *SQLite) CompileRenameColumn(table, from string, col schema.Column) ([]string, error) {
	return nil, unsupported(g.Dialect(), "rename column", "requires a table rebuild")
}

func (g *SQLite) CompileDropColumn(table, name string) (string, error) {
	return "", unsupported(g.Dialect(), "drop column", "requires a table rebuild")
}

func (g *SQLite) CompileAddIndex(table string, idx schema.Index) (string, error) {
	switch idx.Kind {
	case schema.IndexPlain:
		return fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.Name, g.WrapTable(table), strings.Join(idx.Columns, ", ")), nil
	case schema.IndexUnique:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s(%s)", idx.Name, g.WrapTable(table), strings.Join(idx.Columns, ", ")), nil
	default:
		return "", unsupported(g.Dialect(), "add "+string(idx.Kind)+" index", idx.Name)
	}
}

func (g *SQLite) CompileDropIndex(table string, idx schema.Index) (string, error) {
	if idx.Kind == schema.IndexPrimary || idx.Kind == schema.IndexFulltext {
		return "", unsupported(g.Dialect(), "drop "+string(idx.Kind)+" index", idx.Name)
	}
	return "DROP INDEX " + idx.Name, nil
}

func (g *SQLite) CompileAddForeignKey(table string, fk schema.ForeignKey) (string, error) {
	return "", unsupported(g.Dialect(), "add foreign key", "foreign keys can only be declared when the table is created")
}

func (g *SQLite) CompileDropForeignKey(table, name string) (string, error) {
	return "", unsupported(g.Dialect(), "drop foreign key", name)
}

func (g *SQLite) CompileDropTable(table string, ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + g.WrapTable(table)
	}
	return "DROP TABLE " + g.WrapTable(table)
}

func (g *SQLite) CompileRenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.WrapTable(from), g.WrapTable(to))
}

func (g *SQLite) CompileTruncate(table string, foreignKeys bool) []string {
	stmt := "DELETE FROM " + g.WrapTable(table)
	if !foreignKeys {
		return []string{stmt}
	}
	return []string{"PRAGMA foreign_keys = OFF", stmt, "PRAGMA foreign_keys = ON"}
}

func (g *SQLite) SupportsNativeChange() bool { return false }
func (g *SQLite) SupportsNativeDrop() bool   { return false }
func (g *SQLite) SupportsNativeRename() bool { return false }
