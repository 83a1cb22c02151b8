// Package grammar renders schema models and blueprint operations into SQL
// for one database family at a time.
package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// Grammar renders columns, tables and column operations for one dialect.
// Dialects without a native primitive report it through the Supports*
// methods and leave the work to table reconstruction.
type Grammar interface {
	// Dialect returns the dialect name, e.g. "sqlite"
	Dialect() string

	// WrapTable quotes a table name the way CREATE TABLE and INSERT reference it
	WrapTable(name string) string

	// RenderColumn renders "<name> <TYPE>[(<length>)]"
	RenderColumn(col schema.Column) string

	CompileCreate(t *schema.Table) ([]string, error)
	CompileAddColumn(table string, col schema.Column) (string, error)
	CompileChangeColumn(table string, col schema.Column) (string, error)
	CompileRenameColumn(table, from string, col schema.Column) ([]string, error)
	CompileDropColumn(table, name string) (string, error)
	CompileAddIndex(table string, idx schema.Index) (string, error)
	CompileDropIndex(table string, idx schema.Index) (string, error)
	CompileAddForeignKey(table string, fk schema.ForeignKey) (string, error)
	CompileDropForeignKey(table, name string) (string, error)
	CompileDropTable(table string, ifExists bool) string
	CompileRenameTable(from, to string) string
	CompileTruncate(table string, foreignKeys bool) []string

	SupportsNativeChange() bool
	SupportsNativeDrop() bool
	SupportsNativeRename() bool
}

// ForDialect returns the grammar registered for a dialect name
func ForDialect(name string) (Grammar, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	case "postgres", "postgresql", "pg":
		return NewPostgres(), nil
	case "mysql", "mariadb":
		return NewMySQL(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

func unsupported(dialect, operation, reason string) error {
	return &schema.UnsupportedOperationError{Dialect: dialect, Operation: operation, Reason: reason}
}

// typeName looks up the dialect type for a column. Native columns render
// their database type verbatim.
func typeName(types map[schema.ColumnType]string, col schema.Column) string {
	if col.Type == schema.TypeNative {
		return col.NativeType
	}
	if t, ok := types[col.Type]; ok {
		return t
	}
	return strings.ToUpper(string(col.Type))
}

// declare joins a column name and its type. SQLite allows columns without a
// declared type, which introspect as an empty native type.
func declare(name, typ string) string {
	if typ == "" {
		return name
	}
	return name + " " + typ
}

// lengthSuffix renders "(length)" or "(length, scale)" for sized types
func lengthSuffix(sized map[schema.ColumnType]bool, col schema.Column) string {
	if !sized[col.Type] || col.Length <= 0 {
		return ""
	}
	if col.Type == schema.TypeDecimal && col.Scale > 0 {
		return fmt.Sprintf("(%d, %d)", col.Length, col.Scale)
	}
	return "(" + strconv.Itoa(col.Length) + ")"
}

// defaultValue renders a column default. now is the dialect's spelling of
// the current time and boolean renders true/false.
func defaultValue(v any, now string, boolean func(bool) string) string {
	switch v := v.(type) {
	case nil:
		return ""
	case schema.Expression:
		return string(v)
	case string:
		switch v {
		case "current":
			return "CURRENT_TIMESTAMP"
		case "now":
			return now
		case "null":
			return "NULL"
		}
		return quoteString(v)
	case bool:
		return boolean(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	default:
		return quoteString(fmt.Sprint(v))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteWith(q string) func(string) string {
	return func(id string) string {
		return q + strings.ReplaceAll(id, q, q+q) + q
	}
}

func enumValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteString(v)
	}
	return strings.Join(quoted, ", ")
}

func joinQuoted(quote func(string) string, names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quote(n)
	}
	return strings.Join(out, ", ")
}

func referentialActions(fk schema.ForeignKey) string {
	var sb strings.Builder
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE " + strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE " + strings.ToUpper(fk.OnUpdate))
	}
	return sb.String()
}

// createParts splits a table's keys into inline constraints and follow-up
// index statements. Single-column primary keys declared on the column are
// rendered inline by the caller.
type createParts struct {
	primary     []string
	constraints []schema.Index
	statements  []schema.Index
}

func splitCreate(t *schema.Table) createParts {
	var parts createParts
	if pk := t.PrimaryKey(); len(pk) > 1 {
		parts.primary = pk
	}
	for _, idx := range t.Indexes {
		switch idx.Kind {
		case schema.IndexUnique, schema.IndexPrimary:
			parts.constraints = append(parts.constraints, idx)
		default:
			parts.statements = append(parts.statements, idx)
		}
	}
	return parts
}

// inlinePrimary reports whether the column carries its own PRIMARY KEY clause
func inlinePrimary(t *schema.Table, col schema.Column) bool {
	return col.Primary && len(t.PrimaryKey()) == 1
}
