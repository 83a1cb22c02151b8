package grammar

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

var postgresTypes = map[schema.ColumnType]string{
	schema.TypeIncrements:    "SERIAL",
	schema.TypeBigIncrements: "BIGSERIAL",
	schema.TypeString:        "VARCHAR",
	schema.TypeChar:          "CHAR",
	schema.TypeText:          "TEXT",
	schema.TypeLongText:      "TEXT",
	schema.TypeInteger:       "INTEGER",
	schema.TypeBigInteger:    "BIGINT",
	schema.TypeSmallInteger:  "SMALLINT",
	schema.TypeTinyInteger:   "SMALLINT",
	schema.TypeBoolean:       "BOOLEAN",
	schema.TypeDecimal:       "DECIMAL",
	schema.TypeDouble:        "DOUBLE PRECISION",
	schema.TypeFloat:         "REAL",
	schema.TypeDate:          "DATE",
	schema.TypeDateTime:      "TIMESTAMP",
	schema.TypeTimestamp:     "TIMESTAMP",
	schema.TypeTime:          "TIME",
	schema.TypeJSON:          "JSON",
	schema.TypeBinary:        "BYTEA",
	schema.TypeUUID:          "UUID",
	schema.TypeEnum:          "VARCHAR(255)",
}

var postgresSized = map[schema.ColumnType]bool{
	schema.TypeString:  true,
	schema.TypeChar:    true,
	schema.TypeDecimal: true,
}

// Postgres renders DDL for PostgreSQL. Every column operation is native and
// every identifier is double-quoted.
type Postgres struct {
	quote func(string) string
}

// NewPostgres creates the PostgreSQL grammar
func NewPostgres() *Postgres {
	return &Postgres{quote: quoteWith(`"`)}
}

func (g *Postgres) Dialect() string { return "postgres" }

func (g *Postgres) WrapTable(name string) string { return g.quote(name) }

func (g *Postgres) RenderColumn(col schema.Column) string {
	return declare(g.quote(col.Name), g.columnType(col))
}

func (g *Postgres) columnType(col schema.Column) string {
	return typeName(postgresTypes, col) + lengthSuffix(postgresSized, col)
}

func (g *Postgres) defaultValue(v any) string {
	return defaultValue(v, "NOW()", func(b bool) string {
		if b {
			return "TRUE"
		}
		return "FALSE"
	})
}

func (g *Postgres) columnDefinition(primary bool, col schema.Column) string {
	var sb strings.Builder
	sb.WriteString(g.RenderColumn(col))
	if primary {
		sb.WriteString(" PRIMARY KEY")
	} else if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.HasDefault() {
		sb.WriteString(" DEFAULT " + g.defaultValue(col.Default))
	}
	if col.Type == schema.TypeEnum && len(col.Values) > 0 {
		sb.WriteString(fmt.Sprintf(" CHECK(%s IN (%s))", g.quote(col.Name), enumValues(col.Values)))
	}
	return sb.String()
}

func (g *Postgres) constraint(idx schema.Index) string {
	kind := "UNIQUE"
	if idx.Kind == schema.IndexPrimary {
		kind = "PRIMARY KEY"
	}
	return fmt.Sprintf("CONSTRAINT %s %s (%s)", g.quote(idx.Name), kind, joinQuoted(g.quote, idx.Columns))
}

func (g *Postgres) foreignKey(fk schema.ForeignKey) string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s",
		g.quote(fk.Name), g.quote(fk.Column), g.quote(fk.ReferencesTable), g.quote(fk.ReferencesColumn), referentialActions(fk))
}

func (g *Postgres) CompileCreate(t *schema.Table) ([]string, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("postgres: table %s has no columns", t.Name)
	}
	parts := splitCreate(t)

	defs := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		defs = append(defs, g.columnDefinition(inlinePrimary(t, col), col))
	}
	if len(parts.primary) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", joinQuoted(g.quote, parts.primary)))
	}
	for _, idx := range parts.constraints {
		defs = append(defs, g.constraint(idx))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, g.foreignKey(fk))
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

func (g *Postgres) CompileAddColumn(table string, col schema.Column) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.WrapTable(table), g.columnDefinition(col.Primary, col)), nil
}

// CompileChangeColumn changes type, nullability and default in one statement.
// The USING cast lets Postgres convert values without an implicit cast.
func (g *Postgres) CompileChangeColumn(table string, col schema.Column) (string, error) {
	name := g.quote(col.Name)
	typ := g.columnType(col)
	clauses := []string{fmt.Sprintf("ALTER COLUMN %s TYPE %s USING %s::%s", name, typ, name, typ)}
	if col.Nullable {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", name))
	} else {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", name))
	}
	if col.HasDefault() {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", name, g.defaultValue(col.Default)))
	}
	return fmt.Sprintf("ALTER TABLE %s %s", g.WrapTable(table), strings.Join(clauses, ", ")), nil
}

func (g *Postgres) CompileRenameColumn(table, from string, col schema.Column) ([]string, error) {
	sql := []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", g.WrapTable(table), g.quote(from), g.quote(col.Name))}
	if col.Type != "" {
		name := g.quote(col.Name)
		typ := g.columnType(col)
		sql = append(sql, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", g.WrapTable(table), name, typ, name, typ))
	}
	return sql, nil
}

func (g *Postgres) CompileDropColumn(table, name string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.WrapTable(table), g.quote(name)), nil
}

func (g *Postgres) CompileAddIndex(table string, idx schema.Index) (string, error) {
	switch idx.Kind {
	case schema.IndexPlain:
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", g.quote(idx.Name), g.WrapTable(table), joinQuoted(g.quote, idx.Columns)), nil
	case schema.IndexUnique, schema.IndexPrimary:
		return fmt.Sprintf("ALTER TABLE %s ADD %s", g.WrapTable(table), g.constraint(idx)), nil
	default:
		return "", unsupported(g.Dialect(), "add "+string(idx.Kind)+" index", idx.Name)
	}
}

func (g *Postgres) CompileDropIndex(table string, idx schema.Index) (string, error) {
	switch idx.Kind {
	case schema.IndexPlain:
		return "DROP INDEX " + g.quote(idx.Name), nil
	case schema.IndexUnique, schema.IndexPrimary:
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.WrapTable(table), g.quote(idx.Name)), nil
	default:
		return "", unsupported(g.Dialect(), "drop "+string(idx.Kind)+" index", idx.Name)
	}
}

func (g *Postgres) CompileAddForeignKey(table string, fk schema.ForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", g.WrapTable(table), g.foreignKey(fk)), nil
}

func (g *Postgres) CompileDropForeignKey(table, name string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.WrapTable(table), g.quote(name)), nil
}

func (g *Postgres) CompileDropTable(table string, ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + g.WrapTable(table)
	}
	return "DROP TABLE " + g.WrapTable(table)
}

func (g *Postgres) CompileRenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.WrapTable(from), g.WrapTable(to))
}

func (g *Postgres) CompileTruncate(table string, foreignKeys bool) []string {
	if foreignKeys {
		return []string{"TRUNCATE TABLE " + g.WrapTable(table) + " CASCADE"}
	}
	return []string{"TRUNCATE TABLE " + g.WrapTable(table)}
}

func (g *Postgres) SupportsNativeChange() bool { return true }
func (g *Postgres) SupportsNativeDrop() bool   { return true }
func (g *Postgres) SupportsNativeRename() bool { return true }
