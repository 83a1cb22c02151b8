package grammar

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

var mysqlTypes = map[schema.ColumnType]string{
	schema.TypeIncrements:    "INT",
	schema.TypeBigIncrements: "BIGINT",
	schema.TypeString:        "VARCHAR",
	schema.TypeChar:          "CHAR",
	schema.TypeText:          "TEXT",
	schema.TypeLongText:      "LONGTEXT",
	schema.TypeInteger:       "INT",
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
	schema.TypeBinary:        "LONGBLOB",
	schema.TypeUUID:          "CHAR",
	schema.TypeEnum:          "ENUM",
}

var mysqlSized = map[schema.ColumnType]bool{
	schema.TypeString:  true,
	schema.TypeChar:    true,
	schema.TypeDecimal: true,
	schema.TypeUUID:    true,
}

// MySQL renders DDL for MySQL and MariaDB with backtick-quoted identifiers
type MySQL struct {
	quote func(string) string
}

// NewMySQL creates the MySQL grammar
func NewMySQL() *MySQL {
	return &MySQL{quote: quoteWith("`")}
}

func (g *MySQL) Dialect() string { return "mysql" }

func (g *MySQL) WrapTable(name string) string { return g.quote(name) }

func (g *MySQL) RenderColumn(col schema.Column) string {
	var sb strings.Builder
	sb.WriteString(declare(g.quote(col.Name), typeName(mysqlTypes, col)+lengthSuffix(mysqlSized, col)))
	if col.Type == schema.TypeEnum {
		sb.WriteString("(" + enumValues(col.Values) + ")")
	}
	if col.Unsigned || col.Type == schema.TypeIncrements || col.Type == schema.TypeBigIncrements {
		sb.WriteString(" UNSIGNED")
	}
	return sb.String()
}

func (g *MySQL) defaultValue(v any) string {
	return defaultValue(v, "NOW()", func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	})
}

func (g *MySQL) columnDefinition(primary bool, col schema.Column) string {
	var sb strings.Builder
	sb.WriteString(g.RenderColumn(col))
	if col.AutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if primary {
		sb.WriteString(" PRIMARY KEY")
	} else if col.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if col.HasDefault() {
		sb.WriteString(" DEFAULT " + g.defaultValue(col.Default))
	}
	return sb.String()
}

func (g *MySQL) foreignKey(fk schema.ForeignKey) string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s",
		g.quote(fk.Name), g.quote(fk.Column), g.quote(fk.ReferencesTable), g.quote(fk.ReferencesColumn), referentialActions(fk))
}

func (g *MySQL) CompileCreate(t *schema.Table) ([]string, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("mysql: table %s has no columns", t.Name)
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
		if idx.Kind == schema.IndexPrimary {
			defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", joinQuoted(g.quote, idx.Columns)))
			continue
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", g.quote(idx.Name), joinQuoted(g.quote, idx.Columns)))
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

func (g *MySQL) CompileAddColumn(table string, col schema.Column) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.WrapTable(table), g.columnDefinition(col.Primary, col)), nil
}

func (g *MySQL) CompileChangeColumn(table string, col schema.Column) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s MODIFY %s", g.WrapTable(table), g.columnDefinition(false, col)), nil
}

// CompileRenameColumn uses CHANGE when a new type is given, RENAME COLUMN otherwise
func (g *MySQL) CompileRenameColumn(table, from string, col schema.Column) ([]string, error) {
	if col.Type == "" {
		return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", g.WrapTable(table), g.quote(from), g.quote(col.Name))}, nil
	}
	return []string{fmt.Sprintf("ALTER TABLE %s CHANGE %s %s", g.WrapTable(table), g.quote(from), g.columnDefinition(false, col))}, nil
}

func (g *MySQL) CompileDropColumn(table, name string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.WrapTable(table), g.quote(name)), nil
}

func (g *MySQL) CompileAddIndex(table string, idx schema.Index) (string, error) {
	cols := joinQuoted(g.quote, idx.Columns)
	switch idx.Kind {
	case schema.IndexPlain:
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", g.quote(idx.Name), g.WrapTable(table), cols), nil
	case schema.IndexUnique:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", g.quote(idx.Name), g.WrapTable(table), cols), nil
	case schema.IndexFulltext:
		return fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s (%s)", g.quote(idx.Name), g.WrapTable(table), cols), nil
	case schema.IndexPrimary:
		return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", g.WrapTable(table), cols), nil
	default:
		return "", unsupported(g.Dialect(), "add "+string(idx.Kind)+" index", idx.Name)
	}
}

func (g *MySQL) CompileDropIndex(table string, idx schema.Index) (string, error) {
	if idx.Kind == schema.IndexPrimary {
		return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", g.WrapTable(table)), nil
	}
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", g.WrapTable(table), g.quote(idx.Name)), nil
}

func (g *MySQL) CompileAddForeignKey(table string, fk schema.ForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", g.WrapTable(table), g.foreignKey(fk)), nil
}

func (g *MySQL) CompileDropForeignKey(table, name string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", g.WrapTable(table), g.quote(name)), nil
}

func (g *MySQL) CompileDropTable(table string, ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + g.WrapTable(table)
	}
	return "DROP TABLE " + g.WrapTable(table)
}

func (g *MySQL) CompileRenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.WrapTable(from), g.WrapTable(to))
}

func (g *MySQL) CompileTruncate(table string, foreignKeys bool) []string {
	stmt := "TRUNCATE TABLE " + g.WrapTable(table)
	if !foreignKeys {
		return []string{stmt}
	}
	return []string{"SET FOREIGN_KEY_CHECKS=0", stmt, "SET FOREIGN_KEY_CHECKS=1"}
}

func (g *MySQL) SupportsNativeChange() bool { return true }
func (g *MySQL) SupportsNativeDrop() bool   { return true }
func (g *MySQL) SupportsNativeRename() bool { return true }
