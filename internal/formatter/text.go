package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemabuilder/internal/migration"
	"github.com/tordrt/schemabuilder/internal/schema"
)

// TextFormatter writes statement plans as a plain SQL script
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every result as a commented block of statements
func (f *TextFormatter) Format(results []migration.Result) error {
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between migrations
		}
		if err := f.formatResult(r); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatResult(r migration.Result) error {
	if _, err := fmt.Fprintf(f.writer, "-- %s %s\n", r.Action, r.Table); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", r.Table, err)
	}
	for _, stmt := range r.Statements {
		if _, err := fmt.Fprintf(f.writer, "%s;\n", stmt); err != nil {
			return fmt.Errorf("failed to write statement for %s: %w", r.Table, err)
		}
	}
	return nil
}

// FormatTable writes a live table in compact text form
func (f *TextFormatter) FormatTable(table *schema.Table) error {
	pkStr := ""
	if pk := table.PrimaryKey(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", describeColumn(col))
	}

	if len(table.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  FOREIGN KEYS:")
		for _, fk := range table.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "    %s -> %s.%s\n", fk.Column, fk.ReferencesTable, fk.ReferencesColumn)
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			_, _ = fmt.Fprintf(f.writer, "    %s (%s) %s\n", idx.Name, strings.Join(idx.Columns, ", "), strings.ToUpper(string(idx.Kind)))
		}
	}
	return nil
}

func describeColumn(col schema.Column) string {
	typeStr := string(col.Type)
	switch {
	case col.Type == schema.TypeNative:
		typeStr = col.NativeType
	case len(col.Values) > 0:
		typeStr = fmt.Sprintf("%s (%s)", col.Type, strings.Join(col.Values, "|"))
	case col.Type == schema.TypeDecimal && col.Length > 0:
		typeStr = fmt.Sprintf("%s(%d, %d)", col.Type, col.Length, col.Scale)
	case col.Length > 0:
		typeStr = fmt.Sprintf("%s(%d)", col.Type, col.Length)
	}

	parts := []string{col.Name + ":", typeStr}
	if col.Unsigned {
		parts = append(parts, "UNSIGNED")
	}
	if col.AutoIncrement {
		parts = append(parts, "AUTO INCREMENT")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.HasDefault() {
		parts = append(parts, fmt.Sprintf("DEFAULT %v", col.Default))
	}
	return strings.Join(parts, " ")
}
