package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemabuilder/internal/migration"
)

// MarkdownFormatter writes statement plans as markdown with fenced SQL blocks
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every result under its own heading
func (f *MarkdownFormatter) Format(results []migration.Result) error {
	_, _ = fmt.Fprintln(f.writer, "# Migration Plan")
	_, _ = fmt.Fprintln(f.writer)

	for _, r := range results {
		if err := f.FormatResult(r); err != nil {
			return err
		}
	}
	return nil
}

// FormatResult formats a single result (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatResult(r migration.Result) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", r.Table)
	_, _ = fmt.Fprintf(f.writer, "Action: `%s`\n\n", r.Action)

	if len(r.Statements) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_No statements._")
		_, _ = fmt.Fprintln(f.writer)
		return nil
	}

	_, _ = fmt.Fprintln(f.writer, "```sql")
	for _, stmt := range r.Statements {
		if _, err := fmt.Fprintf(f.writer, "%s;\n", stmt); err != nil {
			return fmt.Errorf("failed to write statement for %s: %w", r.Table, err)
		}
	}
	_, _ = fmt.Fprintln(f.writer, "```")
	_, _ = fmt.Fprintln(f.writer)
	return nil
}
