package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tordrt/schemabuilder/internal/migration"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes one file per migration into a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the overview and every migration file
func (f *MultiFileFormatter) Format(results []migration.Result) error {
	if f.OutputFormat != formatMarkdown && f.OutputFormat != formatText {
		return fmt.Errorf("unsupported format %q", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(results); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i, r := range results {
		if err := f.writeResultFile(i, r); err != nil {
			return fmt.Errorf("failed to write migration file for %s: %w", r.Table, err)
		}
	}
	return nil
}

// FileName returns the file a result is written to, numbered in apply order
func (f *MultiFileFormatter) FileName(i int, r migration.Result) string {
	return fmt.Sprintf("%03d_%s_%s%s", i+1, r.Action, r.Table, f.getFileExtension())
}

func (f *MultiFileFormatter) writeOverview(results []migration.Result) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(file, "# Migration Overview\n\n")
		for i, r := range results {
			_, _ = fmt.Fprintf(file, "- **%s** `%s` (%d statements): `%s`\n", r.Table, r.Action, len(r.Statements), f.FileName(i, r))
		}
		return nil
	}

	_, _ = fmt.Fprintf(file, "MIGRATION OVERVIEW\n\n")
	for i, r := range results {
		_, _ = fmt.Fprintf(file, "%s %s (%d statements): %s\n", r.Action, r.Table, len(r.Statements), f.FileName(i, r))
	}
	return nil
}

func (f *MultiFileFormatter) writeResultFile(i int, r migration.Result) error {
	file, err := os.Create(filepath.Join(f.OutputDir, f.FileName(i, r)))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(file).FormatResult(r)
	}
	return NewTextFormatter(file).formatResult(r)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".sql"
}
