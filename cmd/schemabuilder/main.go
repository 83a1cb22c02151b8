package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	schemabuilder "github.com/tordrt/schemabuilder"
	"github.com/tordrt/schemabuilder/internal/formatter"
	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/migration"
)

var (
	dbURL      string
	mysqlURL   string
	sqlitePath string
	outputFile string
	outputDir  string
	tables     string
	schemaName string
	format     string
	dialect    string
	dryRun     bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "schemabuilder",
	Short:        "Compile declarative table migrations into SQL",
	Long:         `schemabuilder compiles YAML table migrations into DDL for SQLite, PostgreSQL, or MySQL, and optionally applies them to a live database.`,
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Print the SQL a migration file compiles to without touching a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var applyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Apply a migration file to a live database",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the current shape of tables in a live database",
	RunE:  runDescribe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every compiled statement")

	for _, cmd := range []*cobra.Command{applyCmd, describeCmd} {
		cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
		cmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
		cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
		cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, URL database for MySQL)")
	}

	for _, cmd := range []*cobra.Command{renderCmd, applyCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
		cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory, one file per migration")
		cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown (default: text)")
	}

	renderCmd.Flags().StringVar(&dialect, "dialect", "", "Target dialect: sqlite, postgres or mysql (default: the file's dialect)")
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compile against the live schema but do not execute")
	describeCmd.Flags().StringVarP(&tables, "tables", "t", "", "Tables to describe (comma-separated)")
	_ = describeCmd.MarkFlagRequired("tables")

	rootCmd.AddCommand(renderCmd, applyCmd, describeCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := migration.LoadFile(args[0])
	if err != nil {
		return err
	}

	name := dialect
	if name == "" {
		name = file.Dialect
	}
	if name == "" {
		return fmt.Errorf("no dialect given: set --dialect or the file's dialect field")
	}
	g, err := grammar.ForDialect(name)
	if err != nil {
		return err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	s := schemabuilder.New(g, schemabuilder.WithDryRun(), schemabuilder.WithLogger(logger))
	results, err := migration.Apply(ctx, s, file)
	if err != nil {
		return err
	}
	return writeResults(results)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := migration.LoadFile(args[0])
	if err != nil {
		return err
	}

	url, err := databaseURL()
	if err != nil {
		return err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := schemabuilder.Connect(ctx, url, schemaName)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close connection", zap.Error(err))
		}
	}()

	if file.Dialect != "" {
		g, err := grammar.ForDialect(file.Dialect)
		if err != nil {
			return err
		}
		if g.Dialect() != conn.Grammar.Dialect() {
			return fmt.Errorf("migration file targets %s but the database is %s", g.Dialect(), conn.Grammar.Dialect())
		}
	}

	opts := append(conn.Options(), schemabuilder.WithLogger(logger))
	if dryRun {
		opts = append(opts, schemabuilder.WithDryRun())
	}
	s := schemabuilder.New(conn.Grammar, opts...)

	results, err := migration.Apply(ctx, s, file)
	if werr := writeResults(results); werr != nil && err == nil {
		err = werr
	}
	return err
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	url, err := databaseURL()
	if err != nil {
		return err
	}

	conn, err := schemabuilder.Connect(ctx, url, schemaName)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close connection: %v\n", err)
		}
	}()

	out := formatter.NewTextFormatter(cmd.OutOrStdout())
	for i, name := range parseTableList(tables) {
		if i > 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
		}
		table, err := conn.Introspector.LoadTable(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load table %s: %w", name, err)
		}
		if err := out.FormatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// databaseURL turns the connection flags into a single database URL
func databaseURL() (string, error) {
	dbCount := 0
	for _, v := range []string{dbURL, mysqlURL, sqlitePath} {
		if v != "" {
			dbCount++
		}
	}
	if dbCount == 0 {
		return "", fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified")
	}
	if dbCount > 1 {
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case sqlitePath != "":
		return "sqlite://" + sqlitePath, nil
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL, nil
		}
		return "mysql://" + mysqlURL, nil
	default:
		return dbURL, nil
	}
}

// parseTableList splits a comma-separated flag value, dropping blanks
func parseTableList(value string) []string {
	var list []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

func writeResults(results []migration.Result) error {
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	if outputDir != "" {
		if err := formatter.NewMultiFileFormatter(outputDir, format).Format(results); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	if err := formatResults(writer, format, results); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func formatResults(w io.Writer, format string, results []migration.Result) error {
	switch format {
	case "text":
		return formatter.NewTextFormatter(w).Format(results)
	case "markdown":
		return formatter.NewMarkdownFormatter(w).Format(results)
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
