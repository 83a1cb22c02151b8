package schemabuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/db"
	"github.com/tordrt/schemabuilder/internal/grammar"
)

// Connection bundles a live database with the grammar that targets it
type Connection struct {
	Grammar      grammar.Grammar
	Execer       db.Execer
	Introspector db.Introspector
	close        func() error
}

// Close closes the underlying connection
func (c *Connection) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// Options returns session options that execute on and introspect this connection
func (c *Connection) Options() []Option {
	return []Option{WithExecutor(c.Execer), WithIntrospector(c.Introspector)}
}

// Connect opens databaseURL and selects the matching grammar.
//
// schemaName is the PostgreSQL schema (default "public") or the MySQL
// database (default: taken from the URL). SQLite ignores it.
func Connect(ctx context.Context, databaseURL, schemaName string) (*Connection, error) {
	dbType, connStr, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case "postgres":
		return connectPostgres(ctx, connStr, schemaName)
	case "mysql":
		return connectMySQL(ctx, connStr, schemaName)
	case "sqlite":
		return connectSQLite(ctx, connStr)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// parseDatabaseURL detects database type and returns connection string
func parseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

func connectPostgres(ctx context.Context, connStr, schemaName string) (*Connection, error) {
	client, err := db.NewPostgresClient(ctx, connStr, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &Connection{
		Grammar:      grammar.NewPostgres(),
		Execer:       client,
		Introspector: db.NewPostgresIntrospector(client, schemaName),
		close:        func() error { return client.Close(context.Background()) },
	}, nil
}

func connectMySQL(ctx context.Context, connStr, schemaName string) (*Connection, error) {
	if schemaName == "" {
		name, err := db.ParseDatabaseName(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to determine database name: %w (please pass a schema name)", err)
		}
		schemaName = name
	}

	client, err := db.NewMySQLClient(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	return &Connection{
		Grammar:      grammar.NewMySQL(),
		Execer:       client,
		Introspector: db.NewMySQLIntrospector(client, schemaName),
		close:        client.Close,
	}, nil
}

func connectSQLite(ctx context.Context, path string) (*Connection, error) {
	client, err := db.NewSQLiteClient(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	return &Connection{
		Grammar:      grammar.NewSQLite(),
		Execer:       client,
		Introspector: db.NewSQLiteIntrospector(client),
		close:        client.Close,
	}, nil
}
