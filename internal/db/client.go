package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/mattn/go-sqlite3"
)

// PostgresClient runs statements on a single PostgreSQL connection
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects to PostgreSQL. A non-empty schemaName becomes
// the search_path, so unqualified table names in compiled DDL resolve there.
func NewPostgresClient(ctx context.Context, connString, schemaName string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if schemaName != "" {
		cfg.RuntimeParams["search_path"] = schemaName
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// Exec runs a single statement
func (c *PostgresClient) Exec(ctx context.Context, statement string) error {
	_, err := c.conn.Exec(ctx, statement)
	return err
}

// sqlClient is a database/sql handle limited to one open connection.
// Temporary tables are connection scoped, so every statement of a rebuild
// must run on the same connection.
type sqlClient struct {
	db *sql.DB
}

func newSQLClient(ctx context.Context, db *sql.DB) (sqlClient, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return sqlClient{}, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqlClient{db: db}, nil
}

// Close closes the database handle
func (c sqlClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying handle
func (c sqlClient) GetDB() *sql.DB {
	return c.db
}

// Exec runs a single statement
func (c sqlClient) Exec(ctx context.Context, statement string) error {
	_, err := c.db.ExecContext(ctx, statement)
	return err
}

// SQLiteClient runs statements on a SQLite database file
type SQLiteClient struct {
	sqlClient
}

// NewSQLiteClient opens the SQLite database at path
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c, err := newSQLClient(ctx, db)
	if err != nil {
		return nil, err
	}
	return &SQLiteClient{sqlClient: c}, nil
}

// MySQLClient runs statements on a MySQL or MariaDB server
type MySQLClient struct {
	sqlClient
}

// NewMySQLClient connects using a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/database
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	c, err := newSQLClient(ctx, sql.OpenDB(connector))
	if err != nil {
		return nil, err
	}
	return &MySQLClient{sqlClient: c}, nil
}

// ParseDatabaseName returns the database named in a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("DSN does not name a database")
	}
	return cfg.DBName, nil
}
