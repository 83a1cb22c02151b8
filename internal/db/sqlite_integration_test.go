//go:build integration
// +build integration

package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/compiler"
	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/schema"
)

func setupSQLite(t *testing.T) *SQLiteClient {
	t.Helper()
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, post VARCHAR(100), name VARCHAR(255) NOT NULL, email VARCHAR(255))`,
		`CREATE UNIQUE INDEX users_email_unique ON users(email)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE)`,
		`INSERT INTO users (post, name, email) VALUES ('hello', 'ada', 'ada@example.com'), ('bye', 'bob', 'bob@example.com')`,
	} {
		if err := client.Exec(ctx, stmt); err != nil {
			t.Fatalf("Failed to seed database: %v", err)
		}
	}
	return client
}

func TestSQLiteIntrospection(t *testing.T) {
	ctx := context.Background()
	intro := NewSQLiteIntrospector(setupSQLite(t))

	users, err := intro.LoadTable(ctx, "users")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"id", "post", "name", "email"}
	got := users.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected columns %v, got %v", want, got)
		}
	}

	post, _ := users.FindColumn("post")
	if post.Type != schema.TypeString || post.Length != 100 || !post.Nullable {
		t.Errorf("Unexpected post column: %+v", post)
	}
	name, _ := users.FindColumn("name")
	if name.Nullable {
		t.Error("Expected name to be NOT NULL")
	}
	if pk := users.PrimaryKey(); len(pk) != 1 || pk[0] != "id" {
		t.Errorf("Expected primary key [id], got %v", pk)
	}

	foundUnique := false
	for _, idx := range users.Indexes {
		if idx.Name == "users_email_unique" && idx.Kind == schema.IndexUnique {
			foundUnique = true
		}
	}
	if !foundUnique {
		t.Errorf("Expected users_email_unique index, got %+v", users.Indexes)
	}

	posts, err := intro.LoadTable(ctx, "posts")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts.ForeignKeys) != 1 || posts.ForeignKeys[0].ReferencesTable != "users" {
		t.Errorf("Expected foreign key to users, got %+v", posts.ForeignKeys)
	}

	if _, err := intro.LoadTable(ctx, "missing"); err == nil {
		t.Error("Expected error for missing table")
	}
	if ok, err := intro.HasColumn(ctx, "missing", "id"); err != nil || ok {
		t.Errorf("Expected (false, nil) for missing table, got (%v, %v)", ok, err)
	}
}

func TestSQLiteRebuildPreservesRows(t *testing.T) {
	ctx := context.Background()
	client := setupSQLite(t)
	intro := NewSQLiteIntrospector(client)

	from, err := intro.LoadTable(ctx, "users")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bp := blueprint.New("users", blueprint.ModeAlter)
	bp.DropColumn("post")
	if err := bp.RenameColumn("email", "contact", ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	bp.Integer("age").Nullable()
	bp.SetFrom(from)

	statements, err := compiler.Compile(bp, grammar.NewSQLite())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := Apply(ctx, client, statements, nil); err != nil {
		t.Fatalf("Failed to apply rebuild: %v", err)
	}

	after, err := intro.LoadTable(ctx, "users")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"id", "name", "contact", "age"}
	got := after.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected columns %v, got %v", want, got)
		}
	}

	var count int
	if err := client.GetDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE contact IS NOT NULL").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 rows to survive the rebuild, got %d", count)
	}
}

func assertColumnNames(t *testing.T, table *schema.Table, want []string) {
	t.Helper()
	got := table.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected columns %v, got %v", want, got)
			return
		}
	}
}
