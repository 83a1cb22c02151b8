package migration

import (
	"context"
	"errors"
	"strings"
	"testing"

	schemabuilder "github.com/tordrt/schemabuilder"
	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/schema"
)

func TestApplySQLite(t *testing.T) {
	f, err := Load(strings.NewReader(sampleFile))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s := schemabuilder.New(grammar.NewSQLite(), schemabuilder.WithDryRun())
	results, err := Apply(context.Background(), s, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []Result{
		{
			Table:  "users",
			Action: "alter",
			Statements: []string{
				"ALTER TABLE users ADD COLUMN email VARCHAR",
				"CREATE TEMPORARY TABLE __temp__users AS SELECT post, age FROM users",
				"DROP TABLE users",
				`CREATE TABLE "users" (comment INTEGER, age INTEGER, email VARCHAR(255))`,
				`INSERT INTO "users" (comment, age) SELECT post, age FROM __temp__users`,
				"DROP TABLE __temp__users",
				`CREATE UNIQUE INDEX users_email_unique ON "users"(email)`,
			},
		},
		{
			Table:      "posts",
			Action:     "create",
			Statements: []string{`CREATE TABLE "posts" (id INTEGER PRIMARY KEY AUTOINCREMENT, price DECIMAL(17, 6) NOT NULL)`},
		},
		{
			Table:  "sessions",
			Action: "truncate",
			Statements: []string{
				"PRAGMA foreign_keys = OFF",
				`DELETE FROM "sessions"`,
				"PRAGMA foreign_keys = ON",
			},
		},
	}

	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i].Table != want[i].Table || results[i].Action != want[i].Action {
			t.Errorf("Result %d: expected %s %s, got %s %s", i, want[i].Action, want[i].Table, results[i].Action, results[i].Table)
		}
		if strings.Join(results[i].Statements, "\n") != strings.Join(want[i].Statements, "\n") {
			t.Errorf("Result %d statements:\nexpected %q\ngot      %q", i, want[i].Statements, results[i].Statements)
		}
	}
}

func TestApplyPostgresKeys(t *testing.T) {
	content := `
migrations:
  - table: posts
    operations:
      - index: {columns: [title, slug], kind: unique}
      - index: {columns: [body], name: posts_body_idx}
      - drop_index: {columns: [title], kind: unique}
      - drop_index: {columns: [id], kind: primary}
      - foreign: {column: user_id, references: id, on: users, on_delete: cascade}
      - drop_foreign: posts_editor_id_foreign
  - table: posts
    action: rename
    rename_to: articles
  - table: legacy
    action: drop_if_exists
`
	f, err := Load(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s := schemabuilder.New(grammar.NewPostgres(), schemabuilder.WithDryRun())
	results, err := Apply(context.Background(), s, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var got []string
	for _, r := range results {
		got = append(got, r.Statements...)
	}
	want := []string{
		`ALTER TABLE "posts" ADD CONSTRAINT "posts_title_slug_unique" UNIQUE ("title", "slug")`,
		`CREATE INDEX "posts_body_idx" ON "posts" ("body")`,
		`ALTER TABLE "posts" DROP CONSTRAINT "posts_title_unique"`,
		`ALTER TABLE "posts" DROP CONSTRAINT "posts_id_primary"`,
		`ALTER TABLE "posts" ADD CONSTRAINT "posts_user_id_foreign" FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
		`ALTER TABLE "posts" DROP CONSTRAINT "posts_editor_id_foreign"`,
		`ALTER TABLE "posts" RENAME TO "articles"`,
		`DROP TABLE IF EXISTS "legacy"`,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Expected\n%s\ngot\n%s", strings.Join(want, "\n"), strings.Join(got, "\n"))
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	content := `
migrations:
  - table: users
    action: drop
  - table: users
    from:
      - {name: name, type: string}
    operations:
      - drop: missing
  - table: teams
    action: drop
`
	f, err := Load(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s := schemabuilder.New(grammar.NewSQLite(), schemabuilder.WithDryRun())
	results, err := Apply(context.Background(), s, f)

	var unknown *schema.UnknownColumnError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownColumnError, got %v", err)
	}
	if !strings.Contains(err.Error(), "migration 2") {
		t.Errorf("Expected error to name migration 2, got %v", err)
	}
	if len(results) != 1 || results[0].Action != "drop" {
		t.Errorf("Expected only the first result, got %+v", results)
	}
}

func TestApplyInvalidMigrations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown action", content: "migrations:\n  - {table: users, action: explode}\n"},
		{name: "rename without target", content: "migrations:\n  - {table: users, action: rename}\n"},
		{name: "unknown column type", content: "migrations:\n  - table: users\n    operations:\n      - add: {name: shape, type: geometry}\n"},
		{name: "unknown index kind", content: "migrations:\n  - table: users\n    operations:\n      - index: {columns: [a], kind: spatial}\n"},
		{name: "unknown rename type", content: "migrations:\n  - table: users\n    operations:\n      - rename: {from: a, to: b, type: geometry}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Unexpected load error: %v", err)
			}
			s := schemabuilder.New(grammar.NewMySQL(), schemabuilder.WithDryRun())
			if _, err := Apply(context.Background(), s, f); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}
