package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/schemabuilder/internal/migration"
)

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single table", input: "users", want: []string{"users"}},
		{name: "multiple tables", input: "users,posts,comments", want: []string{"users", "posts", "comments"}},
		{name: "spaces trimmed", input: " users , posts ", want: []string{"users", "posts"}},
		{name: "blanks dropped", input: "users,,posts,", want: []string{"users", "posts"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTableList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		db      string
		mysql   string
		sqlite  string
		want    string
		wantErr bool
	}{
		{name: "postgres", db: "postgres://localhost/app", want: "postgres://localhost/app"},
		{name: "mysql without scheme", mysql: "root@tcp(localhost:3306)/app", want: "mysql://root@tcp(localhost:3306)/app"},
		{name: "mysql with scheme", mysql: "mysql://root@tcp(localhost:3306)/app", want: "mysql://root@tcp(localhost:3306)/app"},
		{name: "sqlite", sqlite: "app.db", want: "sqlite://app.db"},
		{name: "none", wantErr: true},
		{name: "two", db: "postgres://localhost/app", sqlite: "app.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbURL, mysqlURL, sqlitePath = tt.db, tt.mysql, tt.sqlite
			t.Cleanup(func() { dbURL, mysqlURL, sqlitePath = "", "", "" })

			got, err := databaseURL()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []migration.Result{{Table: "users", Action: "drop", Statements: []string{`DROP TABLE "users"`}}}

	var buf bytes.Buffer
	if err := formatResults(&buf, "text", results); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `DROP TABLE "users";`) {
		t.Errorf("Unexpected output: %s", buf.String())
	}

	if err := formatResults(&buf, "yaml", results); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "migrations.yaml")
	content := `dialect: sqlite
migrations:
  - table: users
    operations:
      - add: {name: name, type: string}
      - add: {name: age, type: integer}
`
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write migration file: %v", err)
	}
	output := filepath.Join(dir, "out.sql")

	rootCmd.SetArgs([]string{"render", input, "--output", output})
	t.Cleanup(func() { outputFile, format, dialect = "", "text", "" })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	want := "-- alter users\nALTER TABLE users ADD COLUMN name VARCHAR;\nALTER TABLE users ADD COLUMN age INTEGER;\n"
	if string(got) != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, got)
	}
}
