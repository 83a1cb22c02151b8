package compiler

import (
	"reflect"
	"testing"

	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/schema"
)

func TestPlanRebuild(t *testing.T) {
	from := usersTable(integer("id"), varchar("post"), varchar("name"), varchar("email"))

	c := &Classification{
		Adds:    []schema.Column{{Name: "nickname", Type: schema.TypeString, Length: 50}},
		Changes: []schema.Column{{Name: "name", Type: schema.TypeText, Nullable: true}},
		Renames: []blueprint.RenameColumn{{From: "post", Column: schema.Column{Name: "body"}}},
		Drops:   []string{"email"},
		Rebuild: true,
	}

	r, err := PlanRebuild(from, c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r.TempTable() != "__temp__users" {
		t.Errorf("Expected temp table __temp__users, got %s", r.TempTable())
	}
	if want := []string{"id", "post", "name"}; !reflect.DeepEqual(r.Sources, want) {
		t.Errorf("Expected sources %v, got %v", want, r.Sources)
	}

	wantKept := []schema.Column{
		integer("id"),
		{Name: "body", Type: schema.TypeString},
		{Name: "name", Type: schema.TypeText, Nullable: true},
	}
	if !reflect.DeepEqual(r.Kept, wantKept) {
		t.Errorf("Expected kept %+v, got %+v", wantKept, r.Kept)
	}
	if len(r.Added) != 1 || r.Added[0].Name != "nickname" {
		t.Errorf("Expected nickname to be recreated, got %+v", r.Added)
	}

	if len(from.Columns) != 4 || from.Columns[1].Name != "post" {
		t.Errorf("Expected source table to be untouched, got %v", from.ColumnNames())
	}
}

func TestPlanRebuildNilSource(t *testing.T) {
	if _, err := PlanRebuild(nil, &Classification{}); err == nil {
		t.Error("Expected error but got none")
	}
}
