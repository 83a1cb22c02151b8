package blueprint

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tordrt/schemabuilder/internal/schema"
)

func TestColumnHelpersDefaults(t *testing.T) {
	bp := New("users", ModeCreate)
	bp.Increments("id")
	bp.String("name")
	bp.String("code", 10)
	bp.Char("flag")
	bp.UUID("token")
	bp.Decimal("price", 8, 2)
	bp.Column("ratio", schema.TypeDecimal)
	bp.Enum("status", "draft", "live")

	tests := []struct {
		column string
		want   schema.Column
	}{
		{column: "id", want: schema.Column{Name: "id", Type: schema.TypeIncrements, Primary: true, AutoIncrement: true}},
		{column: "name", want: schema.Column{Name: "name", Type: schema.TypeString, Length: 255}},
		{column: "code", want: schema.Column{Name: "code", Type: schema.TypeString, Length: 10}},
		{column: "flag", want: schema.Column{Name: "flag", Type: schema.TypeChar, Length: 1}},
		{column: "token", want: schema.Column{Name: "token", Type: schema.TypeUUID, Length: 36}},
		{column: "price", want: schema.Column{Name: "price", Type: schema.TypeDecimal, Length: 8, Scale: 2}},
		{column: "ratio", want: schema.Column{Name: "ratio", Type: schema.TypeDecimal, Length: 17, Scale: 6}},
		{column: "status", want: schema.Column{Name: "status", Type: schema.TypeEnum, Values: []string{"draft", "live"}}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := bp.Table().FindColumn(tt.column)
			if !ok {
				t.Fatalf("Expected column %s to be declared", tt.column)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if n := len(bp.Operations()); n != len(tests) {
		t.Errorf("Expected %d operations, got %d", len(tests), n)
	}
}

func TestModifiersUpdateOperationAndTable(t *testing.T) {
	bp := New("users", ModeAlter)
	bp.Integer("age").Nullable().Default(18).Unsigned()

	ops := bp.Operations()
	if len(ops) != 1 {
		t.Fatalf("Expected 1 operation, got %d", len(ops))
	}
	add, ok := ops[0].(AddColumn)
	if !ok {
		t.Fatalf("Expected AddColumn, got %T", ops[0])
	}
	want := schema.Column{Name: "age", Type: schema.TypeInteger, Nullable: true, Default: 18, Unsigned: true}
	if !reflect.DeepEqual(add.Column, want) {
		t.Errorf("Expected operation column %+v, got %+v", want, add.Column)
	}

	col, _ := bp.Table().FindColumn("age")
	if !reflect.DeepEqual(col, want) {
		t.Errorf("Expected working column %+v, got %+v", want, col)
	}
}

func TestChangeModifier(t *testing.T) {
	bp := New("users", ModeAlter)
	bp.Integer("age").Nullable().Change()
	bp.String("name")

	ops := bp.Operations()
	if _, ok := ops[0].(ChangeColumn); !ok {
		t.Errorf("Expected ChangeColumn, got %T", ops[0])
	}
	if _, ok := ops[1].(AddColumn); !ok {
		t.Errorf("Expected AddColumn, got %T", ops[1])
	}
}

func TestDuplicateColumnIsRecorded(t *testing.T) {
	bp := New("users", ModeAlter)
	bp.String("name")
	bp.Text("name").Nullable()

	var dup *schema.DuplicateColumnError
	if !errors.As(bp.Err(), &dup) {
		t.Fatalf("Expected DuplicateColumnError, got %v", bp.Err())
	}
	if n := len(bp.Operations()); n != 1 {
		t.Errorf("Expected the duplicate to be skipped, got %d operations", n)
	}
	col, _ := bp.Table().FindColumn("name")
	if col.Nullable {
		t.Error("Expected modifiers on a failed declaration to be ignored")
	}
}

func TestRenameColumn(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		typ     schema.ColumnType
		want    schema.Column
		wantErr bool
	}{
		{
			name: "without type",
			to:   "comment",
			want: schema.Column{Name: "comment"},
		},
		{
			name: "with sized type",
			to:   "comment",
			typ:  schema.TypeString,
			want: schema.Column{Name: "comment", Type: schema.TypeString, Length: 255},
		},
		{
			name: "with decimal type",
			to:   "amount",
			typ:  schema.TypeDecimal,
			want: schema.Column{Name: "amount", Type: schema.TypeDecimal, Length: 17, Scale: 6},
		},
		{
			name:    "onto declared column",
			to:      "name",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := New("users", ModeAlter)
			bp.String("name")

			err := bp.RenameColumn("post", tt.to, tt.typ)
			if tt.wantErr {
				var dup *schema.DuplicateColumnError
				if !errors.As(err, &dup) {
					t.Errorf("Expected DuplicateColumnError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			ops := bp.Operations()
			rename, ok := ops[len(ops)-1].(RenameColumn)
			if !ok {
				t.Fatalf("Expected RenameColumn, got %T", ops[len(ops)-1])
			}
			if rename.From != "post" {
				t.Errorf("Expected rename from post, got %s", rename.From)
			}
			if !reflect.DeepEqual(rename.Column, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, rename.Column)
			}
		})
	}
}

func TestRenameReservesTarget(t *testing.T) {
	tests := []struct {
		name  string
		build func(bp *Blueprint) error
	}{
		{
			name: "add after rename",
			build: func(bp *Blueprint) error {
				return bp.AddColumn(schema.Column{Name: "comment", Type: schema.TypeInteger})
			},
		},
		{
			name: "change after rename",
			build: func(bp *Blueprint) error {
				return bp.ChangeColumn(schema.Column{Name: "comment", Type: schema.TypeInteger})
			},
		},
		{
			name: "second rename onto same name",
			build: func(bp *Blueprint) error {
				return bp.RenameColumn("body", "comment", "")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := New("users", ModeAlter)
			if err := bp.RenameColumn("post", "comment", schema.TypeInteger); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			err := tt.build(bp)
			var dup *schema.DuplicateColumnError
			if !errors.As(err, &dup) || dup.Column != "comment" {
				t.Errorf("Expected DuplicateColumnError for comment, got %v", err)
			}
			if !errors.As(bp.Err(), &dup) {
				t.Errorf("Expected the error to be recorded, got %v", bp.Err())
			}
			if n := len(bp.Operations()); n != 1 {
				t.Errorf("Expected 1 operation, got %d", n)
			}
		})
	}
}

func TestIndexNames(t *testing.T) {
	bp := New("users", ModeAlter)
	bp.String("email").Unique()
	bp.Index("last_name", "first_name")
	bp.Primary("id")
	bp.Fulltext("bio").Name("users_bio_search")
	bp.DropIndex("users_old_index")
	bp.DropUnique("users_email_unique")
	bp.DropPrimary("id")

	var got []schema.Index
	for _, op := range bp.Operations() {
		switch op := op.(type) {
		case AddIndex:
			got = append(got, op.Index)
		case DropIndex:
			got = append(got, op.Index)
		}
	}

	want := []schema.Index{
		{Name: "users_email_unique", Kind: schema.IndexUnique, Columns: []string{"email"}},
		{Name: "users_last_name_first_name_index", Kind: schema.IndexPlain, Columns: []string{"last_name", "first_name"}},
		{Name: "users_id_primary", Kind: schema.IndexPrimary, Columns: []string{"id"}},
		{Name: "users_bio_search", Kind: schema.IndexFulltext, Columns: []string{"bio"}},
		{Name: "users_old_index", Kind: schema.IndexPlain},
		{Name: "users_email_unique", Kind: schema.IndexUnique},
		{Name: "users_id_primary", Kind: schema.IndexPrimary},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected indexes\n%+v\ngot\n%+v", want, got)
	}

	if n := len(bp.Table().Indexes); n != 4 {
		t.Errorf("Expected 4 indexes on the working table, got %d", n)
	}
	if name := bp.Table().Indexes[3].Name; name != "users_bio_search" {
		t.Errorf("Expected renamed index on the working table, got %s", name)
	}
}

func TestForeignKey(t *testing.T) {
	bp := New("posts", ModeCreate)
	bp.Integer("user_id")
	bp.Foreign("user_id").References("id").On("users").OnDelete("cascade")
	bp.Foreign("editor_id").References("id").On("users").OnUpdate("set null").Name("posts_editor_fk")
	bp.DropForeign("posts_old_foreign")

	ops := bp.Operations()
	want := []Operation{
		AddColumn{Column: schema.Column{Name: "user_id", Type: schema.TypeInteger}},
		AddForeignKey{ForeignKey: schema.ForeignKey{
			Name: "posts_user_id_foreign", Column: "user_id", ReferencesTable: "users", ReferencesColumn: "id", OnDelete: "cascade",
		}},
		AddForeignKey{ForeignKey: schema.ForeignKey{
			Name: "posts_editor_fk", Column: "editor_id", ReferencesTable: "users", ReferencesColumn: "id", OnUpdate: "set null",
		}},
		DropForeignKey{Name: "posts_old_foreign"},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("Expected operations\n%+v\ngot\n%+v", want, ops)
	}
}

func TestTimestamps(t *testing.T) {
	bp := New("users", ModeCreate)
	bp.Timestamps()

	for _, name := range []string{"created_at", "updated_at"} {
		col, ok := bp.Table().FindColumn(name)
		if !ok {
			t.Fatalf("Expected column %s", name)
		}
		if col.Type != schema.TypeTimestamp || !col.Nullable || col.Default != "current" {
			t.Errorf("Unexpected %s column: %+v", name, col)
		}
	}
}

func TestConsume(t *testing.T) {
	bp := New("users", ModeAlter)
	if bp.Consumed() {
		t.Fatal("Expected fresh blueprint to be unconsumed")
	}
	if err := bp.Consume(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := bp.Consume(); !errors.Is(err, ErrConsumed) {
		t.Errorf("Expected ErrConsumed, got %v", err)
	}
}

func TestOperationsReturnsCopy(t *testing.T) {
	bp := New("users", ModeAlter)
	bp.DropColumn("a", "b")

	ops := bp.Operations()
	ops[0] = DropColumn{Name: "z"}

	if got := bp.Operations()[0]; got != (DropColumn{Name: "a"}) {
		t.Errorf("Expected recorded operations to be unaffected, got %+v", got)
	}
}
