// Package migration reads declarative YAML migration files and applies them
// to a schema session.
//
// A file lists migrations in the order they run:
//
//	dialect: sqlite
//	migrations:
//	  - table: users
//	    from:
//	      - {name: post, type: integer}
//	    operations:
//	      - rename: {from: post, to: comment, type: integer}
//	  - table: posts
//	    action: create
//	    operations:
//	      - add: {name: id, type: increments}
//	      - add: {name: title, type: string, length: 100}
package migration

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/schema"
)

// File is a parsed migration file
type File struct {
	Dialect    string      `yaml:"dialect"`
	Migrations []Migration `yaml:"migrations"`
}

// Migration is one table-level step
type Migration struct {
	Table string `yaml:"table"`
	// Action is alter (default), create, drop, drop_if_exists, rename or truncate
	Action      string       `yaml:"action"`
	RenameTo    string       `yaml:"rename_to"`
	ForeignKeys bool         `yaml:"foreign_keys"`
	From        []ColumnSpec `yaml:"from"`
	Operations  []Operation  `yaml:"operations"`
}

// ColumnSpec declares a column
type ColumnSpec struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Length   int      `yaml:"length"`
	Scale    int      `yaml:"scale"`
	Nullable bool     `yaml:"nullable"`
	Default  any      `yaml:"default"`
	Primary  bool     `yaml:"primary"`
	Unsigned bool     `yaml:"unsigned"`
	Values   []string `yaml:"values"`
	Unique   bool     `yaml:"unique"`
	Index    bool     `yaml:"index"`
}

// RenameSpec renames a column, optionally changing its type
type RenameSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Type string `yaml:"type"`
}

// IndexSpec declares or names an index
type IndexSpec struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
}

// ForeignSpec declares a foreign key
type ForeignSpec struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	References string `yaml:"references"`
	On         string `yaml:"on"`
	OnDelete   string `yaml:"on_delete"`
	OnUpdate   string `yaml:"on_update"`
}

// Operation holds exactly one blueprint operation
type Operation struct {
	Add         *ColumnSpec  `yaml:"add"`
	Change      *ColumnSpec  `yaml:"change"`
	Drop        string       `yaml:"drop"`
	Rename      *RenameSpec  `yaml:"rename"`
	Index       *IndexSpec   `yaml:"index"`
	DropIndex   *IndexSpec   `yaml:"drop_index"`
	Foreign     *ForeignSpec `yaml:"foreign"`
	DropForeign string       `yaml:"drop_foreign"`
}

// Load parses a migration file
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse migration file: %w", err)
	}
	for i, m := range f.Migrations {
		if m.Table == "" {
			return nil, fmt.Errorf("migration %d: table is required", i+1)
		}
		for j, op := range m.Operations {
			if n := op.count(); n != 1 {
				return nil, fmt.Errorf("migration %d (%s): operation %d must set exactly one field, got %d", i+1, m.Table, j+1, n)
			}
		}
	}
	return &f, nil
}

// LoadFile parses the migration file at path
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func (op Operation) count() int {
	n := 0
	for _, set := range []bool{
		op.Add != nil, op.Change != nil, op.Drop != "", op.Rename != nil,
		op.Index != nil, op.DropIndex != nil, op.Foreign != nil, op.DropForeign != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// column converts a spec into a column. withDefaults applies the default
// length of sized types, as declaring the column on a blueprint would.
func (c ColumnSpec) column(withDefaults bool) (schema.Column, error) {
	t, ok := schema.ParseColumnType(c.Type)
	if !ok {
		return schema.Column{}, fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
	}
	col := schema.Column{
		Name:     c.Name,
		Type:     t,
		Length:   c.Length,
		Scale:    c.Scale,
		Nullable: c.Nullable,
		Default:  c.Default,
		Primary:  c.Primary,
		Unsigned: c.Unsigned,
		Values:   c.Values,
	}
	if t == schema.TypeIncrements || t == schema.TypeBigIncrements {
		col.Primary = true
		col.AutoIncrement = true
	}
	if withDefaults && col.Length == 0 {
		col.Length = blueprint.DefaultLength(t)
		if t == schema.TypeDecimal && col.Scale == 0 {
			col.Scale = 6
		}
	}
	return col, nil
}

// snapshot builds the table's current shape from the from list
func (m Migration) snapshot() (*schema.Table, error) {
	if len(m.From) == 0 {
		return nil, nil
	}
	t := schema.NewTable(m.Table)
	for _, spec := range m.From {
		col, err := spec.column(false)
		if err != nil {
			return nil, err
		}
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}
