// Package blueprint records column and index operations against one table.
//
// A Blueprint only builds state. Rendering it into SQL is the compiler's job,
// and a blueprint is consumed exactly once.
package blueprint

import (
	"errors"
	"strings"

	"github.com/tordrt/schemabuilder/internal/schema"
)

// ErrConsumed is returned when a blueprint is finalized a second time
var ErrConsumed = errors.New("blueprint has already been finalized")

// Mode selects between creating a new table and altering an existing one
type Mode int

const (
	ModeAlter Mode = iota
	ModeCreate
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "alter"
}

// Blueprint accumulates operations against a named table. It is not safe for
// concurrent use.
type Blueprint struct {
	table    *schema.Table
	from     *schema.Table
	mode     Mode
	ops      []Operation
	err      error
	consumed bool
}

// New creates a blueprint for the named table
func New(table string, mode Mode) *Blueprint {
	return &Blueprint{
		table: schema.NewTable(table),
		mode:  mode,
	}
}

// Name returns the table name
func (b *Blueprint) Name() string { return b.table.Name }

// Mode returns whether the blueprint creates or alters its table
func (b *Blueprint) Mode() Mode { return b.mode }

// Table returns the working table: every column declared on this blueprint
func (b *Blueprint) Table() *schema.Table { return b.table }

// From returns the attached snapshot of the table's current shape, or nil
func (b *Blueprint) From() *schema.Table { return b.from }

// SetFrom attaches the table's current shape. It may be called after the
// operations were declared.
func (b *Blueprint) SetFrom(t *schema.Table) { b.from = t }

// Operations returns the recorded operations in issuance order
func (b *Blueprint) Operations() []Operation {
	out := make([]Operation, len(b.ops))
	copy(out, b.ops)
	return out
}

// Err returns the first error recorded by a fluent helper
func (b *Blueprint) Err() error { return b.err }

// Consume marks the blueprint as finalized. It fails on every call after the first.
func (b *Blueprint) Consume() error {
	if b.consumed {
		return ErrConsumed
	}
	b.consumed = true
	return nil
}

// Consumed reports whether the blueprint has been finalized
func (b *Blueprint) Consumed() bool { return b.consumed }

func (b *Blueprint) record(err error) error {
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

// AddColumn declares a new column
func (b *Blueprint) AddColumn(col schema.Column) error {
	if err := b.table.AddColumn(col); err != nil {
		return b.record(err)
	}
	b.ops = append(b.ops, AddColumn{Column: col})
	return nil
}

// ChangeColumn redeclares an existing column. Whether the column exists is
// checked when the blueprint is rendered.
func (b *Blueprint) ChangeColumn(col schema.Column) error {
	if err := b.table.AddColumn(col); err != nil {
		return b.record(err)
	}
	b.ops = append(b.ops, ChangeColumn{Column: col})
	return nil
}

// DropColumn removes one or more columns
func (b *Blueprint) DropColumn(names ...string) {
	for _, name := range names {
		b.ops = append(b.ops, DropColumn{Name: name})
	}
}

// RenameColumn renames a column, optionally giving it a new type. The new
// name is reserved on the working table, so later declarations of it fail.
func (b *Blueprint) RenameColumn(from, to string, typ schema.ColumnType) error {
	col := schema.Column{Name: to, Type: typ, Length: DefaultLength(typ)}
	if typ == schema.TypeDecimal {
		col.Scale = defaultScale
	}
	if err := b.table.AddColumn(col); err != nil {
		return b.record(err)
	}
	b.ops = append(b.ops, RenameColumn{From: from, Column: col})
	return nil
}

// Index adds a plain index over the given columns
func (b *Blueprint) Index(columns ...string) *IndexDefinition {
	return b.addIndex(schema.IndexPlain, columns)
}

// Unique adds a unique index over the given columns
func (b *Blueprint) Unique(columns ...string) *IndexDefinition {
	return b.addIndex(schema.IndexUnique, columns)
}

// Primary adds a primary key over the given columns
func (b *Blueprint) Primary(columns ...string) *IndexDefinition {
	return b.addIndex(schema.IndexPrimary, columns)
}

// Fulltext adds a fulltext index over the given columns
func (b *Blueprint) Fulltext(columns ...string) *IndexDefinition {
	return b.addIndex(schema.IndexFulltext, columns)
}

func (b *Blueprint) addIndex(kind schema.IndexKind, columns []string) *IndexDefinition {
	idx := schema.Index{
		Name:    IndexName(b.table.Name, columns, kind),
		Kind:    kind,
		Columns: append([]string(nil), columns...),
	}
	b.table.Indexes = append(b.table.Indexes, idx)
	b.ops = append(b.ops, AddIndex{Index: idx})
	return &IndexDefinition{bp: b, op: len(b.ops) - 1}
}

// DropIndex removes a plain index by name
func (b *Blueprint) DropIndex(name string) {
	b.ops = append(b.ops, DropIndex{Index: schema.Index{Name: name, Kind: schema.IndexPlain}})
}

// DropUnique removes a unique index by name
func (b *Blueprint) DropUnique(name string) {
	b.ops = append(b.ops, DropIndex{Index: schema.Index{Name: name, Kind: schema.IndexUnique}})
}

// DropPrimary removes the primary key declared over columns
func (b *Blueprint) DropPrimary(columns ...string) {
	name := IndexName(b.table.Name, columns, schema.IndexPrimary)
	b.ops = append(b.ops, DropIndex{Index: schema.Index{Name: name, Kind: schema.IndexPrimary}})
}

// Foreign starts a foreign key on column
func (b *Blueprint) Foreign(column string) *ForeignKeyDefinition {
	fk := schema.ForeignKey{
		Name:   b.table.Name + "_" + column + "_foreign",
		Column: column,
	}
	b.ops = append(b.ops, AddForeignKey{ForeignKey: fk})
	return &ForeignKeyDefinition{bp: b, op: len(b.ops) - 1}
}

// DropForeign removes a foreign key constraint by name
func (b *Blueprint) DropForeign(name string) {
	b.ops = append(b.ops, DropForeignKey{Name: name})
}

// IndexName builds the conventional <table>_<columns>_<kind> index name
func IndexName(table string, columns []string, kind schema.IndexKind) string {
	parts := []string{table}
	parts = append(parts, columns...)
	parts = append(parts, string(kind))
	return strings.Join(parts, "_")
}

// IndexDefinition allows an index name to be overridden after declaration
type IndexDefinition struct {
	bp *Blueprint
	op int
}

// Name replaces the generated index name
func (d *IndexDefinition) Name(name string) *IndexDefinition {
	add := d.bp.ops[d.op].(AddIndex)
	for i := range d.bp.table.Indexes {
		if d.bp.table.Indexes[i].Name == add.Index.Name {
			d.bp.table.Indexes[i].Name = name
		}
	}
	add.Index.Name = name
	d.bp.ops[d.op] = add
	return d
}

// ForeignKeyDefinition completes a foreign key declared with Foreign
type ForeignKeyDefinition struct {
	bp *Blueprint
	op int
}

func (d *ForeignKeyDefinition) update(fn func(fk *schema.ForeignKey)) *ForeignKeyDefinition {
	add := d.bp.ops[d.op].(AddForeignKey)
	fn(&add.ForeignKey)
	d.bp.ops[d.op] = add
	return d
}

// References sets the referenced column
func (d *ForeignKeyDefinition) References(column string) *ForeignKeyDefinition {
	return d.update(func(fk *schema.ForeignKey) { fk.ReferencesColumn = column })
}

// On sets the referenced table
func (d *ForeignKeyDefinition) On(table string) *ForeignKeyDefinition {
	return d.update(func(fk *schema.ForeignKey) { fk.ReferencesTable = table })
}

// OnDelete sets the ON DELETE action, e.g. "cascade"
func (d *ForeignKeyDefinition) OnDelete(action string) *ForeignKeyDefinition {
	return d.update(func(fk *schema.ForeignKey) { fk.OnDelete = action })
}

// OnUpdate sets the ON UPDATE action
func (d *ForeignKeyDefinition) OnUpdate(action string) *ForeignKeyDefinition {
	return d.update(func(fk *schema.ForeignKey) { fk.OnUpdate = action })
}

// Name replaces the generated constraint name
func (d *ForeignKeyDefinition) Name(name string) *ForeignKeyDefinition {
	return d.update(func(fk *schema.ForeignKey) { fk.Name = name })
}
