package blueprint

import "github.com/tordrt/schemabuilder/internal/schema"

// Operation is one recorded change against a blueprint's table. The set of
// implementations is closed: AddColumn, ChangeColumn, DropColumn,
// RenameColumn, AddIndex, DropIndex, AddForeignKey and DropForeignKey.
type Operation interface {
	operation()
}

// AddColumn adds a new column
type AddColumn struct {
	Column schema.Column
}

// ChangeColumn redefines an existing column under the same name
type ChangeColumn struct {
	Column schema.Column
}

// DropColumn removes an existing column
type DropColumn struct {
	Name string
}

// RenameColumn moves the data of From into Column. An empty Column.Type keeps
// the source column's type.
type RenameColumn struct {
	From   string
	Column schema.Column
}

// AddIndex creates an index or key
type AddIndex struct {
	Index schema.Index
}

// DropIndex removes an index or key
type DropIndex struct {
	Index schema.Index
}

// AddForeignKey adds a foreign key constraint
type AddForeignKey struct {
	ForeignKey schema.ForeignKey
}

// DropForeignKey removes a foreign key constraint by name
type DropForeignKey struct {
	Name string
}

func (AddColumn) operation()      {}
func (ChangeColumn) operation()   {}
func (DropColumn) operation()     {}
func (RenameColumn) operation()   {}
func (AddIndex) operation()       {}
func (DropIndex) operation()      {}
func (AddForeignKey) operation()  {}
func (DropForeignKey) operation() {}
