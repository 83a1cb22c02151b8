// Package compiler turns a finalized blueprint into an ordered list of SQL
// statements for one grammar.
package compiler

import (
	"fmt"

	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/schema"
)

// Classification partitions a blueprint's operations. Adds are always native.
// Changes, renames and drops are native unless Rebuild is set, in which case
// all of them go through table reconstruction together.
type Classification struct {
	Adds    []schema.Column
	Changes []schema.Column
	Renames []blueprint.RenameColumn
	Drops   []string
	// Keys holds index and foreign key operations in issuance order
	Keys    []blueprint.Operation
	Rebuild bool
}

// Classify sorts the operations of bp into native and rebuild work for g
func Classify(bp *blueprint.Blueprint, g grammar.Grammar) (*Classification, error) {
	c := &Classification{}
	dropped := make(map[string]bool)

	for _, op := range bp.Operations() {
		switch op := op.(type) {
		case blueprint.AddColumn:
			c.Adds = append(c.Adds, op.Column)
		case blueprint.ChangeColumn:
			c.Changes = append(c.Changes, op.Column)
		case blueprint.RenameColumn:
			c.Renames = append(c.Renames, op)
		case blueprint.DropColumn:
			if !dropped[op.Name] {
				dropped[op.Name] = true
				c.Drops = append(c.Drops, op.Name)
			}
		case blueprint.AddIndex, blueprint.DropIndex, blueprint.AddForeignKey, blueprint.DropForeignKey:
			c.Keys = append(c.Keys, op)
		default:
			return nil, fmt.Errorf("unknown blueprint operation %T", op)
		}
	}

	c.Rebuild = (len(c.Changes) > 0 && !g.SupportsNativeChange()) ||
		(len(c.Drops) > 0 && !g.SupportsNativeDrop()) ||
		(len(c.Renames) > 0 && !g.SupportsNativeRename())
	return c, nil
}

// HasColumnChanges reports whether any change, rename or drop was recorded
func (c *Classification) HasColumnChanges() bool {
	return len(c.Changes) > 0 || len(c.Renames) > 0 || len(c.Drops) > 0
}

// conflicts checks the operations against each other. A column name is
// produced at most once across adds, changes and renames, and a source
// column is changed, renamed or dropped at most once.
func (c *Classification) conflicts(table string) error {
	produced := make(map[string]bool)
	produce := func(name string) error {
		if produced[name] {
			return &schema.DuplicateColumnError{Table: table, Column: name}
		}
		produced[name] = true
		return nil
	}
	consumed := make(map[string]bool)
	consume := func(name string) error {
		if consumed[name] {
			return &schema.UnknownColumnError{Table: table, Column: name}
		}
		consumed[name] = true
		return nil
	}

	for _, col := range c.Adds {
		if err := produce(col.Name); err != nil {
			return err
		}
	}
	for _, col := range c.Changes {
		if err := consume(col.Name); err != nil {
			return err
		}
		if err := produce(col.Name); err != nil {
			return err
		}
	}
	for _, r := range c.Renames {
		if err := consume(r.From); err != nil {
			return err
		}
		if err := produce(r.Column.Name); err != nil {
			return err
		}
	}
	for _, name := range c.Drops {
		if err := consume(name); err != nil {
			return err
		}
	}
	return nil
}

// validate checks column references against the table's current shape
func (c *Classification) validate(from *schema.Table) error {
	for _, col := range c.Adds {
		if from.HasColumn(col.Name) {
			return &schema.DuplicateColumnError{Table: from.Name, Column: col.Name}
		}
	}
	for _, col := range c.Changes {
		if !from.HasColumn(col.Name) {
			return &schema.UnknownColumnError{Table: from.Name, Column: col.Name}
		}
	}
	for _, r := range c.Renames {
		if !from.HasColumn(r.From) {
			return &schema.UnknownColumnError{Table: from.Name, Column: r.From}
		}
		if from.HasColumn(r.Column.Name) {
			return &schema.DuplicateColumnError{Table: from.Name, Column: r.Column.Name}
		}
	}
	for _, name := range c.Drops {
		if !from.HasColumn(name) {
			return &schema.UnknownColumnError{Table: from.Name, Column: name}
		}
	}
	return nil
}
