package compiler

import (
	"fmt"

	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/schema"
)

// Compile renders bp into SQL statements in execution order. A blueprint
// that fails validation yields no statements.
func Compile(bp *blueprint.Blueprint, g grammar.Grammar) ([]string, error) {
	if err := bp.Err(); err != nil {
		return nil, err
	}

	c, err := Classify(bp, g)
	if err != nil {
		return nil, err
	}

	if bp.Mode() == blueprint.ModeCreate {
		return compileCreate(bp, c, g)
	}
	return compileAlter(bp, c, g)
}

func compileCreate(bp *blueprint.Blueprint, c *Classification, g grammar.Grammar) ([]string, error) {
	if c.HasColumnChanges() {
		return nil, &schema.UnsupportedOperationError{
			Dialect:   g.Dialect(),
			Operation: "change, rename or drop column",
			Reason:    fmt.Sprintf("table %s is being created", bp.Name()),
		}
	}

	t := *bp.Table()
	t.ForeignKeys = nil
	for _, op := range c.Keys {
		switch op := op.(type) {
		case blueprint.AddForeignKey:
			t.ForeignKeys = append(t.ForeignKeys, op.ForeignKey)
		case blueprint.DropIndex, blueprint.DropForeignKey:
			return nil, &schema.UnsupportedOperationError{
				Dialect:   g.Dialect(),
				Operation: "drop key",
				Reason:    fmt.Sprintf("table %s is being created", bp.Name()),
			}
		}
	}
	return g.CompileCreate(&t)
}

func compileAlter(bp *blueprint.Blueprint, c *Classification, g grammar.Grammar) ([]string, error) {
	if err := c.conflicts(bp.Name()); err != nil {
		return nil, err
	}
	from := bp.From()
	if from != nil {
		if err := c.validate(from); err != nil {
			return nil, err
		}
	}

	var rebuild *Reconstruction
	if c.Rebuild {
		if from == nil {
			return nil, &schema.MissingSourceTableError{Table: bp.Name()}
		}
		r, err := PlanRebuild(from, c)
		if err != nil {
			return nil, err
		}
		rebuild = r
	}

	var sql []string
	for _, col := range c.Adds {
		stmt, err := g.CompileAddColumn(bp.Name(), col)
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmt)
	}

	if rebuild != nil {
		sql = append(sql, rebuild.Statements(g)...)
	} else {
		native, err := compileNative(bp.Name(), c, g)
		if err != nil {
			return nil, err
		}
		sql = append(sql, native...)
	}

	keys, err := compileKeys(bp.Name(), c.Keys, g)
	if err != nil {
		return nil, err
	}
	return append(sql, keys...), nil
}

func compileNative(table string, c *Classification, g grammar.Grammar) ([]string, error) {
	var sql []string
	for _, r := range c.Renames {
		stmts, err := g.CompileRenameColumn(table, r.From, r.Column)
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmts...)
	}
	for _, col := range c.Changes {
		stmt, err := g.CompileChangeColumn(table, col)
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmt)
	}
	for _, name := range c.Drops {
		stmt, err := g.CompileDropColumn(table, name)
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmt)
	}
	return sql, nil
}

func compileKeys(table string, ops []blueprint.Operation, g grammar.Grammar) ([]string, error) {
	var sql []string
	for _, op := range ops {
		var (
			stmt string
			err  error
		)
		switch op := op.(type) {
		case blueprint.AddIndex:
			stmt, err = g.CompileAddIndex(table, op.Index)
		case blueprint.DropIndex:
			stmt, err = g.CompileDropIndex(table, op.Index)
		case blueprint.AddForeignKey:
			stmt, err = g.CompileAddForeignKey(table, op.ForeignKey)
		case blueprint.DropForeignKey:
			stmt, err = g.CompileDropForeignKey(table, op.Name)
		default:
			err = fmt.Errorf("unexpected key operation %T", op)
		}
		if err != nil {
			return nil, err
		}
		sql = append(sql, stmt)
	}
	return sql, nil
}
