package migration

import (
	"context"
	"fmt"

	schemabuilder "github.com/tordrt/schemabuilder"
	"github.com/tordrt/schemabuilder/internal/blueprint"
	"github.com/tordrt/schemabuilder/internal/schema"
)

// Result holds the statements one migration compiled to
type Result struct {
	Table      string
	Action     string
	Statements []string
}

// Apply runs every migration of f against s in file order. It stops at the
// first failure and returns the results gathered so far.
func Apply(ctx context.Context, s *schemabuilder.Schema, f *File) ([]Result, error) {
	results := make([]Result, 0, len(f.Migrations))
	for i, m := range f.Migrations {
		action := m.Action
		if action == "" {
			action = "alter"
		}

		statements, err := applyOne(ctx, s, m, action)
		if err != nil {
			return results, fmt.Errorf("migration %d (%s %s): %w", i+1, action, m.Table, err)
		}
		results = append(results, Result{Table: m.Table, Action: action, Statements: statements})
	}
	return results, nil
}

func applyOne(ctx context.Context, s *schemabuilder.Schema, m Migration, action string) ([]string, error) {
	switch action {
	case "alter":
		from, err := m.snapshot()
		if err != nil {
			return nil, err
		}
		return s.Table(ctx, m.Table, func(bp *blueprint.Blueprint) error {
			if from != nil {
				bp.SetFrom(from)
			}
			return build(bp, m.Operations)
		})
	case "create":
		return s.Create(ctx, m.Table, func(bp *blueprint.Blueprint) error {
			return build(bp, m.Operations)
		})
	case "drop":
		return s.Drop(ctx, m.Table)
	case "drop_if_exists":
		return s.DropIfExists(ctx, m.Table)
	case "rename":
		if m.RenameTo == "" {
			return nil, fmt.Errorf("rename_to is required")
		}
		return s.Rename(ctx, m.Table, m.RenameTo)
	case "truncate":
		return s.Truncate(ctx, m.Table, m.ForeignKeys)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// build replays file operations onto a blueprint
func build(bp *blueprint.Blueprint, ops []Operation) error {
	for _, op := range ops {
		var err error
		switch {
		case op.Add != nil:
			err = declare(bp, *op.Add, bp.AddColumn)
		case op.Change != nil:
			err = declare(bp, *op.Change, bp.ChangeColumn)
		case op.Drop != "":
			bp.DropColumn(op.Drop)
		case op.Rename != nil:
			err = rename(bp, *op.Rename)
		case op.Index != nil:
			err = index(bp, *op.Index)
		case op.DropIndex != nil:
			err = dropIndex(bp, *op.DropIndex)
		case op.Foreign != nil:
			foreign(bp, *op.Foreign)
		case op.DropForeign != "":
			bp.DropForeign(op.DropForeign)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func declare(bp *blueprint.Blueprint, spec ColumnSpec, add func(schema.Column) error) error {
	col, err := spec.column(true)
	if err != nil {
		return err
	}
	if err := add(col); err != nil {
		return err
	}
	if spec.Unique {
		bp.Unique(col.Name)
	}
	if spec.Index {
		bp.Index(col.Name)
	}
	return nil
}

func rename(bp *blueprint.Blueprint, spec RenameSpec) error {
	var t schema.ColumnType
	if spec.Type != "" {
		parsed, ok := schema.ParseColumnType(spec.Type)
		if !ok {
			return fmt.Errorf("column %s: unknown type %q", spec.To, spec.Type)
		}
		t = parsed
	}
	return bp.RenameColumn(spec.From, spec.To, t)
}

func indexKind(kind string) (schema.IndexKind, error) {
	switch schema.IndexKind(kind) {
	case "", schema.IndexPlain:
		return schema.IndexPlain, nil
	case schema.IndexUnique, schema.IndexPrimary, schema.IndexFulltext:
		return schema.IndexKind(kind), nil
	}
	return "", fmt.Errorf("unknown index kind %q", kind)
}

func index(bp *blueprint.Blueprint, spec IndexSpec) error {
	kind, err := indexKind(spec.Kind)
	if err != nil {
		return err
	}
	var def *blueprint.IndexDefinition
	switch kind {
	case schema.IndexUnique:
		def = bp.Unique(spec.Columns...)
	case schema.IndexPrimary:
		def = bp.Primary(spec.Columns...)
	case schema.IndexFulltext:
		def = bp.Fulltext(spec.Columns...)
	default:
		def = bp.Index(spec.Columns...)
	}
	if spec.Name != "" {
		def.Name(spec.Name)
	}
	return nil
}

func dropIndex(bp *blueprint.Blueprint, spec IndexSpec) error {
	kind, err := indexKind(spec.Kind)
	if err != nil {
		return err
	}
	name := spec.Name
	if name == "" {
		name = blueprint.IndexName(bp.Name(), spec.Columns, kind)
	}
	switch kind {
	case schema.IndexUnique:
		bp.DropUnique(name)
	case schema.IndexPrimary:
		bp.DropPrimary(spec.Columns...)
	default:
		bp.DropIndex(name)
	}
	return nil
}

func foreign(bp *blueprint.Blueprint, spec ForeignSpec) {
	def := bp.Foreign(spec.Column).References(spec.References).On(spec.On)
	if spec.OnDelete != "" {
		def.OnDelete(spec.OnDelete)
	}
	if spec.OnUpdate != "" {
		def.OnUpdate(spec.OnUpdate)
	}
	if spec.Name != "" {
		def.Name(spec.Name)
	}
}
