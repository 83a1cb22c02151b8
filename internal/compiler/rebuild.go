package compiler

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemabuilder/internal/grammar"
	"github.com/tordrt/schemabuilder/internal/schema"
)

const tempPrefix = "__temp__"

// Reconstruction describes a copy, drop, recreate, restore and cleanup of one
// table. Kept and Sources line up index by index: Kept[i] is filled from the
// original column Sources[i].
type Reconstruction struct {
	Table   string
	Kept    []schema.Column
	Sources []string
	// Added columns were already added natively and are recreated after Kept
	Added []schema.Column
}

// PlanRebuild computes the surviving columns of from after the classified
// changes, renames and drops. Order follows from; renamed and changed columns
// keep their original position.
func PlanRebuild(from *schema.Table, c *Classification) (*Reconstruction, error) {
	if from == nil {
		return nil, fmt.Errorf("failed to plan rebuild: no source table")
	}

	dropped := make(map[string]bool, len(c.Drops))
	for _, name := range c.Drops {
		dropped[name] = true
	}
	changed := make(map[string]schema.Column, len(c.Changes))
	for _, col := range c.Changes {
		changed[col.Name] = col
	}
	renamed := make(map[string]schema.Column, len(c.Renames))
	for _, r := range c.Renames {
		renamed[r.From] = r.Column
	}

	r := &Reconstruction{Table: from.Name, Added: c.Adds}
	for _, col := range from.Columns {
		if dropped[col.Name] {
			continue
		}
		target := col
		if to, ok := renamed[col.Name]; ok {
			if to.Type == "" {
				target = col.WithName(to.Name)
			} else {
				target = to
			}
		} else if ch, ok := changed[col.Name]; ok {
			target = ch
		}
		r.Kept = append(r.Kept, target)
		r.Sources = append(r.Sources, col.Name)
	}

	if len(r.Kept) == 0 {
		return nil, &schema.UnsupportedOperationError{
			Dialect:   "rebuild",
			Operation: "drop column",
			Reason:    fmt.Sprintf("table %s would be left without columns", from.Name),
		}
	}
	return r, nil
}

// TempTable returns the name of the staging copy
func (r *Reconstruction) TempTable() string {
	return tempPrefix + r.Table
}

// Statements renders the five reconstruction statements. Their order is the
// only durability guarantee: each one depends on the one before it.
func (r *Reconstruction) Statements(g grammar.Grammar) []string {
	sources := strings.Join(r.Sources, ", ")

	defs := make([]string, 0, len(r.Kept)+len(r.Added))
	targets := make([]string, 0, len(r.Kept))
	for _, col := range r.Kept {
		defs = append(defs, g.RenderColumn(col))
		targets = append(targets, col.Name)
	}
	for _, col := range r.Added {
		defs = append(defs, g.RenderColumn(col))
	}

	return []string{
		fmt.Sprintf("CREATE TEMPORARY TABLE %s AS SELECT %s FROM %s", r.TempTable(), sources, r.Table),
		fmt.Sprintf("DROP TABLE %s", r.Table),
		fmt.Sprintf("CREATE TABLE %s (%s)", g.WrapTable(r.Table), strings.Join(defs, ", ")),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", g.WrapTable(r.Table), strings.Join(targets, ", "), sources, r.TempTable()),
		fmt.Sprintf("DROP TABLE %s", r.TempTable()),
	}
}
