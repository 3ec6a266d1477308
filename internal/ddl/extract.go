// Package ddl recovers a schema graph from free-form SQL definition text.
//
// It does not implement a SQL grammar. Statements are located with
// case-insensitive keyword searches and their bodies are consumed with a
// parenthesis depth counter that ignores quoted spans, which is enough for
// the table, enum and index definitions a diagram needs. Fragments that do
// not fit are skipped; extraction never fails.
package ddl

import (
	"github.com/tordrt/erdschema/internal/schema"
)

// Extract builds a schema graph from definition text. Identical input always
// produces an identical graph: tables and columns keep source order and
// relations keep discovery order.
func Extract(text string) *schema.Graph {
	clean := StripComments(text)

	var tables []schema.Table
	var captures []fkCapture
	seen := make(map[string]bool)

	for _, block := range findTableBlocks(clean) {
		if seen[block.name] {
			continue
		}
		seen[block.name] = true

		table, fks := parseTable(block)
		tables = append(tables, table)
		captures = append(captures, fks...)
	}

	enums := uniqueEnums(findEnums(clean))
	flagEnumColumns(tables, enums)
	attachIndexes(tables, findIndexes(clean))

	g := &schema.Graph{
		Tables:    tables,
		Enums:     enums,
		Relations: []schema.Relation{},
	}
	if g.Tables == nil {
		g.Tables = []schema.Table{}
	}
	g.Relations = resolveRelations(g, captures)

	return g
}

// resolveRelations turns foreign key captures into relations. Captures naming
// a table outside the graph are dropped; an omitted target column resolves to
// the target's first primary key column, or "id". Source columns of surviving
// relations are flagged as foreign keys.
func resolveRelations(g *schema.Graph, captures []fkCapture) []schema.Relation {
	relations := []schema.Relation{}
	seen := make(map[string]bool)

	for _, fk := range captures {
		from := g.Table(fk.fromTable)
		to := g.Table(fk.toTable)
		if from == nil || to == nil {
			continue
		}

		toColumn := fk.toColumn
		if toColumn == "" {
			toColumn = schema.DefaultTargetColumn
			if pk := to.PrimaryKey(); len(pk) > 0 {
				toColumn = pk[0]
			}
		}

		rel := schema.Relation{
			FromTable:  from.Name,
			FromColumn: fk.fromColumn,
			ToTable:    to.Name,
			ToColumn:   toColumn,
		}
		if seen[rel.ID()] {
			continue
		}
		seen[rel.ID()] = true
		relations = append(relations, rel)

		if col := from.Column(fk.fromColumn); col != nil {
			col.IsForeignKey = true
			col.FKTarget = &schema.ColumnRef{Table: to.Name, Column: toColumn}
		}
	}

	return relations
}

func uniqueEnums(enums []schema.Enum) []schema.Enum {
	out := []schema.Enum{}
	seen := make(map[string]bool)
	for _, e := range enums {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	return out
}
