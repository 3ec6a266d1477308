package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

// TextFormatter formats a schema graph as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the graph in compact text format
func (f *TextFormatter) Format(g *schema.Graph) error {
	for i, table := range g.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(g, table)
	}

	for i, enum := range g.Enums {
		if i == 0 && len(g.Tables) > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		_, _ = fmt.Fprintf(f.writer, "ENUM %s: %s\n", enum.Name, strings.Join(enum.Values, "|"))
	}
	return nil
}

func (f *TextFormatter) formatTable(g *schema.Graph, table schema.Table) {
	pkStr := ""
	if pk := table.PrimaryKey(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(g, col))
	}

	if rels := outgoing(g, table.Name); len(rels) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, rel := range rels {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s\n", rel.FromColumn, rel.ToTable, rel.ToColumn)
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", formatIndex(idx))
		}
	}
}

func formatColumn(g *schema.Graph, col schema.Column) string {
	parts := []string{col.Name + ":", typeString(g, col)}

	if col.IsPrimaryKey {
		parts = append(parts, "PK")
	}
	if col.IsNotNull {
		parts = append(parts, "NOT NULL")
	}
	if col.FKTarget != nil {
		parts = append(parts, fmt.Sprintf("FK → %s.%s", col.FKTarget.Table, col.FKTarget.Column))
	}

	return strings.Join(parts, " ")
}

// typeString appends the values of a declared enum to the column type
func typeString(g *schema.Graph, col schema.Column) string {
	typeStr := col.Type
	if typeStr == "" {
		typeStr = "?"
	}
	if col.IsEnum {
		if e := g.Enum(col.EnumName); e != nil && len(e.Values) > 0 {
			typeStr = fmt.Sprintf("%s (%s)", typeStr, strings.Join(e.Values, "|"))
		}
	}
	return typeStr
}

func formatIndex(idx schema.Index) string {
	var sb strings.Builder
	sb.WriteString(idx.Name)
	if idx.Expression != "" {
		sb.WriteString(" (" + idx.Expression + ")")
	}
	if idx.Unique {
		sb.WriteString(" UNIQUE")
	}
	if idx.Method != "" {
		sb.WriteString(" USING " + idx.Method)
	}
	if idx.Include != "" {
		sb.WriteString(" INCLUDE (" + idx.Include + ")")
	}
	if idx.Predicate != "" {
		sb.WriteString(" WHERE " + idx.Predicate)
	}
	return sb.String()
}

// outgoing returns the relations leaving a table in discovery order
func outgoing(g *schema.Graph, table string) []schema.Relation {
	var rels []schema.Relation
	for _, r := range g.Relations {
		if r.FromTable == table {
			rels = append(rels, r)
		}
	}
	return rels
}

// incoming returns the relations pointing at a table in discovery order
func incoming(g *schema.Graph, table string) []schema.Relation {
	var rels []schema.Relation
	for _, r := range g.Relations {
		if r.ToTable == table {
			rels = append(rels, r)
		}
	}
	return rels
}
