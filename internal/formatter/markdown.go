package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

// MarkdownFormatter formats a schema graph as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the graph in markdown format
func (f *MarkdownFormatter) Format(g *schema.Graph) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range g.Tables {
		f.FormatTable(g, table)
	}

	if len(g.Enums) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Enums")
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range g.Enums {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", e.Name, strings.Join(e.Values, ", "))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(g *schema.Graph, table schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		typeStr := typeString(g, col)
		if constraints := f.formatConstraints(col); constraints != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, typeStr, constraints)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, typeStr)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if rels := outgoing(g, table.Name); len(rels) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, rel := range rels {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s\n", rel.FromColumn, rel.ToTable, rel.ToColumn)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range table.Indexes {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", formatIndex(idx))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

// FormatIncoming writes the relations pointing at a table
func (f *MarkdownFormatter) FormatIncoming(g *schema.Graph, table string) {
	rels := incoming(g, table)
	if len(rels) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### Referenced by")
	_, _ = fmt.Fprintln(f.writer)
	for _, rel := range rels {
		_, _ = fmt.Fprintf(f.writer, "- %s.%s → %s\n", rel.FromTable, rel.FromColumn, rel.ToColumn)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column) string {
	var constraints []string

	if col.IsPrimaryKey {
		constraints = append(constraints, "PK")
	}
	if col.IsNotNull {
		constraints = append(constraints, "NOT NULL")
	}
	if col.IsForeignKey {
		constraints = append(constraints, "FK")
	}
	if col.IsEnum {
		constraints = append(constraints, "ENUM")
	}

	return strings.Join(constraints, ", ")
}
