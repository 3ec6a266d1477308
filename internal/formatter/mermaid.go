package formatter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

// Mermaid attribute types and entity names may not contain spaces or
// punctuation
var mermaidUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// MermaidFormatter formats a schema graph as a Mermaid erDiagram
type MermaidFormatter struct {
	writer io.Writer
}

// NewMermaidFormatter creates a new Mermaid formatter
func NewMermaidFormatter(w io.Writer) *MermaidFormatter {
	return &MermaidFormatter{writer: w}
}

// Format writes the erDiagram. Every relation becomes a many-to-one edge
// labelled with its column; enums are listed as comments.
func (f *MermaidFormatter) Format(g *schema.Graph) error {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	if len(g.Relations) > 0 {
		for _, rel := range g.Relations {
			sb.WriteString(fmt.Sprintf("    %s }o--|| %s : %q\n",
				mermaidName(rel.FromTable),
				mermaidName(rel.ToTable),
				rel.FromColumn))
		}
		sb.WriteString("\n")
	}

	for _, table := range g.Tables {
		sb.WriteString(fmt.Sprintf("    %s {\n", mermaidName(table.Name)))
		for _, col := range table.Columns {
			annotations := ""
			if col.IsPrimaryKey {
				annotations = " PK"
			}
			if col.IsForeignKey {
				if annotations == "" {
					annotations = " FK"
				} else {
					annotations += ", FK"
				}
			}
			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				simplifyDataType(col.Type),
				mermaidName(col.Name),
				annotations))
		}
		sb.WriteString("    }\n")
	}

	for _, e := range g.Enums {
		sb.WriteString(fmt.Sprintf("    %%%% enum %s: %s\n", e.Name, strings.Join(e.Values, ", ")))
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

func mermaidName(name string) string {
	name = mermaidUnsafe.ReplaceAllString(name, "_")
	if name == "" {
		return "_"
	}
	return name
}

// simplifyDataType shortens verbose SQL types to a single Mermaid token
func simplifyDataType(dataType string) string {
	dt := strings.ToLower(strings.TrimSpace(dataType))

	switch {
	case dt == "":
		return "unknown"
	case strings.HasSuffix(dt, "[]"):
		return simplifyDataType(strings.TrimSuffix(dt, "[]")) + "_array"
	case dt == "integer":
		return "int"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case strings.HasPrefix(dt, "timestamp") && strings.Contains(dt, "with time zone") && !strings.Contains(dt, "without"):
		return "timestamptz"
	case strings.HasPrefix(dt, "timestamp"):
		return "timestamp"
	case strings.HasPrefix(dt, "time"):
		return "time"
	case dt == "double precision":
		return "double"
	case strings.HasPrefix(dt, "numeric"):
		return "numeric"
	case strings.HasPrefix(dt, "decimal"):
		return "decimal"
	}

	if i := strings.IndexByte(dt, '('); i > 0 {
		dt = dt[:i]
	}
	return mermaidName(strings.TrimSpace(dt))
}
