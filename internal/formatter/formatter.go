// Package formatter renders schema graphs and routed diagrams in the
// supported output formats.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdschema/internal/diagram"
)

// Formats lists the single-stream output formats accepted by Write
var Formats = []string{formatText, formatMarkdown, "mermaid", "svg", "json"}

// Write renders d in the named format. Text, markdown and mermaid only use
// the graph; svg and json use the routed geometry.
func Write(w io.Writer, format string, d *diagram.Diagram) error {
	switch format {
	case formatText:
		return NewTextFormatter(w).Format(d.Graph)
	case formatMarkdown:
		return NewMarkdownFormatter(w).Format(d.Graph)
	case "mermaid":
		return NewMermaidFormatter(w).Format(d.Graph)
	case "svg":
		return NewSVGFormatter(w).Format(d)
	case "json":
		return NewJSONFormatter(w).Format(d)
	default:
		return fmt.Errorf("invalid format: %s (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}

// ContentType returns the MIME type of a format
func ContentType(format string) string {
	switch format {
	case formatMarkdown:
		return "text/markdown; charset=utf-8"
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
