package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tordrt/erdschema/internal/diagram"
)

// JSONFormatter writes the diagram geometry as indented JSON for UIs that do
// their own drawing
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the diagram
func (f *JSONFormatter) Format(d *diagram.Diagram) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode diagram: %w", err)
	}
	return nil
}
