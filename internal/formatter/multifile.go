package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes a schema graph to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(g *schema.Graph) error {
	if f.OutputFormat != formatMarkdown && f.OutputFormat != formatText {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(g); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range g.Tables {
		if err := f.writeTableFile(g, table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(g *schema.Graph) error {
	ext := f.getFileExtension()
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+ext))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sortedTables := make([]schema.Table, len(g.Tables))
	copy(sortedTables, g.Tables)
	sort.Slice(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", ext)
		_, _ = fmt.Fprintf(file, "## Tables\n\n")
		for _, table := range sortedTables {
			_, _ = fmt.Fprintf(file, "- **%s**", table.Name)
			if targets := referencedTables(g, table.Name); len(targets) > 0 {
				_, _ = fmt.Fprintf(file, " (references: %s)", strings.Join(targets, ", "))
			}
			_, _ = fmt.Fprintln(file)
		}
		if len(g.Enums) > 0 {
			_, _ = fmt.Fprintf(file, "\n## Enums\n\n")
			for _, e := range g.Enums {
				_, _ = fmt.Fprintf(file, "- **%s:** %s\n", e.Name, strings.Join(e.Values, ", "))
			}
		}
		return nil
	}

	_, _ = fmt.Fprintf(file, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n\n", ext)
	for _, table := range sortedTables {
		_, _ = fmt.Fprint(file, table.Name)
		if targets := referencedTables(g, table.Name); len(targets) > 0 {
			_, _ = fmt.Fprintf(file, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintln(file)
	}
	if len(g.Enums) > 0 {
		_, _ = fmt.Fprintln(file)
		for _, e := range g.Enums {
			_, _ = fmt.Fprintf(file, "ENUM %s: %s\n", e.Name, strings.Join(e.Values, "|"))
		}
	}
	return nil
}

// writeTableFile writes a single table with its incoming references
func (f *MultiFileFormatter) writeTableFile(g *schema.Graph, table schema.Table) error {
	file, err := os.Create(filepath.Join(f.OutputDir, table.Name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		md := NewMarkdownFormatter(file)
		md.FormatTable(g, table)
		md.FormatIncoming(g, table.Name)
		return nil
	}

	NewTextFormatter(file).formatTable(g, table)
	if rels := incoming(g, table.Name); len(rels) > 0 {
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "  REFERENCED BY:")
		for _, rel := range rels {
			_, _ = fmt.Fprintf(file, "    %s.%s → %s\n", rel.FromTable, rel.FromColumn, rel.ToColumn)
		}
	}
	return nil
}

// referencedTables lists the distinct tables a table points at
func referencedTables(g *schema.Graph, table string) []string {
	var targets []string
	seen := map[string]bool{}
	for _, rel := range outgoing(g, table) {
		if !seen[rel.ToTable] {
			seen[rel.ToTable] = true
			targets = append(targets, rel.ToTable)
		}
	}
	return targets
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
