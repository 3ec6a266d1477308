package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/erdschema/internal/config"
	"github.com/tordrt/erdschema/internal/console"
	"github.com/tordrt/erdschema/internal/diagram"
	"github.com/tordrt/erdschema/internal/formatter"
	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/store"
)

var (
	configPath string
	outputFile string
	outputDir  string
	format     string
	layoutFile string

	cfg *config.Config
	out = console.New()
)

var rootCmd = &cobra.Command{
	Use:   "erdschema [file]",
	Short: "Render schema definitions as routed ER diagrams",
	Long: `erdschema reads CREATE TABLE, CREATE TYPE ... AS ENUM and CREATE INDEX statements
and renders them as an entity-relationship diagram with orthogonal connectors.
Input is read from the file argument, or stdin when omitted or "-".`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runRender,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "Config file")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output (text or markdown)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(formatter.Formats, ", ")+" (default from config, else text)")
	rootCmd.Flags().StringVarP(&layoutFile, "layout", "l", "", "Document file holding node positions; read if present and rewritten after rendering")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	name := "-"
	if len(args) == 1 {
		name = args[0]
	}
	text, err := readInput(name)
	if err != nil {
		return err
	}

	var previous layout.Positions
	var doc *store.Document
	if layoutFile != "" {
		doc, err = store.LoadFile(layoutFile)
		switch {
		case err == nil:
			previous = doc.Positions
		case errors.Is(err, os.ErrNotExist):
			doc = &store.Document{Name: name}
		default:
			return err
		}
	}

	d := diagram.Build(text, previous, cfg.DiagramOptions())
	warnFallbacks(d)

	if outputDir != "" {
		multi := formatter.NewMultiFileFormatter(outputDir, resolveFormat())
		if err := multi.Format(d.Graph); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	} else if err := writeOutput(outputFile, resolveFormat(), d); err != nil {
		return err
	}

	if doc != nil {
		doc.Text = text
		doc.Positions = d.Positions
		if err := store.SaveFile(layoutFile, doc); err != nil {
			return fmt.Errorf("failed to save layout: %w", err)
		}
	}
	return nil
}

// resolveFormat prefers the flag, then the config file
func resolveFormat() string {
	if format != "" {
		return format
	}
	if cfg != nil && cfg.Format != "" {
		return cfg.Format
	}
	return "text"
}

func readInput(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// writeOutput renders d to path, or stdout when path is empty
func writeOutput(path, format string, d *diagram.Diagram) error {
	var writer io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				out.Warn("failed to close output file: %v", err)
			}
		}()
		writer = f
	}

	if err := formatter.Write(writer, format, d); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func warnFallbacks(d *diagram.Diagram) {
	for _, e := range d.Edges {
		if e.Animated {
			out.Warn("no clear path for %s, drawn as a direct connector", e.ID)
		}
	}
}

func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}
	list := strings.Split(tables, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
