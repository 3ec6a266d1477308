package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tordrt/erdschema/internal/diagram"
	"github.com/tordrt/erdschema/internal/store"
)

var (
	docName string
	docID   string
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage saved diagram documents",
}

var docSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save definition text as a document, keeping its layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocSave,
}

var docShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a saved document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocShow,
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved documents",
	Args:  cobra.NoArgs,
	RunE:  runDocList,
}

var docRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocRm,
}

var docExportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write a saved document to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocExport,
}

var docImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a document file written by export or --layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocImport,
}

func init() {
	docCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite document store path")
	docSaveCmd.Flags().StringVarP(&docName, "name", "n", "", "Document name (default: file name)")
	docSaveCmd.Flags().StringVar(&docID, "id", "", "Replace the document with this ID instead of creating one")
	docShowCmd.Flags().StringVarP(&format, "format", "f", "", "Output format")
	docShowCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	docCmd.AddCommand(docSaveCmd, docShowCmd, docListCmd, docRmCmd, docExportCmd, docImportCmd)
	rootCmd.AddCommand(docCmd)
}

// withStore opens the document store for the duration of fn
func withStore(fn func(ctx context.Context, st store.Store) error) error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			out.Warn("failed to close document store: %v", err)
		}
	}()
	return fn(ctx, st)
}

func runDocSave(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		doc := &store.Document{ID: docID, Name: docName}
		if docID != "" {
			existing, err := st.Get(ctx, docID)
			if err != nil {
				return err
			}
			doc = existing
			if docName != "" {
				doc.Name = docName
			}
		}
		if doc.Name == "" {
			doc.Name = args[0]
		}

		d := diagram.Build(text, doc.Positions, cfg.DiagramOptions())
		doc.Text = text
		doc.Positions = d.Positions

		if err := st.Save(ctx, doc); err != nil {
			return err
		}
		out.Success("saved %s (%d tables, %d relations)", doc.ID, len(d.Graph.Tables), len(d.Graph.Relations))
		return nil
	})
}

func runDocShow(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		doc, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}

		d := diagram.Build(doc.Text, doc.Positions, cfg.DiagramOptions())
		warnFallbacks(d)
		return writeOutput(outputFile, resolveFormat(), d)
	})
}

func runDocList(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		docs, err := st.List(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			out.Info("no documents")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
		for _, d := range docs {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	})
}

func runDocRm(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		if err := st.Delete(ctx, args[0]); err != nil {
			return err
		}
		out.Success("deleted %s", args[0])
		return nil
	})
}

func runDocExport(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		doc, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return store.SaveFile(args[1], doc)
	})
}

func runDocImport(cmd *cobra.Command, args []string) error {
	doc, err := store.LoadFile(args[0])
	if err != nil {
		return err
	}
	if doc.Name == "" {
		doc.Name = args[0]
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		if err := st.Save(ctx, doc); err != nil {
			return err
		}
		out.Success("imported %s as %s", args[0], doc.ID)
		return nil
	})
}
