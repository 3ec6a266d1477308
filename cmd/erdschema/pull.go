package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/erdschema/internal/db"
)

var (
	dbURL      string
	tables     string
	schemaName string
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Read a live database catalog as DDL text",
	Long: `Connect to PostgreSQL, MySQL or SQLite and print the catalog as CREATE statements
that erdschema can render, e.g. erdschema pull --db-url sqlite://app.db | erdschema -f svg`,
	RunE: runPull,
}

func init() {
	pullCmd.Flags().StringVar(&dbURL, "db-url", "", "Database URL: postgres://, mysql:// or sqlite:// (default: $DATABASE_URL)")
	pullCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	pullCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	pullCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	url := dbURL
	if url == "" {
		url = cfg.DatabaseURL
	}
	if url == "" {
		return fmt.Errorf("--db-url or DATABASE_URL must be specified")
	}
	schema := schemaName
	if schema == "" {
		schema = cfg.Schema
	}

	intro, err := db.Open(ctx, url, schema)
	if err != nil {
		return err
	}
	defer func() {
		if err := intro.Close(); err != nil {
			out.Warn("failed to close database connection: %v", err)
		}
	}()

	text, err := intro.DDL(ctx, parseTableList(tables))
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}

	if outputFile == "" {
		_, err = fmt.Fprint(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
