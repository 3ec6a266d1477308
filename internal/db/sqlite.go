package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// SQLiteIntrospector returns the stored CREATE statements of a SQLite
// database. SQLite keeps the original definition text, so nothing has to be
// rendered.
type SQLiteIntrospector struct {
	client *SQLiteClient
}

// NewSQLiteIntrospector creates a new SQLite introspector
func NewSQLiteIntrospector(client *SQLiteClient) *SQLiteIntrospector {
	return &SQLiteIntrospector{client: client}
}

// Close closes the underlying connection
func (e *SQLiteIntrospector) Close() error {
	return e.client.Close()
}

// DDL returns table statements in creation order followed by index
// statements. Internal sqlite_ tables and automatic indexes are skipped.
func (e *SQLiteIntrospector) DDL(ctx context.Context, tables []string) (string, error) {
	query := `
		SELECT type, tbl_name, sql
		FROM sqlite_master
		WHERE type IN ('table', 'index')
			AND sql IS NOT NULL
			AND name NOT LIKE 'sqlite_%'
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, rowid
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to read sqlite_master: %w", err)
	}
	defer rows.Close()

	include := tableFilter(tables)
	var stmts []string
	for rows.Next() {
		var kind, tableName, stmt string
		if err := rows.Scan(&kind, &tableName, &stmt); err != nil {
			return "", fmt.Errorf("failed to scan sqlite_master: %w", err)
		}
		if include(tableName) {
			stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(stmt), ";")+";")
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read sqlite_master: %w", err)
	}

	if len(stmts) == 0 {
		return "", nil
	}
	return strings.Join(stmts, "\n\n") + "\n", nil
}
