package db

import (
	"context"
	"fmt"
	"strings"
)

// Open connects to the database named by a URL and returns the matching
// introspector. Supported schemes are postgres://, postgresql://, mysql://
// (followed by a go-sql-driver DSN) and sqlite:// (followed by a file path).
// schemaName selects the PostgreSQL schema or MySQL database; when empty it
// defaults to "public" or the database in the DSN.
func Open(ctx context.Context, url, schemaName string) (Introspector, error) {
	dbType, connStr, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case "postgres":
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return NewPostgresIntrospector(client, schemaName), nil

	case "mysql":
		if schemaName == "" {
			schemaName, err = ParseDatabaseName(connStr)
			if err != nil {
				return nil, fmt.Errorf("failed to determine database name: %w", err)
			}
		}
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return NewMySQLIntrospector(client, schemaName), nil

	default:
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return NewSQLiteIntrospector(client), nil
	}
}

// ParseURL detects the database type and returns the driver connection string
func ParseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}
