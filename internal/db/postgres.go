package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// PostgresIntrospector renders one PostgreSQL schema as DDL
type PostgresIntrospector struct {
	client *PostgresClient
	schema string
}

// NewPostgresIntrospector creates an introspector for schemaName. An empty
// name means "public".
func NewPostgresIntrospector(client *PostgresClient, schemaName string) *PostgresIntrospector {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresIntrospector{client: client, schema: schemaName}
}

// Close closes the underlying connection
func (e *PostgresIntrospector) Close() error {
	return e.client.Close(context.Background())
}

// DDL reads enums, tables and secondary indexes of the schema
func (e *PostgresIntrospector) DDL(ctx context.Context, tables []string) (string, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return "", fmt.Errorf("failed to get table names: %w", err)
	}

	enums, err := e.extractEnums(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract enums: %w", err)
	}

	c := &catalog{Enums: enums}
	for _, name := range tableNames {
		table, err := e.extractTable(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		c.Tables = append(c.Tables, *table)
	}

	c.Indexes, err = e.extractIndexes(ctx, tableFilter(tableNames))
	if err != nil {
		return "", fmt.Errorf("failed to extract indexes: %w", err)
	}

	return c.DDL(), nil
}

// getTableNames returns the list of tables to extract
func (e *PostgresIntrospector) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (e *PostgresIntrospector) extractTable(ctx context.Context, tableName string) (*catalogTable, error) {
	table := &catalogTable{Name: tableName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	table.PrimaryKey = pk

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	table.ForeignKeys = fks

	return table, nil
}

// extractColumns reads columns in ordinal order with PostgreSQL type names
func (e *PostgresIntrospector) extractColumns(ctx context.Context, tableName string) ([]catalogColumn, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.udt_name,
			c.character_maximum_length
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []catalogColumn
	for rows.Next() {
		var col catalogColumn
		var dataType, nullable, udtName string
		var charMaxLength *int

		if err := rows.Scan(&col.Name, &dataType, &nullable, &udtName, &charMaxLength); err != nil {
			return nil, err
		}

		col.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		col.NotNull = nullable == "NO"
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractEnums reads every enum type of the schema with labels in sort order
func (e *PostgresIntrospector) extractEnums(ctx context.Context) ([]catalogEnum, error) {
	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []catalogEnum
	for rows.Next() {
		var typName, enumLabel string
		if err := rows.Scan(&typName, &enumLabel); err != nil {
			return nil, err
		}
		if n := len(enums); n == 0 || enums[n-1].Name != typName {
			enums = append(enums, catalogEnum{Name: typName})
		}
		last := &enums[len(enums)-1]
		last.Values = append(last.Values, enumLabel)
	}

	return enums, rows.Err()
}

// extractPrimaryKey extracts primary key columns
func (e *PostgresIntrospector) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}

// extractForeignKeys extracts foreign key column pairs
func (e *PostgresIntrospector) extractForeignKeys(ctx context.Context, tableName string) ([]catalogFK, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []catalogFK
	for rows.Next() {
		var fk catalogFK
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}

// extractIndexes returns index definitions, skipping the indexes that back
// primary keys since the table body already carries them.
func (e *PostgresIntrospector) extractIndexes(ctx context.Context, include func(string) bool) ([]string, error) {
	query := `
		SELECT i.tablename, i.indexdef
		FROM pg_indexes i
		WHERE i.schemaname = $1
			AND NOT EXISTS (
				SELECT 1 FROM pg_constraint c
				JOIN pg_class ic ON ic.oid = c.conindid
				WHERE ic.relname = i.indexname
					AND c.contype = 'p'
			)
		ORDER BY i.tablename, i.indexname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var tableName, def string
		if err := rows.Scan(&tableName, &def); err != nil {
			return nil, err
		}
		if include(tableName) {
			defs = append(defs, def)
		}
	}

	return defs, rows.Err()
}

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return "varchar"
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		// udt_name has underscore prefix for arrays (e.g., "_text" for text[], "_int4" for integer[])
		if len(udtName) > 0 && udtName[0] == '_' {
			return normalizeUdtName(udtName[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

// normalizeUdtName converts PostgreSQL internal type names to more readable forms
func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udtName
	}
}
