package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// ParseDatabaseName returns the database named in a MySQL DSN
func ParseDatabaseName(connString string) (string, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in MySQL DSN")
	}
	return cfg.DBName, nil
}

// MySQLIntrospector renders one MySQL database as DDL. Inline enum columns
// become standalone enum types named <table>_<column>_enum.
type MySQLIntrospector struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLIntrospector creates a new MySQL introspector
func NewMySQLIntrospector(client *MySQLClient, schemaName string) *MySQLIntrospector {
	return &MySQLIntrospector{
		client:     client,
		schemaName: schemaName,
	}
}

// Close closes the underlying connection
func (e *MySQLIntrospector) Close() error {
	return e.client.Close()
}

// DDL reads tables, keys and secondary indexes of the database
func (e *MySQLIntrospector) DDL(ctx context.Context, tables []string) (string, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return "", fmt.Errorf("failed to get table names: %w", err)
	}

	c := &catalog{}
	for _, tableName := range tableNames {
		table, enums, err := e.extractTable(ctx, tableName)
		if err != nil {
			return "", fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		c.Tables = append(c.Tables, *table)
		c.Enums = append(c.Enums, enums...)

		indexes, err := e.extractIndexes(ctx, tableName)
		if err != nil {
			return "", fmt.Errorf("failed to extract indexes of %s: %w", tableName, err)
		}
		c.Indexes = append(c.Indexes, indexes...)
	}

	return c.DDL(), nil
}

// getTableNames returns the list of tables to extract
func (e *MySQLIntrospector) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
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

func (e *MySQLIntrospector) extractTable(ctx context.Context, tableName string) (*catalogTable, []catalogEnum, error) {
	table := &catalogTable{Name: tableName}

	columns, enums, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	table.PrimaryKey = pk

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	table.ForeignKeys = fks

	return table, enums, nil
}

// extractColumns reads columns in ordinal order. Enum columns are retyped to
// a generated enum name which is returned alongside.
func (e *MySQLIntrospector) extractColumns(ctx context.Context, tableName string) ([]catalogColumn, []catalogEnum, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.data_type
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []catalogColumn
	var enums []catalogEnum
	for rows.Next() {
		var col catalogColumn
		var nullable, dataType string

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &dataType); err != nil {
			return nil, nil, err
		}
		col.NotNull = nullable == "NO"

		if dataType == "enum" {
			values, err := parseEnumValues(col.Type)
			if err != nil {
				return nil, nil, err
			}
			name := tableName + "_" + col.Name + "_enum"
			enums = append(enums, catalogEnum{Name: name, Values: values})
			col.Type = name
		}

		columns = append(columns, col)
	}

	return columns, enums, rows.Err()
}

// parseEnumValues parses enum values from the column type string.
// MySQL stores enum types as "enum('value1','value2','value3')" with quotes
// inside values doubled.
func parseEnumValues(columnType string) ([]string, error) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if !strings.HasPrefix(strings.ToLower(columnType), "enum(") || end <= start {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	list := columnType[start+1 : end]
	var values []string
	for i := 0; i < len(list); i++ {
		if list[i] != '\'' {
			continue
		}
		var sb strings.Builder
		for i++; i < len(list); i++ {
			if list[i] == '\'' {
				if i+1 < len(list) && list[i+1] == '\'' {
					sb.WriteByte('\'')
					i++
					continue
				}
				break
			}
			sb.WriteByte(list[i])
		}
		values = append(values, sb.String())
	}

	return values, nil
}

// extractPrimaryKey extracts primary key columns
func (e *MySQLIntrospector) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
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
func (e *MySQLIntrospector) extractForeignKeys(ctx context.Context, tableName string) ([]catalogFK, error) {
	query := `
		SELECT
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
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

// extractIndexes renders the secondary indexes of a table as CREATE INDEX
// statements
func (e *MySQLIntrospector) extractIndexes(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT
			s.index_name,
			s.non_unique = 0 AS is_unique,
			MAX(s.index_type) AS index_type,
			GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index) AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name != 'PRIMARY'
		GROUP BY s.index_name, s.non_unique
		ORDER BY s.index_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var name, indexType, columnNames string
		var isUnique int

		if err := rows.Scan(&name, &isUnique, &indexType, &columnNames); err != nil {
			return nil, err
		}

		unique := ""
		if isUnique == 1 {
			unique = "UNIQUE "
		}
		defs = append(defs, fmt.Sprintf("CREATE %sINDEX %s ON %s USING %s (%s)",
			unique, quoteIdent(name), quoteIdent(tableName), strings.ToLower(indexType),
			quoteIdents(strings.Split(columnNames, ","))))
	}

	return defs, rows.Err()
}
