// Package db reads table definitions from live databases and renders them
// as definition text, so imported schemas flow through the same extractor as
// hand-written ones.
package db

import (
	"context"
	"regexp"
	"strings"
)

// Introspector reads a database catalog and renders it as DDL text. An empty
// tables list means every table in the schema.
type Introspector interface {
	DDL(ctx context.Context, tables []string) (string, error)
	Close() error
}

// catalogColumn is one column as reported by the database
type catalogColumn struct {
	Name    string
	Type    string
	NotNull bool
}

// catalogFK is a single-column foreign key; composite keys contribute one
// entry per column pair
type catalogFK struct {
	Column    string
	RefTable  string
	RefColumn string
}

type catalogTable struct {
	Name        string
	Columns     []catalogColumn
	PrimaryKey  []string
	ForeignKeys []catalogFK
}

type catalogEnum struct {
	Name   string
	Values []string
}

// catalog is the database-neutral intermediate form rendered by DDL
type catalog struct {
	Enums   []catalogEnum
	Tables  []catalogTable
	Indexes []string // complete CREATE INDEX statements without the trailing ';'
}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent double-quotes identifiers that would not survive unquoted
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// DDL renders enums first, then tables, then indexes, each statement
// separated by a blank line
func (c *catalog) DDL() string {
	var stmts []string

	for _, e := range c.Enums {
		values := make([]string, len(e.Values))
		for i, v := range e.Values {
			values[i] = quoteLiteral(v)
		}
		stmts = append(stmts, "CREATE TYPE "+quoteIdent(e.Name)+" AS ENUM ("+strings.Join(values, ", ")+");")
	}

	for _, t := range c.Tables {
		var sb strings.Builder
		sb.WriteString("CREATE TABLE " + quoteIdent(t.Name) + " (\n")

		var items []string
		for _, col := range t.Columns {
			item := "    " + quoteIdent(col.Name) + " " + col.Type
			if col.NotNull {
				item += " NOT NULL"
			}
			items = append(items, item)
		}
		if len(t.PrimaryKey) > 0 {
			items = append(items, "    PRIMARY KEY ("+quoteIdents(t.PrimaryKey)+")")
		}
		for _, fk := range t.ForeignKeys {
			items = append(items, "    FOREIGN KEY ("+quoteIdent(fk.Column)+") REFERENCES "+
				quoteIdent(fk.RefTable)+" ("+quoteIdent(fk.RefColumn)+")")
		}

		sb.WriteString(strings.Join(items, ",\n"))
		sb.WriteString("\n);")
		stmts = append(stmts, sb.String())
	}

	for _, idx := range c.Indexes {
		stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(idx), ";")+";")
	}

	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, "\n\n") + "\n"
}

// tableFilter reports whether a table was requested
func tableFilter(tables []string) func(string) bool {
	if len(tables) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}
	return func(name string) bool { return set[name] }
}
