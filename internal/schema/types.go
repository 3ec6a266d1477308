package schema

import "fmt"

// EnumNodePrefix prefixes enum names to form their diagram node IDs
const EnumNodePrefix = "enum:"

// DefaultTargetColumn is used when a foreign key omits its target column and
// the target table declares no primary key
const DefaultTargetColumn = "id"

// Graph represents a complete extracted schema
type Graph struct {
	Tables    []Table    `json:"tables"`
	Enums     []Enum     `json:"enums"`
	Relations []Relation `json:"relations"`
}

// Table represents a table definition
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes,omitempty"`
}

// ColumnRef points at a column of another table
type ColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Column represents a table column
type Column struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	IsPrimaryKey bool       `json:"isPrimaryKey"`
	IsNotNull    bool       `json:"isNotNull"`
	IsForeignKey bool       `json:"isForeignKey"`
	IsEnum       bool       `json:"isEnum"`
	FKTarget     *ColumnRef `json:"fkTarget,omitempty"`
	EnumName     string     `json:"enumName,omitempty"`
}

// Index represents a CREATE INDEX statement attached to its table
type Index struct {
	Name       string `json:"name"`
	Table      string `json:"table"`
	Unique     bool   `json:"unique"`
	Method     string `json:"method,omitempty"`
	Expression string `json:"expression"`
	Include    string `json:"include,omitempty"`
	Predicate  string `json:"predicate,omitempty"`
}

// Enum represents a CREATE TYPE ... AS ENUM statement
type Enum struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Relation represents a foreign key relationship between two tables
type Relation struct {
	FromTable  string `json:"fromTable"`
	FromColumn string `json:"fromColumn"`
	ToTable    string `json:"toTable"`
	ToColumn   string `json:"toColumn"`
}

// ID returns the synthetic relation identifier
func (r Relation) ID() string {
	return fmt.Sprintf("%s.%s->%s.%s", r.FromTable, r.FromColumn, r.ToTable, r.ToColumn)
}

// Table returns the table with the given name, or nil
func (g *Graph) Table(name string) *Table {
	for i := range g.Tables {
		if g.Tables[i].Name == name {
			return &g.Tables[i]
		}
	}
	return nil
}

// Enum returns the enum with the given name, or nil
func (g *Graph) Enum(name string) *Enum {
	for i := range g.Enums {
		if g.Enums[i].Name == name {
			return &g.Enums[i]
		}
	}
	return nil
}

// Column returns the column with the given name, or nil
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// PrimaryKey returns the names of the primary key columns in declaration order
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			pk = append(pk, col.Name)
		}
	}
	return pk
}

// EnumNodeID returns the diagram node ID of an enum
func EnumNodeID(name string) string {
	return EnumNodePrefix + name
}
