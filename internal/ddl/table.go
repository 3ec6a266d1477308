package ddl

import (
	"regexp"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

var (
	createTableRe = regexp.MustCompile(`(?i)\bcreate\s+(?:or\s+replace\s+)?(?:(?:global|local)\s+)?(?:(?:temp|temporary|unlogged)\s+)?table\s+(?:if\s+not\s+exists\s+)?`)

	tableFKRe = regexp.MustCompile(`(?is)^(?:constraint\s+` + identPattern + `\s+)?foreign\s+key\s*\(([^)]*)\)\s*references\s+(` + identPattern + `)\s*(?:\(([^)]*)\))?`)

	tablePKRe = regexp.MustCompile(`(?is)^(?:constraint\s+` + identPattern + `\s+)?primary\s+key\s*\(([^)]*)\)`)

	noiseRe = regexp.MustCompile(`(?i)^(?:constraint|primary\s+key|unique|check|foreign\s+key|exclude|like|period\s+for)\b`)

	inlineIndexRe = regexp.MustCompile(`(?i)^(?:(?:fulltext|spatial)\s+)?(?:key|index)\s*(?:` + identPattern + `\s*)?(?:using\s+\w+\s*)?\(([^)]*)\)`)

	sizeArgsRe = regexp.MustCompile(`^[\d\s,]*$`)
)

// fkCapture is a foreign key reference discovered inside a table body. Target
// column is empty when the clause omitted it.
type fkCapture struct {
	fromTable  string
	fromColumn string
	toTable    string
	toColumn   string
}

// tableBlock is one CREATE TABLE statement with its raw body
type tableBlock struct {
	name string
	body string
}

// findTableBlocks locates every CREATE TABLE statement and reads its body
// using the quote-aware depth counter. Statements without a closing
// parenthesis are skipped.
func findTableBlocks(text string) []tableBlock {
	var blocks []tableBlock
	for _, loc := range createTableRe.FindAllStringIndex(text, -1) {
		name, after := readIdent(text, loc[1])
		if name == "" {
			continue
		}

		open := nextOpenParen(text, after)
		if open < 0 {
			continue
		}

		body, _, ok := balanced(text, open)
		if !ok {
			continue
		}
		blocks = append(blocks, tableBlock{name: name, body: body})
	}
	return blocks
}

// parseTable classifies each top-level item of a table body and returns the
// table plus any foreign key references found in it, in item order.
func parseTable(block tableBlock) (schema.Table, []fkCapture) {
	table := schema.Table{Name: block.name, Columns: []schema.Column{}}
	var fks []fkCapture
	var tablePK []string

	for _, item := range SplitTopLevel(block.body) {
		if m := tableFKRe.FindStringSubmatch(item); m != nil {
			local := identList(m[1])
			if len(local) == 0 {
				continue
			}
			fk := fkCapture{
				fromTable:  table.Name,
				fromColumn: local[0],
				toTable:    normalizeIdent(m[2]),
			}
			if target := identList(m[3]); len(target) > 0 {
				fk.toColumn = target[0]
			}
			fks = append(fks, fk)
			continue
		}

		if noiseRe.MatchString(item) || isInlineIndex(item) {
			if m := tablePKRe.FindStringSubmatch(item); m != nil {
				tablePK = append(tablePK, identList(m[1])...)
			}
			continue
		}

		col, ref, ok := parseColumn(item)
		if !ok {
			continue
		}
		table.Columns = append(table.Columns, col)
		if ref != nil {
			ref.fromTable = table.Name
			ref.fromColumn = col.Name
			fks = append(fks, *ref)
		}
	}

	for _, name := range tablePK {
		if col := table.Column(name); col != nil {
			col.IsPrimaryKey = true
			col.IsNotNull = true
		}
	}

	return table, fks
}

// isInlineIndex recognises MySQL `KEY name (cols)` clauses. A column named key
// with a sized type (`key varchar(64)`) has only digits inside the parentheses.
func isInlineIndex(item string) bool {
	m := inlineIndexRe.FindStringSubmatch(item)
	return m != nil && !sizeArgsRe.MatchString(m[1])
}

// isKeyword reports whether word (case-insensitive) is one of the keywords
func isKeyword(word string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.EqualFold(word, k) {
			return true
		}
	}
	return false
}
