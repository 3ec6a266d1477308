package ddl

import (
	"regexp"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

var (
	typeRe = regexp.MustCompile(`(?is)^(` +
		`double\s+precision` +
		`|(?:national\s+)?(?:character|char)\s+varying` +
		`|bit\s+varying` +
		`|(?:timestamp|time)(?:\s*\(\s*\d+\s*\))?\s+with(?:out)?\s+time\s+zone` +
		`|` + identPattern + `(?:\s+varying)?` +
		`)((?:\s*\([^)]*\))?(?:\s*\[\s*\d*\s*\])*(?:\s*\([^)]*\))?)((?:\s+(?:unsigned|zerofill))*)`)

	primaryKeyRe = regexp.MustCompile(`(?i)\bprimary\s+key\b`)
	notNullRe    = regexp.MustCompile(`(?i)\bnot\s+null\b`)

	columnRefRe = regexp.MustCompile(`(?is)\breferences\s+(` + identPattern + `)\s*(?:\(([^)]*)\))?`)
)

// clauseKeywords start a column constraint; a column whose remainder begins
// with one of them declared no type
var clauseKeywords = []string{
	"references", "primary", "not", "null", "default", "constraint", "unique",
	"check", "generated", "collate", "auto_increment", "autoincrement", "identity",
}

// parseColumn reads a column definition item. The returned capture is the
// column-level REFERENCES clause, if any; its from fields are left for the
// caller to fill.
func parseColumn(item string) (schema.Column, *fkCapture, bool) {
	name, next := readIdent(item, 0)
	if name == "" {
		return schema.Column{}, nil, false
	}

	rest := strings.TrimSpace(item[next:])
	masked := maskQuoted(rest)

	col := schema.Column{
		Name: name,
		Type: columnType(rest),
	}
	if primaryKeyRe.MatchString(masked) {
		col.IsPrimaryKey = true
		col.IsNotNull = true
	}
	if notNullRe.MatchString(masked) {
		col.IsNotNull = true
	}

	var ref *fkCapture
	if loc := columnRefRe.FindStringSubmatchIndex(masked); loc != nil {
		m := submatches(rest, loc)
		ref = &fkCapture{toTable: normalizeIdent(m[1])}
		if target := identList(m[2]); len(target) > 0 {
			ref.toColumn = target[0]
		}
	}

	return col, ref, true
}

// columnType extracts the type token from the remainder of a column
// definition, keeping multi-word forms, array markers and size clauses.
func columnType(rest string) string {
	word, _ := readIdentPart(rest, 0)
	if isKeyword(word, clauseKeywords...) {
		return ""
	}

	m := typeRe.FindStringSubmatch(rest)
	if m == nil {
		return ""
	}

	base := collapseSpace(m[1])
	suffix := strings.Join(strings.Fields(m[2]), "")
	modifiers := collapseSpace(m[3])
	if modifiers != "" {
		return base + suffix + " " + modifiers
	}
	return base + suffix
}

// baseType strips array and size suffixes and any schema qualifier from a
// column type, leaving the bare type name.
func baseType(t string) string {
	if i := strings.IndexAny(t, "(["); i >= 0 {
		t = t[:i]
	}
	return normalizeIdent(strings.TrimSpace(t))
}

// maskQuoted blanks the inside of quoted spans, preserving byte offsets, so
// keyword searches do not match inside string literals.
func maskQuoted(s string) string {
	b := []byte(s)
	var quote byte
	for i, c := range b {
		switch {
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			b[i] = ' '
		case c == '\'':
			quote = c
		}
	}
	return string(b)
}

// submatches slices text with the index pairs from FindStringSubmatchIndex
func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
