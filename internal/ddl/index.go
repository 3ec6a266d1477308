package ddl

import (
	"regexp"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

var (
	createIndexRe = regexp.MustCompile(`(?is)\bcreate\s+(unique\s+)?index\s+(?:concurrently\s+)?(?:if\s+not\s+exists\s+)?(` + identPattern + `)\s+on\s+(?:only\s+)?(` + identPattern + `)\s*(?:using\s+(\w+)\s*)?\(`)

	includeRe = regexp.MustCompile(`(?i)^\s*include\s*\(`)
	withRe    = regexp.MustCompile(`(?i)^\s*with\s*\(`)
	tablespRe = regexp.MustCompile(`(?i)^\s*tablespace\s+` + identPattern)
	whereRe   = regexp.MustCompile(`(?i)^\s*where\b`)
)

// findIndexes discovers every CREATE INDEX statement in source order. The
// owning table name is recorded but not yet checked against known tables.
func findIndexes(text string) []schema.Index {
	var indexes []schema.Index
	for _, loc := range createIndexRe.FindAllStringSubmatchIndex(text, -1) {
		m := submatches(text, loc)

		expr, next, ok := balanced(text, loc[1]-1)
		if !ok {
			continue
		}

		idx := schema.Index{
			Name:       normalizeIdent(m[2]),
			Table:      normalizeIdent(m[3]),
			Unique:     m[1] != "",
			Method:     strings.ToLower(m[4]),
			Expression: collapseSpace(expr),
		}

		rest := statementTail(text[next:])
		if l := includeRe.FindStringIndex(rest); l != nil {
			include, after, ok := balanced(rest, l[1]-1)
			if ok {
				idx.Include = collapseSpace(include)
				rest = rest[after:]
			}
		}
		if l := withRe.FindStringIndex(rest); l != nil {
			if _, after, ok := balanced(rest, l[1]-1); ok {
				rest = rest[after:]
			}
		}
		if l := tablespRe.FindStringIndex(rest); l != nil {
			rest = rest[l[1]:]
		}
		if l := whereRe.FindStringIndex(rest); l != nil {
			idx.Predicate = predicate(rest[l[1]:])
		}

		indexes = append(indexes, idx)
	}
	return indexes
}

// statementTail cuts text at the first statement terminator outside quotes
// and parentheses.
func statementTail(text string) string {
	var s depthScanner
	for i := 0; i < len(text); i++ {
		if s.step(text[i]) && text[i] == ';' && s.depth == 0 {
			return text[:i]
		}
	}
	return text
}

// predicate returns a WHERE clause body, unwrapping one pair of enclosing
// parentheses when they span the whole clause.
func predicate(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") {
		if body, next, ok := balanced(text, 0); ok && strings.TrimSpace(text[next:]) == "" {
			text = body
		}
	}
	return collapseSpace(text)
}

// attachIndexes appends each index to the table it names, dropping indexes on
// tables that were not extracted.
func attachIndexes(tables []schema.Table, indexes []schema.Index) {
	byName := make(map[string]int, len(tables))
	for i, t := range tables {
		byName[t.Name] = i
	}

	for _, idx := range indexes {
		if i, ok := byName[idx.Table]; ok {
			tables[i].Indexes = append(tables[i].Indexes, idx)
		}
	}
}
