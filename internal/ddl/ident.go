package ddl

import (
	"strings"
)

// identPart matches one bare or quoted identifier segment
const identPart = "(?:\"[^\"]+\"|`[^`]+`|\\[[^\\]]+\\]|[\\w$]+)"

// identPattern matches a possibly schema-qualified identifier
const identPattern = identPart + `(?:\s*\.\s*` + identPart + `)*`

// readIdent reads a possibly quoted, possibly schema-qualified identifier at
// or after from (skipping leading whitespace) and returns its final segment
// with quotes removed. name is empty when no identifier starts there.
func readIdent(text string, from int) (name string, next int) {
	i := skipSpace(text, from)
	for {
		part, end := readIdentPart(text, i)
		if end == i {
			return name, i
		}
		name = part
		i = end

		dot := skipSpace(text, i)
		if dot >= len(text) || text[dot] != '.' {
			return name, i
		}
		i = skipSpace(text, dot+1)
	}
}

func readIdentPart(text string, i int) (string, int) {
	if i >= len(text) {
		return "", i
	}

	var closer byte
	switch text[i] {
	case '"':
		closer = '"'
	case '`':
		closer = '`'
	case '[':
		closer = ']'
	}
	if closer != 0 {
		end := strings.IndexByte(text[i+1:], closer)
		if end < 0 {
			return "", i
		}
		return text[i+1 : i+1+end], i + end + 2
	}

	j := i
	for j < len(text) && isIdentByte(text[j]) {
		j++
	}
	return text[i:j], j
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c >= 0x80
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// normalizeIdent reduces a raw identifier match (as captured by identPattern)
// to its final unquoted segment.
func normalizeIdent(raw string) string {
	name, _ := readIdent(raw, 0)
	return name
}

// identList splits a comma separated identifier list such as "a, \"b\"" into
// normalized names.
func identList(raw string) []string {
	var names []string
	for _, part := range SplitTopLevel(raw) {
		if name := normalizeIdent(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
