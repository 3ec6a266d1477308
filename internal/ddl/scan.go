package ddl

import "strings"

// StripComments removes `-- line` and `/* block */` comments outside of quoted
// spans. Line comments keep their terminating newline and block comments are
// replaced by a single space so that tokens on either side stay separated.
func StripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			b.WriteByte(' ')
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// depthScanner tracks parenthesis depth while ignoring anything inside single
// or double quoted spans. Doubled quotes ('') toggle twice and need no special
// casing.
type depthScanner struct {
	depth int
	quote byte
}

// step feeds one byte and reports whether it was structural (outside quotes)
func (s *depthScanner) step(c byte) bool {
	if s.quote != 0 {
		if c == s.quote {
			s.quote = 0
		}
		return false
	}
	switch c {
	case '\'', '"':
		s.quote = c
		return false
	case '(':
		s.depth++
	case ')':
		s.depth--
	}
	return true
}

// balanced reads the parenthesized span opening at text[open] and returns the
// text between the parentheses along with the index just past the closing
// one. ok is false when the span never closes.
func balanced(text string, open int) (body string, next int, ok bool) {
	if open < 0 || open >= len(text) || text[open] != '(' {
		return "", open, false
	}

	var s depthScanner
	for i := open; i < len(text); i++ {
		if s.step(text[i]) && s.depth == 0 {
			return text[open+1 : i], i + 1, true
		}
	}
	return "", len(text), false
}

// SplitTopLevel splits a definition body on commas that sit at parenthesis
// depth zero and outside quotes. Items are trimmed; empty items are dropped.
func SplitTopLevel(body string) []string {
	var items []string
	var s depthScanner

	start := 0
	for i := 0; i < len(body); i++ {
		if s.step(body[i]) && body[i] == ',' && s.depth == 0 {
			items = appendItem(items, body[start:i])
			start = i + 1
		}
	}
	return appendItem(items, body[start:])
}

func appendItem(items []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return items
	}
	return append(items, item)
}

// nextOpenParen finds the first '(' at or after from, giving up when a
// statement terminator comes first.
func nextOpenParen(text string, from int) int {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '(':
			return i
		case ';':
			return -1
		}
	}
	return -1
}

// quotedLiterals returns every single-quoted literal in text, decoding the
// doubled-quote escape ('' -> ').
func quotedLiterals(text string) []string {
	var values []string
	for i := 0; i < len(text); i++ {
		if text[i] != '\'' {
			continue
		}

		var b strings.Builder
		closed := false
		j := i + 1
		for ; j < len(text); j++ {
			if text[j] != '\'' {
				b.WriteByte(text[j])
				continue
			}
			if j+1 < len(text) && text[j+1] == '\'' {
				b.WriteByte('\'')
				j++
				continue
			}
			closed = true
			break
		}
		if !closed {
			return values
		}
		values = append(values, b.String())
		i = j
	}
	return values
}

// collapseSpace folds whitespace runs into single spaces
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
