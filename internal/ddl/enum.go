package ddl

import (
	"regexp"
	"strings"

	"github.com/tordrt/erdschema/internal/schema"
)

var createEnumRe = regexp.MustCompile(`(?is)\bcreate\s+type\s+(` + identPattern + `)\s+as\s+enum\s*\(`)

// enumSuffixes is the naming convention used to guess enum-typed columns
// whose type was never declared with CREATE TYPE ... AS ENUM
var enumSuffixes = []string{"_enum", "_type", "_status", "_kind"}

// findEnums discovers every CREATE TYPE ... AS ENUM statement in source order
func findEnums(text string) []schema.Enum {
	var enums []schema.Enum
	for _, loc := range createEnumRe.FindAllStringSubmatchIndex(text, -1) {
		body, _, ok := balanced(text, loc[1]-1)
		if !ok {
			continue
		}
		values := quotedLiterals(body)
		if values == nil {
			values = []string{}
		}
		enums = append(enums, schema.Enum{
			Name:   normalizeIdent(text[loc[2]:loc[3]]),
			Values: values,
		})
	}
	return enums
}

// flagEnumColumns marks columns whose base type names a declared enum. When
// the text declares no enums at all, types that look like one by convention
// are flagged too, without an EnumName since there is nothing to point at.
func flagEnumColumns(tables []schema.Table, enums []schema.Enum) {
	guess := len(enums) == 0
	for ti := range tables {
		for ci := range tables[ti].Columns {
			col := &tables[ti].Columns[ci]
			base := baseType(col.Type)
			if base == "" {
				continue
			}

			if name, ok := declaredEnum(base, enums); ok {
				col.IsEnum = true
				col.EnumName = name
				continue
			}
			if guess && hasEnumSuffix(base) {
				col.IsEnum = true
			}
		}
	}
}

func declaredEnum(base string, enums []schema.Enum) (string, bool) {
	for _, e := range enums {
		if strings.EqualFold(e.Name, base) {
			return e.Name, true
		}
	}
	return "", false
}

func hasEnumSuffix(base string) bool {
	lower := strings.ToLower(base)
	for _, suffix := range enumSuffixes {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix) {
			return true
		}
	}
	return false
}
