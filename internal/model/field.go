package model

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/schema"
)

// Source distinguishes a read selector (json_extract for JSON/blob heads)
// from a write selector (quoted dotted column name), per spec.md §4.2.
type Source int

const (
	SourceRead Source = iota
	SourceWrite
)

// QuoteIdent double-quotes a SQL identifier, escaping embedded quotes.
func QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// GetFieldFromModel resolves path (possibly dotted) against m and returns
// the matched field plus its SQL selector. tableAlias is prefixed to the
// column reference; pass "" for no prefix, or e.g. `"NEW".` /
// `"OLD".` for a trigger's row-scope alias per the FIELD_PARENT_OLD/NEW
// convention (spec.md §4.1).
func GetFieldFromModel(m *schema.Model, path string, source Source, tableAlias string) (*schema.Field, string, error) {
	if path == "" {
		return nil, "", schema.NewError(schema.ErrFieldNotFound, "Field path is empty")
	}

	if dot := strings.IndexByte(path, '.'); dot >= 0 {
		head := path[:dot]
		rest := path[dot+1:]
		if headField := m.GetField(head); headField != nil && headField.IsJSONOrBlob() {
			if source == SourceWrite {
				return headField, tableAlias + QuoteIdent(path), nil
			}
			return headField, fmt.Sprintf("json_extract(%s%s, '$.%s')", tableAlias, QuoteIdent(head), rest), nil
		}
	}

	field := m.GetField(path)
	if field == nil {
		return nil, "", schema.FieldNotFoundError(m.Slug, path)
	}
	return field, tableAlias + QuoteIdent(path), nil
}

// TableAlias derives the column-reference prefix for a model given the
// current compilation scope. scope is one of "" (the model's own table),
// TokenFieldParent, TokenFieldParentOld, or TokenFieldParentNew.
func TableAlias(m *schema.Model, scope string) string {
	switch scope {
	case schema.TokenFieldParentOld:
		return `"OLD".`
	case schema.TokenFieldParentNew:
		return `"NEW".`
	case schema.TokenFieldParent, "":
		return ""
	default:
		return ""
	}
}
