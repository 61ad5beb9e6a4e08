// Package paramlist implements the SQLite numeric parameter builder
// (spec.md §6 "Placeholders use SQLite numeric form ?1, ?2, …"), grounded
// directly on the teacher's store.ParamBuilder / sqliteParamBuilder
// (internal/store/dialect.go) — this module targets only SQLite, so the
// postgres-style "$n" variant the teacher also implements is dropped.
package paramlist

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ronin-co/compiler/internal/schema"
)

// Builder accumulates bound parameters and hands out "?n" placeholders in
// first-use order, or — with Inline set — renders the value directly into
// the returned "placeholder" string instead (spec.md §4.6 inlineParams).
type Builder struct {
	Inline bool
	params []schema.Value
}

// Add appends a value and returns its placeholder (or, inlined, its SQL
// literal text).
func (b *Builder) Add(v schema.Value) string {
	if b.Inline {
		return InlineLiteral(v)
	}
	b.params = append(b.params, v)
	return fmt.Sprintf("?%d", len(b.params))
}

// AddJSON is like Add but wraps the placeholder in json(?n) so SQLite
// recognises the bound string as JSON (spec.md §6), or — inlined —
// renders json('...') directly.
func (b *Builder) AddJSON(v schema.Value) string {
	if b.Inline {
		return fmt.Sprintf("json(%s)", InlineLiteral(v))
	}
	b.params = append(b.params, v)
	return fmt.Sprintf("json(?%d)", len(b.params))
}

func (b *Builder) Params() []schema.Value { return b.params }
func (b *Builder) Count() int             { return len(b.params) }

// InlineLiteral renders v as SQL literal text for inlineParams mode:
// numbers/bools stringified bare, strings single-quoted (with embedded
// quotes escaped), JSON-ish composite values wrapped in json('…').
func InlineLiteral(v schema.Value) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case []byte:
		return "x'" + fmt.Sprintf("%x", t) + "'"
	case map[string]any, []any:
		if raw, err := json.Marshal(t); err == nil {
			return "json('" + strings.ReplaceAll(string(raw), "'", "''") + "')"
		}
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", t), "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", t), "'", "''") + "'"
	}
}
