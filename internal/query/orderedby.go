package query

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/schema"
)

// BuildOrderedBy compiles the `orderedBy` instruction into an ORDER BY
// clause (spec.md §4.4.4). Items that do not resolve to a model field are
// treated as raw expressions and emitted verbatim, bypassing COLLATE NOCASE.
func BuildOrderedBy(ctx *Context, ob schema.OrderedBy) (string, error) {
	var parts []string
	for _, item := range ob.Ascending {
		expr, err := orderExpr(ctx, item)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr+" ASC")
	}
	for _, item := range ob.Descending {
		expr, err := orderExpr(ctx, item)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr+" DESC")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

func orderExpr(ctx *Context, item string) (string, error) {
	field := ctx.Model.GetField(item)
	if field == nil {
		return item, nil
	}
	_, selector, err := ctx.resolveRead(item)
	if err != nil {
		return "", err
	}
	if field.Type == schema.FieldString {
		return fmt.Sprintf("%s COLLATE NOCASE", selector), nil
	}
	return selector, nil
}

// HasCreatedAtTieBreak reports whether orderedBy already orders by
// ronin.createdAt in either direction.
func HasCreatedAtTieBreak(ob schema.OrderedBy) bool {
	for _, f := range ob.Ascending {
		if f == "ronin.createdAt" {
			return true
		}
	}
	for _, f := range ob.Descending {
		if f == "ronin.createdAt" {
			return true
		}
	}
	return false
}

// WithCreatedAtTieBreak returns ob with a descending ronin.createdAt
// tie-breaker appended, unless one is already present.
func WithCreatedAtTieBreak(ob schema.OrderedBy) schema.OrderedBy {
	if HasCreatedAtTieBreak(ob) {
		return ob
	}
	out := ob
	out.Descending = append(append([]string{}, ob.Descending...), "ronin.createdAt")
	return out
}
