package query

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/cursor"
	"github.com/ronin-co/compiler/internal/schema"
)

// combinedOrder concatenates ascending then descending field slugs, the
// order the cursor was encoded against (spec.md §4.4.5).
func combinedOrder(ob schema.OrderedBy) []string {
	out := make([]string, 0, len(ob.Ascending)+len(ob.Descending))
	out = append(out, ob.Ascending...)
	out = append(out, ob.Descending...)
	return out
}

func isAscending(ob schema.OrderedBy, slug string) bool {
	for _, f := range ob.Ascending {
		if f == slug {
			return true
		}
	}
	return false
}

// BuildCursorPredicate compiles the `before`/`after` pagination predicate
// (spec.md §4.4.5): a disjunction over the ordered field prefix, decoded
// from the opaque cursor token. isSingleRecord flags a single-record query,
// on which before/after are rejected outright.
func BuildCursorPredicate(ctx *Context, ob schema.OrderedBy, before, after *string, isSingleRecord bool) (string, error) {
	if before != nil && after != nil {
		return "", schema.NewError(schema.ErrMutuallyExclusiveInstructions, "`before` and `after` cannot both be set")
	}
	if before == nil && after == nil {
		return "", nil
	}
	if isSingleRecord {
		return "", schema.NewError(schema.ErrInvalidBeforeOrAfterInstruction, "`before`/`after` is not valid on a single-record query")
	}

	fields := combinedOrder(ob)
	if len(fields) == 0 {
		return "", schema.NewError(schema.ErrMissingInstruction, "`orderedBy` is required when `before`/`after` is set")
	}

	isBefore := before != nil
	token := after
	if isBefore {
		token = before
	}

	types := make([]schema.FieldType, 0, len(fields))
	for _, slug := range fields {
		f := ctx.Model.GetField(slug)
		if f == nil {
			return "", schema.FieldNotFoundError(ctx.Model.Slug, slug)
		}
		types = append(types, f.Type)
	}

	values, err := cursor.Decode(*token, types)
	if err != nil {
		return "", err
	}

	var disjuncts []string
	for i, slug := range fields {
		field := ctx.Model.GetField(slug)
		_, selector, err := ctx.resolveRead(slug)
		if err != nil {
			return "", err
		}

		ascending := isAscending(ob, slug)
		op := ">"
		switch {
		case ascending && !isBefore:
			op = ">"
		case ascending && isBefore:
			op = "<"
		case !ascending && !isBefore:
			op = "<"
		case !ascending && isBefore:
			op = ">"
		}

		v := values[i]
		var last string
		if v == nil {
			switch op {
			case "<":
				continue // nothing sorts below NULL; this alternative is vacuous.
			case ">":
				last = selector + " IS NOT NULL"
			}
		} else {
			colExpr := selector
			nullable := !field.Required && slug != "ronin.createdAt" && slug != "ronin.updatedAt"
			if op == "<" && nullable {
				colExpr = fmt.Sprintf("IFNULL(%s, -1e999)", selector)
			}
			last = fmt.Sprintf("%s %s %s", colExpr, op, ctx.Params.Add(v))
		}

		var prefix []string
		for j := 0; j < i; j++ {
			pSlug := fields[j]
			_, pSelector, err := ctx.resolveRead(pSlug)
			if err != nil {
				return "", err
			}
			if values[j] == nil {
				prefix = append(prefix, pSelector+" IS NULL")
			} else {
				prefix = append(prefix, fmt.Sprintf("%s = %s", pSelector, ctx.Params.Add(values[j])))
			}
		}
		prefix = append(prefix, last)
		disjuncts = append(disjuncts, "("+strings.Join(prefix, " AND ")+")")
	}

	if len(disjuncts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(disjuncts, " OR ") + ")", nil
}
