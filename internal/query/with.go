package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

var refinementKeys = map[string]bool{
	"being": true, "notBeing": true,
	"startingWith": true, "notStartingWith": true,
	"endingWith": true, "notEndingWith": true,
	"containing": true, "notContaining": true,
	"greaterThan": true, "greaterOrEqual": true,
	"lessThan": true, "lessOrEqual": true,
}

// BuildWith compiles a `with` filter tree (spec.md §4.4.1) into a
// parenthesised WHERE fragment. Returns "" if with is empty.
func BuildWith(ctx *Context, with map[string]any) (string, error) {
	if len(with) == 0 {
		return "", nil
	}
	keys := sortedKeys(with)
	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		clause, err := buildFieldEntry(ctx, k, with[k])
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildFieldEntry(ctx *Context, fieldPath string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		_, selector, err := ctx.resolveRead(fieldPath)
		if err != nil {
			return "", err
		}
		return selector + " IS NULL", nil
	case []any:
		alts := make([]string, 0, len(v))
		for _, alt := range v {
			c, err := buildFieldEntry(ctx, fieldPath, alt)
			if err != nil {
				return "", err
			}
			alts = append(alts, c)
		}
		return "(" + strings.Join(alts, " OR ") + ")", nil
	case map[string]any:
		return buildObjectEntry(ctx, fieldPath, v)
	default:
		_, selector, err := ctx.resolveRead(fieldPath)
		if err != nil {
			return "", err
		}
		ph := ctx.Params.Add(v)
		return fmt.Sprintf("%s = %s", selector, ph), nil
	}
}

func isRefinementObject(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for k := range obj {
		if !refinementKeys[k] {
			return false
		}
	}
	return true
}

func buildObjectEntry(ctx *Context, fieldPath string, obj map[string]any) (string, error) {
	field := ctx.Model.GetField(fieldPath)
	_, selector, err := ctx.resolveRead(fieldPath)
	if err != nil {
		return "", err
	}

	if field != nil && field.IsLink() && !isRefinementObject(obj) {
		if v, ok := obj["id"]; ok && len(obj) == 1 {
			ph := ctx.Params.Add(v)
			return fmt.Sprintf("%s = %s", selector, ph), nil
		}
		target, err := ctx.Models.Get(field.Target)
		if err != nil {
			return "", err
		}
		subCtx := ctx.withModel(target)
		subWhere, err := BuildWith(subCtx, obj)
		if err != nil {
			return "", err
		}
		sub := fmt.Sprintf(`SELECT "id" FROM %s WHERE %s`, model.QuoteIdent(target.Table), subWhere)
		return fmt.Sprintf("%s = (%s)", selector, sub), nil
	}

	if !isRefinementObject(obj) {
		return "", schema.NewErrorf(schema.ErrInvalidWithValue, "Invalid filter for field %s", fieldPath)
	}

	keys := sortedKeys(obj)
	clauses := make([]string, 0, len(keys))
	for _, key := range keys {
		c, err := buildRefinement(ctx, selector, key, obj[key])
		if err != nil {
			return "", err
		}
		clauses = append(clauses, c)
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func (c *Context) withModel(m *schema.Model) *Context {
	clone := *c
	clone.Model = m
	return &clone
}

func buildRefinement(ctx *Context, selector, key string, value any) (string, error) {
	switch key {
	case "being":
		if value == nil {
			return selector + " IS NULL", nil
		}
		return fmt.Sprintf("%s = %s", selector, ctx.Params.Add(value)), nil
	case "notBeing":
		if value == nil {
			return selector + " IS NOT NULL", nil
		}
		return fmt.Sprintf("%s != %s", selector, ctx.Params.Add(value)), nil
	case "startingWith":
		return fmt.Sprintf("%s LIKE %s", selector, ctx.Params.Add(appendStr(value, "%"))), nil
	case "notStartingWith":
		return fmt.Sprintf("%s NOT LIKE %s", selector, ctx.Params.Add(appendStr(value, "%"))), nil
	case "endingWith":
		return fmt.Sprintf("%s LIKE %s", selector, ctx.Params.Add(prependStr("%", value))), nil
	case "notEndingWith":
		return fmt.Sprintf("%s NOT LIKE %s", selector, ctx.Params.Add(prependStr("%", value))), nil
	case "containing":
		return fmt.Sprintf("%s LIKE %s", selector, ctx.Params.Add(wrapStr("%", value))), nil
	case "notContaining":
		return fmt.Sprintf("%s NOT LIKE %s", selector, ctx.Params.Add(wrapStr("%", value))), nil
	case "greaterThan":
		return fmt.Sprintf("%s > %s", selector, ctx.Params.Add(value)), nil
	case "greaterOrEqual":
		return fmt.Sprintf("%s >= %s", selector, ctx.Params.Add(value)), nil
	case "lessThan":
		return fmt.Sprintf("%s < %s", selector, ctx.Params.Add(value)), nil
	case "lessOrEqual":
		return fmt.Sprintf("%s <= %s", selector, ctx.Params.Add(value)), nil
	default:
		return "", schema.NewErrorf(schema.ErrInvalidWithValue, "Unknown filter operator: %s", key)
	}
}

func appendStr(v any, suffix string) string { return fmt.Sprintf("%v%s", v, suffix) }
func prependStr(prefix string, v any) string { return fmt.Sprintf("%s%v", prefix, v) }
func wrapStr(wrap string, v any) string      { return fmt.Sprintf("%s%v%s", wrap, v, wrap) }
