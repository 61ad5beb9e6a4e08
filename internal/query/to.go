package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/paramlist"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

const nowExpression = "strftime('%Y-%m-%dT%H:%M:%f', 'now') || 'Z'"

// InsertResult is the compiled shape of an `add` query's assignment.
type InsertResult struct {
	ColumnsAndValues string // `("col1","col2") VALUES (?1,?2)` or `("col1") <SELECT …>`
}

// BuildInsert compiles the `to` record for an `add` query (spec.md §4.4.2).
// It synthesises an id when absent, and renders columns in the model's
// field order for deterministic output.
func BuildInsert(ctx *Context, to map[string]any) (*InsertResult, error) {
	if len(to) == 0 {
		return nil, schema.NewError(schema.ErrInvalidToValue, "`to` must not be empty for add")
	}

	// Sub-query add: "(<cols>) <SELECT …>" — the whole `to` record comes
	// from a single embedded query rather than per-column literals.
	if len(to) == 1 {
		for _, v := range to {
			if sym, ok := v.(*schema.Symbol); ok && sym.IsSubQuery() {
				return buildInsertFromSubQuery(ctx, sym.Query)
			}
		}
	}

	fields := make(map[string]any, len(to)+1)
	for k, v := range to {
		fields[k] = v
	}
	if _, ok := fields["id"]; !ok {
		fields["id"] = symbols.NewRecordID(ctx.Gen, ctx.Model.IDPrefix)
	}

	if ctx.Options.InlineDefaults {
		for i := range ctx.Model.Fields {
			f := &ctx.Model.Fields[i]
			if _, ok := fields[f.Slug]; !ok && f.DefaultValue != nil {
				fields[f.Slug] = f.DefaultValue
			}
		}
	}

	cols, vals, err := renderAssignments(ctx, fields, model.SourceWrite)
	if err != nil {
		return nil, err
	}

	return &InsertResult{
		ColumnsAndValues: fmt.Sprintf("(%s) VALUES (%s)", strings.Join(cols, ","), strings.Join(vals, ",")),
	}, nil
}

func buildInsertFromSubQuery(ctx *Context, sub *schema.Query) (*InsertResult, error) {
	subSQL, _, loaded, err := ctx.Compile(sub, ctx.Models, ctx.Params, ctx.Scope, ctx.Options)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(loaded))
	for _, lf := range loaded {
		if ctx.Model.GetField(lf.MountingPath) == nil {
			return nil, schema.FieldNotFoundError(ctx.Model.Slug, lf.MountingPath)
		}
		cols = append(cols, model.QuoteIdent(lf.MountingPath))
	}
	return &InsertResult{
		ColumnsAndValues: fmt.Sprintf("(%s) %s", strings.Join(cols, ","), subSQL),
	}, nil
}

// renderAssignments renders fields in the model's declared field order
// (system fields first), so output is deterministic regardless of the
// caller-supplied map's iteration order.
func renderAssignments(ctx *Context, fields map[string]any, source model.Source) (cols, vals []string, err error) {
	order := fieldOrder(ctx.Model, fields)
	for _, slug := range order {
		field, selector, rerr := resolveForSource(ctx, slug, source)
		if rerr != nil {
			return nil, nil, rerr
		}
		ph, verr := renderValue(ctx, field, fields[slug])
		if verr != nil {
			return nil, nil, verr
		}
		cols = append(cols, selector)
		vals = append(vals, ph)
	}
	return cols, vals, nil
}

func resolveForSource(ctx *Context, slug string, source model.Source) (*schema.Field, string, error) {
	if source == model.SourceWrite {
		return ctx.resolveWrite(slug)
	}
	return ctx.resolveRead(slug)
}

// fieldOrder returns the keys of fields sorted by their position in
// m.Fields, with any keys absent from m.Fields (an error case the caller
// surfaces via resolveForSource) appended alphabetically at the end.
func fieldOrder(m *schema.Model, fields map[string]any) []string {
	pos := make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		pos[f.Slug] = i
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, oki := pos[keys[i]]
		pj, okj := pos[keys[j]]
		if oki && okj {
			return pi < pj
		}
		if oki != okj {
			return oki
		}
		return keys[i] < keys[j]
	})
	return keys
}

func renderValue(ctx *Context, field *schema.Field, value any) (string, error) {
	if sym, ok := value.(*schema.Symbol); ok {
		switch sym.Kind {
		case schema.SymbolExpression:
			return fmt.Sprintf("(%s)", sym.Expression), nil
		case schema.SymbolQuery:
			subSQL, _, _, err := ctx.Compile(sym.Query, ctx.Models, ctx.Params, ctx.Scope, ctx.Options)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s)", subSQL), nil
		default:
			value = sym.Literal
		}
	}

	if field != nil && field.Type == schema.FieldJSON {
		if ctx.Options.InlineParams {
			return fmt.Sprintf("json(%s)", paramlist.InlineLiteral(value)), nil
		}
		return ctx.Params.AddJSON(value), nil
	}
	return ctx.Params.Add(value), nil
}

// UpdateResult is the compiled `SET …` clause for a `set` query.
type UpdateResult struct {
	SetClause string
}

// BuildUpdate compiles the `to` record for a `set` query, always
// appending the `ronin.updatedAt` touch (spec.md §4.4.2).
func BuildUpdate(ctx *Context, to map[string]any) (*UpdateResult, error) {
	// many-kind link fields are not applied to the row itself.
	rowFields := make(map[string]any, len(to))
	for k, v := range to {
		if f := ctx.Model.GetField(k); f != nil && f.IsManyLink() {
			continue
		}
		rowFields[k] = v
	}

	if len(rowFields) == 0 && len(to) == 0 {
		return nil, schema.NewError(schema.ErrInvalidToValue, "`to` must not be empty for set")
	}

	var assignments []string
	if len(rowFields) > 0 {
		cols, vals, err := renderAssignments(ctx, rowFields, model.SourceWrite)
		if err != nil {
			return nil, err
		}
		for i := range cols {
			assignments = append(assignments, fmt.Sprintf("%s = %s", cols[i], vals[i]))
		}
	}
	assignments = append(assignments, fmt.Sprintf(`"ronin.updatedAt" = (%s)`, nowExpression))

	return &UpdateResult{SetClause: "SET " + strings.Join(assignments, ", ")}, nil
}

// ManyLinkDependencies compiles the dependency statements a kind=many
// link assignment in `to` expands into (spec.md §4.4.2): a bare array
// replaces the whole set, `containing` appends, `notContaining` removes.
func ManyLinkDependencies(ctx *Context, field *schema.Field, recordID any, value any) ([]schema.Statement, error) {
	assocSlug := model.AssociativeModelSlug(ctx.Model.Slug, field.Slug)
	assoc, err := ctx.Models.Get(assocSlug)
	if err != nil {
		return nil, err
	}
	target, err := ctx.Models.Get(field.Target)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case []any:
		var stmts []schema.Statement
		del, err := deleteAllAssociations(ctx, assoc, recordID)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, del)
		for _, item := range v {
			ins, err := insertAssociation(ctx, assoc, target, recordID, item)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, ins)
		}
		return stmts, nil
	case map[string]any:
		if items, ok := v["containing"]; ok {
			list, _ := items.([]any)
			var stmts []schema.Statement
			for _, item := range list {
				ins, err := insertAssociation(ctx, assoc, target, recordID, item)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, ins)
			}
			return stmts, nil
		}
		if items, ok := v["notContaining"]; ok {
			list, _ := items.([]any)
			var stmts []schema.Statement
			for _, item := range list {
				del, err := deleteOneAssociation(ctx, assoc, target, recordID, item)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, del)
			}
			return stmts, nil
		}
		return nil, schema.NewErrorf(schema.ErrInvalidToValue, "Unsupported many-link assignment for field %s", field.Slug)
	default:
		return nil, schema.NewErrorf(schema.ErrInvalidToValue, "Unsupported many-link assignment for field %s", field.Slug)
	}
}

func deleteAllAssociations(ctx *Context, assoc *schema.Model, recordID any) (schema.Statement, error) {
	pb := &paramlist.Builder{Inline: ctx.Options.InlineParams}
	ph := pb.Add(recordID)
	sql := fmt.Sprintf(`DELETE FROM %s WHERE ("source" = %s)`, model.QuoteIdent(assoc.Table), ph)
	return schema.Statement{SQL: sql, Params: pb.Params()}, nil
}

func insertAssociation(ctx *Context, assoc, target *schema.Model, recordID any, item any) (schema.Statement, error) {
	pb := &paramlist.Builder{Inline: ctx.Options.InlineParams}
	sourcePh := pb.Add(recordID)

	var targetExpr string
	if obj, ok := item.(map[string]any); ok {
		subCtx := ctx.withModel(target)
		subCtx.Params = pb
		where, err := BuildWith(subCtx, obj)
		if err != nil {
			return schema.Statement{}, err
		}
		targetExpr = fmt.Sprintf(`(SELECT "id" FROM %s WHERE %s LIMIT 1)`, model.QuoteIdent(target.Table), where)
	} else {
		targetExpr = pb.Add(item)
	}

	idPh := pb.Add(symbols.NewRecordID(ctx.Gen, assoc.IDPrefix))
	nowPh := fmt.Sprintf("(%s)", nowExpression)

	sql := fmt.Sprintf(
		`INSERT INTO %s ("source","target","id","ronin.createdAt","ronin.updatedAt") VALUES (%s,%s,%s,%s,%s)`,
		model.QuoteIdent(assoc.Table), sourcePh, targetExpr, idPh, nowPh, nowPh,
	)
	return schema.Statement{SQL: sql, Params: pb.Params()}, nil
}

func deleteOneAssociation(ctx *Context, assoc, target *schema.Model, recordID any, item any) (schema.Statement, error) {
	pb := &paramlist.Builder{Inline: ctx.Options.InlineParams}
	sourcePh := pb.Add(recordID)

	var targetExpr string
	if obj, ok := item.(map[string]any); ok {
		subCtx := ctx.withModel(target)
		subCtx.Params = pb
		where, err := BuildWith(subCtx, obj)
		if err != nil {
			return schema.Statement{}, err
		}
		targetExpr = fmt.Sprintf(`(SELECT "id" FROM %s WHERE %s LIMIT 1)`, model.QuoteIdent(target.Table), where)
	} else {
		targetExpr = pb.Add(item)
	}

	sql := fmt.Sprintf(
		`DELETE FROM %s WHERE ("source" = %s AND "target" = %s)`,
		model.QuoteIdent(assoc.Table), sourcePh, targetExpr,
	)
	return schema.Statement{SQL: sql, Params: pb.Params()}, nil
}
