package query

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

// Projection is the compiled column list for a SELECT plus the ordered
// loadedFields describing how to mount each column's value back into the
// reshaped output record (spec.md §4.4.3).
type Projection struct {
	ColumnsClause string
	Joins         []string
	Loaded        []schema.LoadedField
}

// BuildSelecting compiles the `selecting` + `including` instructions into
// a projection. selecting == nil means "*"; an empty (non-nil) slice still
// means "*", since RONIN queries never request zero columns.
func BuildSelecting(ctx *Context, selecting []string, including map[string]any) (*Projection, error) {
	proj := &Projection{}
	var cols []string

	if len(selecting) == 0 {
		alias := ctx.tableAlias()
		cols = append(cols, alias+"*")
		for i := range ctx.Model.Fields {
			f := &ctx.Model.Fields[i]
			proj.Loaded = append(proj.Loaded, schema.LoadedField{Alias: f.Slug, MountingPath: f.Slug, Field: f})
		}
	} else {
		for _, path := range selecting {
			field, selector, err := ctx.resolveRead(path)
			if err != nil {
				return nil, err
			}
			alias := model.QuoteIdent(path)
			cols = append(cols, fmt.Sprintf("%s as %s", selector, alias))
			proj.Loaded = append(proj.Loaded, schema.LoadedField{Alias: path, MountingPath: path, Field: field})
		}
	}

	if len(including) > 0 {
		keys := sortedKeys(including)
		for _, alias := range keys {
			col, join, loaded, err := buildIncludingEntry(ctx, alias, including[alias])
			if err != nil {
				return nil, err
			}
			if col != "" {
				cols = append(cols, col)
			}
			if join != "" {
				proj.Joins = append(proj.Joins, join)
			}
			proj.Loaded = append(proj.Loaded, loaded...)
		}
	}

	proj.ColumnsClause = strings.Join(cols, ", ")
	return proj, nil
}

// buildIncludingEntry compiles one `including` entry. Scalars and
// expression symbols become a projected column; sub-query symbols become
// a LEFT JOIN, with the mounting path carrying a "[0]" token for many-row
// sub-queries so result reshaping can fold repeated joined rows into an
// array (spec.md §4.4.3).
func buildIncludingEntry(ctx *Context, alias string, value any) (col, join string, loaded []schema.LoadedField, err error) {
	quoted := model.QuoteIdent(alias)

	sym, isSymbol := value.(*schema.Symbol)
	if !isSymbol {
		ph := ctx.Params.Add(value)
		return fmt.Sprintf("%s as %s", ph, quoted), "", []schema.LoadedField{{Alias: alias, MountingPath: alias}}, nil
	}

	switch sym.Kind {
	case schema.SymbolExpression:
		col = fmt.Sprintf("(%s) as %s", sym.Expression, quoted)
		loaded = []schema.LoadedField{{Alias: alias, MountingPath: alias}}
		return col, "", loaded, nil
	case schema.SymbolQuery:
		return buildIncludingSubQuery(ctx, alias, sym.Query)
	default:
		ph := ctx.Params.Add(sym.Literal)
		return fmt.Sprintf("%s as %s", ph, quoted), "", []schema.LoadedField{{Alias: alias, MountingPath: alias}}, nil
	}
}

func buildIncludingSubQuery(ctx *Context, alias string, sub *schema.Query) (col, join string, loaded []schema.LoadedField, err error) {
	subSlug, subInstr, ok := sub.ModelTarget()
	if !ok {
		return "", "", nil, schema.NewErrorf(schema.ErrInvalidWithValue, "Invalid including sub-query for %s", alias)
	}
	if _, merr := ctx.Models.Get(subSlug); merr != nil {
		return "", "", nil, merr
	}

	isSingle := subInstr != nil && subInstr.LimitedTo != nil && *subInstr.LimitedTo == 1

	subSQL, _, subLoaded, cerr := ctx.Compile(sub, ctx.Models, ctx.Params, ctx.Scope, ctx.Options)
	if cerr != nil {
		return "", "", nil, cerr
	}

	rootAlias := ctx.tableAlias()
	if rootAlias == "" {
		rootAlias = model.QuoteIdent(ctx.Model.Table) + "."
	}

	if isSingle {
		joinAlias := "including_" + alias
		join = fmt.Sprintf(`LEFT JOIN (%s) as %s ON %s"id" = %s."id"`, subSQL, model.QuoteIdent(joinAlias), rootAlias, model.QuoteIdent(joinAlias))
		for _, lf := range subLoaded {
			loaded = append(loaded, schema.LoadedField{
				Alias:        model.QuoteIdent(joinAlias) + "." + model.QuoteIdent(lf.Alias),
				MountingPath: alias + "." + lf.MountingPath,
				Field:        lf.Field,
			})
		}
		return "", join, loaded, nil
	}

	// Many-row sub-queries join the child directly against the root table
	// (the FROM clause is not wrapped in a sub-select), with mounting
	// paths carrying "[0]" so reshaping can fold repeated rows.
	joinAlias := fmt.Sprintf("including_%s[0]", alias)
	join = fmt.Sprintf(`LEFT JOIN (%s) as %s ON %s"id" = %s."id"`, subSQL, model.QuoteIdent(joinAlias), rootAlias, model.QuoteIdent(joinAlias))
	for _, lf := range subLoaded {
		loaded = append(loaded, schema.LoadedField{
			Alias:        model.QuoteIdent(joinAlias) + "." + model.QuoteIdent(lf.Alias),
			MountingPath: alias + "[0]." + lf.MountingPath,
			Field:        lf.Field,
		})
	}
	return "", join, loaded, nil
}
