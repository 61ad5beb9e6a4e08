package ddl

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// Compiler recursively compiles one DML query into SQL text, in the given
// scope ("" | FIELD_PARENT_OLD | FIELD_PARENT_NEW), and is injected by the
// caller (internal/compose, via the root package) to avoid ddl importing
// compose directly.
type Compiler func(q *schema.Query, models *model.Set, scope string, opts schema.Options) (string, []schema.Statement, error)

// CreateTriggerStatement renders the full `CREATE TRIGGER ... BEGIN ... END`
// (spec.md §4.3, §97's FOR EACH ROW / WHEN rule). tr.Fields (an UPDATE-only
// column-change guard) requires Action == "UPDATE", else INVALID_MODEL_VALUE.
func CreateTriggerStatement(all *model.Set, m *schema.Model, tr *schema.Trigger, compile Compiler, opts schema.Options) (schema.Statement, error) {
	if len(tr.Fields) > 0 && tr.Action != "UPDATE" {
		return schema.Statement{}, schema.NewErrorf(schema.ErrInvalidModelValue, "Trigger %s: `fields` requires action=UPDATE", tr.Slug)
	}

	scope := schema.TokenFieldParentNew
	if tr.Action == "DELETE" {
		scope = schema.TokenFieldParentOld
	}

	var body []string
	var deps []schema.Statement
	for _, effect := range tr.Effects {
		sql, effectDeps, err := compile(effect, all, scope, opts)
		if err != nil {
			return schema.Statement{}, err
		}
		body = append(body, sql+";")
		deps = append(deps, effectDeps...)
	}

	name := symbols.SnakeCase(m.Slug + "_" + tr.Slug)
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TRIGGER %s %s %s ON %s FOR EACH ROW", model.QuoteIdent(name), tr.When, tr.Action, model.QuoteIdent(m.Table))

	if when := whenClause(tr, scope); when != "" {
		fmt.Fprintf(&b, " WHEN %s", when)
	}
	fmt.Fprintf(&b, " BEGIN %s END", strings.Join(body, " "))

	return schema.Statement{SQL: b.String(), Params: flattenParams(deps)}, nil
}

// whenClause builds the column-change guard for an UPDATE trigger with a
// `fields` list: one `OLD."f" IS NOT NEW."f"` test per field, OR-ed
// together. The trigger's `filter` is not rendered; a trigger without
// `fields` gets no WHEN clause.
func whenClause(tr *schema.Trigger, scope string) string {
	var parts []string
	for _, f := range tr.Fields {
		old := fmt.Sprintf(`OLD.%s`, model.QuoteIdent(f))
		new_ := fmt.Sprintf(`NEW.%s`, model.QuoteIdent(f))
		parts = append(parts, fmt.Sprintf("%s IS NOT %s", old, new_))
	}
	joined := strings.Join(parts, " OR ")
	if joined == "" {
		return ""
	}
	return "(" + joined + ")"
}

// DropTriggerStatement renders `DROP TRIGGER "<snake>"`.
func DropTriggerStatement(m *schema.Model, tr *schema.Trigger) schema.Statement {
	name := symbols.SnakeCase(m.Slug + "_" + tr.Slug)
	return schema.Statement{SQL: fmt.Sprintf(`DROP TRIGGER %s`, model.QuoteIdent(name))}
}

func flattenParams(stmts []schema.Statement) []schema.Value {
	var out []schema.Value
	for _, s := range stmts {
		out = append(out, s.Params...)
	}
	return out
}
