// Package compose implements the statement composer and DDL-to-DML
// orchestration (spec.md §4.5, C5): verb selection, clause assembly in
// the fixed `<verb> <columns> FROM <table> [joins] [SET] [VALUES] [WHERE]
// [ORDER BY] [LIMIT] [RETURNING]` order, and the create/alter/drop
// lowering hook into internal/ddl.
package compose

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/ddl"
	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/paramlist"
	"github.com/ronin-co/compiler/internal/query"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// Result is what Compose hands back for one input query.
type Result struct {
	// Dependencies run before Main: CREATE TABLE/INDEX/TRIGGER statements
	// from DDL lowering, and many-link association writes from `to`.
	Dependencies []schema.Statement
	// Main is nil only for a create-model query targeting the root model
	// itself, which has no row-level effect (spec.md §4.3).
	Main         *schema.Statement
	Loaded       []schema.LoadedField
	SingleRecord bool
	Kind         schema.QueryKind
}

// Compose compiles one input query end to end. models is mutated in place
// by DDL lowering, so later calls in the same batch observe the change.
func Compose(q *schema.Query, models *model.Set, opts schema.Options, gen symbols.IDGenerator) (*Result, error) {
	c := &compiler{models: models, opts: opts, gen: gen}
	if !q.Kind.IsDML() {
		return c.composeMeta(q)
	}
	params := &paramlist.Builder{Inline: opts.InlineParams}
	sql, deps, loaded, single, err := c.compileDML(q, models, params, "", opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Dependencies: deps,
		Main:         &schema.Statement{SQL: sql, Params: params.Params(), Returning: true},
		Loaded:       loaded,
		SingleRecord: single,
		Kind:         q.Kind,
	}, nil
}

type compiler struct {
	models *model.Set
	opts   schema.Options
	gen    symbols.IDGenerator
}

func (c *compiler) composeMeta(q *schema.Query) (*Result, error) {
	lowered, err := ddl.TransformMetaQuery(c.models, q.Meta, c.gen, c.ddlCompile, c.opts)
	if err != nil {
		return nil, err
	}
	if lowered.DML == nil {
		return &Result{Dependencies: lowered.Dependencies}, nil
	}

	params := &paramlist.Builder{Inline: c.opts.InlineParams}
	sql, moreDeps, loaded, single, err := c.compileDML(lowered.DML, c.models, params, "", c.opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Dependencies: append(lowered.Dependencies, moreDeps...),
		Main:         &schema.Statement{SQL: sql, Params: params.Params(), Returning: true},
		Loaded:       loaded,
		SingleRecord: single,
		Kind:         lowered.DML.Kind,
	}, nil
}

// ddlCompile adapts compileDML to ddl.Compiler for trigger-effect bodies.
// A trigger body executes later, against whichever row fired it, with no
// way to rebind external parameters at CREATE TRIGGER time, so effects are
// always compiled with inlineParams forced on regardless of the caller's
// option (spec.md §97, §4.6).
func (c *compiler) ddlCompile(q *schema.Query, models *model.Set, scope string, opts schema.Options) (string, []schema.Statement, error) {
	inlineOpts := opts
	inlineOpts.InlineParams = true
	params := &paramlist.Builder{Inline: true}
	sql, deps, _, _, err := c.compileDML(q, models, params, scope, inlineOpts)
	if err != nil {
		return "", nil, err
	}
	return sql, deps, nil
}

// queryCompileAdapter fulfils query.Context.Compile for nested sub-queries
// (in `with`, `to`, `including`), sharing the caller's parameter builder so
// placeholder numbering stays contiguous across the whole statement.
func (c *compiler) queryCompileAdapter(q *schema.Query, models *model.Set, params *paramlist.Builder, scope string, opts schema.Options) (string, []schema.Statement, []schema.LoadedField, error) {
	return c.compileDML(q, models, params, scope, opts)
}

// compileDML renders one DML query (get/set/add/remove/count) into its
// final SQL text, returning any dependency statements (many-link writes),
// the loaded-field list for result reshaping, and whether the query
// addresses a single record (by its model's singular slug, or any `add`).
func (c *compiler) compileDML(q *schema.Query, models *model.Set, params *paramlist.Builder, scope string, opts schema.Options) (sql string, deps []schema.Statement, loaded []schema.LoadedField, single bool, err error) {
	addressed, instr, ok := q.ModelTarget()
	if !ok {
		return "", nil, nil, false, schema.NewError(schema.ErrInvalidWithValue, "Query names no model")
	}
	m, err := models.Get(addressed)
	if err != nil {
		return "", nil, nil, false, err
	}
	if instr == nil {
		instr = &schema.Instructions{}
	}
	single = q.Kind == schema.Add || addressed == m.Slug

	if len(instr.Using) > 0 {
		if err := query.ApplyPresets(m, instr); err != nil {
			return "", nil, nil, false, err
		}
	}

	ctx := &query.Context{
		Models:  models,
		Model:   m,
		Scope:   scope,
		Params:  params,
		Gen:     c.gen,
		Options: opts,
		Compile: c.queryCompileAdapter,
	}

	switch q.Kind {
	case schema.Get:
		sql, loaded, err = c.compileGet(ctx, m, instr, single)
		return sql, nil, loaded, single, err
	case schema.Count:
		sql, err = c.compileCount(ctx, m, instr)
		return sql, nil, nil, single, err
	case schema.Add:
		sql, deps, loaded, err = c.compileAdd(ctx, m, instr.To)
		return sql, deps, loaded, single, err
	case schema.Set:
		sql, deps, loaded, err = c.compileSet(ctx, m, instr, single)
		return sql, deps, loaded, single, err
	case schema.Remove:
		sql, loaded, err = c.compileRemove(ctx, m, instr, single)
		return sql, nil, loaded, single, err
	default:
		return "", nil, nil, false, schema.NewErrorf(schema.ErrInvalidModelValue, "Unsupported query kind: %s", q.Kind)
	}
}

func (c *compiler) compileGet(ctx *query.Context, m *schema.Model, instr *schema.Instructions, single bool) (string, []schema.LoadedField, error) {
	proj, err := query.BuildSelecting(ctx, instr.Selecting, instr.Including)
	if err != nil {
		return "", nil, err
	}

	ob := instr.OrderedBy
	if !single && instr.LimitedTo != nil {
		ob = query.WithCreatedAtTieBreak(ob)
	}

	where, err := query.BuildWith(ctx, instr.With)
	if err != nil {
		return "", nil, err
	}
	cursorPred, err := query.BuildCursorPredicate(ctx, ob, instr.Before, instr.After, single)
	if err != nil {
		return "", nil, err
	}
	where = andClauses(where, cursorPred)

	orderClause, err := query.BuildOrderedBy(ctx, ob)
	if err != nil {
		return "", nil, err
	}
	limitClause := query.BuildLimit(single, instr.LimitedTo)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", proj.ColumnsClause, model.QuoteIdent(m.Table))
	for _, j := range proj.Joins {
		b.WriteString(" " + j)
	}
	appendClause(&b, where)
	appendClause(&b, orderClause)
	appendClause(&b, limitClause)
	return b.String(), proj.Loaded, nil
}

func (c *compiler) compileCount(ctx *query.Context, m *schema.Model, instr *schema.Instructions) (string, error) {
	where, err := query.BuildWith(ctx, instr.With)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT COUNT(*) as "amount" FROM %s`, model.QuoteIdent(m.Table))
	appendClause(&b, where)
	return b.String(), nil
}

func (c *compiler) compileAdd(ctx *query.Context, m *schema.Model, to map[string]any) (string, []schema.Statement, []schema.LoadedField, error) {
	if len(to) == 1 {
		for _, v := range to {
			if sym, ok := v.(*schema.Symbol); ok && sym.IsSubQuery() {
				ins, err := query.BuildInsert(ctx, to)
				if err != nil {
					return "", nil, nil, err
				}
				sql := fmt.Sprintf(`INSERT INTO %s %s RETURNING *`, model.QuoteIdent(m.Table), ins.ColumnsAndValues)
				return sql, nil, defaultLoaded(m), nil
			}
		}
	}

	toCopy := make(map[string]any, len(to)+1)
	for k, v := range to {
		toCopy[k] = v
	}
	recordID, hasID := toCopy["id"]
	if !hasID {
		recordID = symbols.NewRecordID(c.gen, m.IDPrefix)
		toCopy["id"] = recordID
	}

	type manyAssign struct {
		field *schema.Field
		value any
	}
	insertFields := make(map[string]any, len(toCopy))
	var manyLinks []manyAssign
	for k, v := range toCopy {
		if f := m.GetField(k); f != nil && f.IsManyLink() {
			manyLinks = append(manyLinks, manyAssign{f, v})
			continue
		}
		insertFields[k] = v
	}

	ins, err := query.BuildInsert(ctx, insertFields)
	if err != nil {
		return "", nil, nil, err
	}

	var deps []schema.Statement
	for _, ml := range manyLinks {
		mdeps, err := query.ManyLinkDependencies(ctx, ml.field, recordID, ml.value)
		if err != nil {
			return "", nil, nil, err
		}
		deps = append(deps, mdeps...)
	}

	sql := fmt.Sprintf(`INSERT INTO %s %s RETURNING *`, model.QuoteIdent(m.Table), ins.ColumnsAndValues)
	return sql, deps, defaultLoaded(m), nil
}

func (c *compiler) compileSet(ctx *query.Context, m *schema.Model, instr *schema.Instructions, single bool) (string, []schema.Statement, []schema.LoadedField, error) {
	where, err := query.BuildWith(ctx, instr.With)
	if err != nil {
		return "", nil, nil, err
	}

	upd, err := query.BuildUpdate(ctx, instr.To)
	if err != nil {
		return "", nil, nil, err
	}

	var deps []schema.Statement
	for k, v := range instr.To {
		f := m.GetField(k)
		if f == nil || !f.IsManyLink() {
			continue
		}
		recordID, ok := instr.With["id"]
		if !ok {
			return "", nil, nil, schema.NewErrorf(schema.ErrInvalidWithValue, "Assigning many-link field %s via `set` requires `with: { id }`", k)
		}
		mdeps, err := query.ManyLinkDependencies(ctx, f, recordID, v)
		if err != nil {
			return "", nil, nil, err
		}
		deps = append(deps, mdeps...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s %s", model.QuoteIdent(m.Table), upd.SetClause)
	appendClause(&b, where)
	b.WriteString(" RETURNING *")
	return b.String(), deps, defaultLoaded(m), nil
}

func (c *compiler) compileRemove(ctx *query.Context, m *schema.Model, instr *schema.Instructions, single bool) (string, []schema.LoadedField, error) {
	where, err := query.BuildWith(ctx, instr.With)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", model.QuoteIdent(m.Table))
	appendClause(&b, where)
	b.WriteString(" RETURNING *")
	return b.String(), defaultLoaded(m), nil
}

// defaultLoaded describes a full-row RETURNING * projection: every
// non-many-link field, mounted at its own slug.
func defaultLoaded(m *schema.Model) []schema.LoadedField {
	var loaded []schema.LoadedField
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.IsManyLink() {
			continue
		}
		loaded = append(loaded, schema.LoadedField{Alias: f.Slug, MountingPath: f.Slug, Field: f})
	}
	return loaded
}

func andClauses(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " AND " + b
	}
}

func appendClause(b *strings.Builder, clause string) {
	if clause == "" {
		return
	}
	if strings.HasPrefix(clause, "(") {
		b.WriteString(" WHERE " + clause)
		return
	}
	b.WriteString(" " + clause)
}
