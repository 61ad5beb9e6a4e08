package ronin

import (
	"github.com/ronin-co/compiler/internal/compose"
	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// Transaction owns one query batch's compile (spec.md §4.6, C6): the
// fully-defaulted model list, the compiled statements in dependency-then-
// main order, and enough bookkeeping to reshape a driver's returned rows
// back into nested records. Build one with NewTransaction, read its
// compiled statements with Statements, and feed the driver's row sets back
// through FormatResults. A Transaction is not safe for concurrent use, and
// must never be shared across two batches (spec.md §5).
type Transaction struct {
	models *model.Set
	opts   schema.Options
	gen    symbols.IDGenerator
	plans  []queryPlan
}

// queryPlan records everything FormatResults needs for one input query
// (or, for an `all`-pseudo-model query, one of its per-model expansions):
// where its statements sit in the flat Statements() list, whether it
// addresses a single record, and the loaded-field/order metadata needed
// to reshape rows and compute pagination cursors.
type queryPlan struct {
	stmts      []schema.Statement
	mainIdx    int // index into stmts, -1 when the query has no row-level effect
	kind       schema.QueryKind
	single     bool
	loaded     []schema.LoadedField
	orderedBy  schema.OrderedBy
	limitedTo  *int
	before     *string
	after      *string
	model      *schema.Model
	resultKey  string // pluralSlug this plan's result nests under, set only for `all` members
	groupIndex int     // index of the originating `all` query in plans, or -1
}

// NewTransaction builds the full model list (root model + system
// associative models + caller-supplied models, each run through the
// model-layer defaulting) and compiles every query in order, expanding any
// query addressed at the pseudo-model "all" into one per registered model.
func NewTransaction(queries []*schema.Query, callerModels []*schema.Model, opts schema.Options, gen symbols.IDGenerator) (*Transaction, error) {
	if gen == nil {
		gen = symbols.UUIDGenerator{}
	}

	set := model.NewSet([]*schema.Model{model.RootModel()})
	for _, m := range callerModels {
		model.AddDefaultModelAttributes(m, false, gen)
		model.AddDefaultModelFields(m, false)
		set.Add(m)
	}
	for _, m := range callerModels {
		for _, assoc := range model.GetSystemModels(m, gen) {
			if set.Lookup(assoc.Slug) == nil {
				set.Add(assoc)
			}
		}
	}
	for _, m := range callerModels {
		model.AddDefaultModelPresets(set, m)
	}

	tx := &Transaction{models: set, opts: opts, gen: gen}
	for _, q := range queries {
		if err := tx.compileOne(q); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func (tx *Transaction) compileOne(q *schema.Query) error {
	if q.Kind.IsDML() {
		if slug, _, ok := q.ModelTarget(); ok && slug == schema.AllModelSlug {
			return tx.compileAll(q)
		}
	}
	return tx.compileSingle(q, "", -1)
}

// compileAll expands a query addressed at the pseudo-model "all" into one
// query per registered, non-system model (spec.md §4.6), nesting each
// result under its plural slug in the eventual {models: {...}} result.
func (tx *Transaction) compileAll(q *schema.Query) error {
	_, instr, _ := q.ModelTarget()
	groupIndex := len(tx.plans)
	for _, m := range tx.models.All() {
		if m.IsSystem() {
			continue
		}
		sub := &schema.Query{Kind: q.Kind, Models: map[string]*schema.Instructions{m.PluralSlug: cloneInstructions(instr)}}
		if err := tx.compileSingle(sub, m.PluralSlug, groupIndex); err != nil {
			return err
		}
	}
	return nil
}

func cloneInstructions(instr *schema.Instructions) *schema.Instructions {
	if instr == nil {
		return nil
	}
	clone := *instr
	return &clone
}

func (tx *Transaction) compileSingle(q *schema.Query, resultKey string, groupIndex int) error {
	res, err := compose.Compose(q, tx.models, tx.opts, tx.gen)
	if err != nil {
		return err
	}

	plan := queryPlan{
		kind:       res.Kind,
		single:     res.SingleRecord,
		loaded:     res.Loaded,
		resultKey:  resultKey,
		groupIndex: groupIndex,
		mainIdx:    -1,
	}
	plan.stmts = append(plan.stmts, res.Dependencies...)
	if res.Main != nil {
		plan.mainIdx = len(plan.stmts)
		plan.stmts = append(plan.stmts, *res.Main)
	}

	if slug, instr, ok := q.ModelTarget(); ok && instr != nil {
		if m, merr := tx.models.Get(slug); merr == nil {
			plan.model = m
		}
		plan.orderedBy = instr.OrderedBy
		plan.limitedTo = instr.LimitedTo
		plan.before = instr.Before
		plan.after = instr.After
	}

	tx.plans = append(tx.plans, plan)
	return nil
}

// Statements returns every compiled statement in execution order:
// dependency statements first, then the main statement, per input query —
// but preserving query order between mains (spec.md §4.6).
func (tx *Transaction) Statements() []schema.Statement {
	var out []schema.Statement
	for _, p := range tx.plans {
		out = append(out, p.stmts...)
	}
	return out
}

// Models returns the fully-defaulted model list this transaction compiled
// against, including synthesised system (root + associative) models.
func (tx *Transaction) Models() []*schema.Model {
	return tx.models.All()
}
