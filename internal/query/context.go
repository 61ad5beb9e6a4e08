// Package query implements the per-instruction SQL fragment builders
// (spec.md §4.4, C4): with, to, selecting, including, orderedBy,
// before/after, limitedTo, and using (presets).
package query

import (
	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/paramlist"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// Context carries everything an instruction handler needs to resolve
// fields and emit parameters: the model set (for sub-query compilation
// and link resolution), the model currently being queried, the table
// alias/scope for FIELD_PARENT resolution, the shared parameter builder,
// the id generator, and the active compile options.
type Context struct {
	Models     *model.Set
	Model      *schema.Model
	Scope      string // "", schema.TokenFieldParent, …Old, …New
	Params     *paramlist.Builder
	Gen        symbols.IDGenerator
	Options    schema.Options
	// Compile recursively compiles a nested query (used by with/to/including
	// for sub-queries). Supplied by internal/compose to avoid an import cycle.
	Compile func(q *schema.Query, models *model.Set, params *paramlist.Builder, scope string, opts schema.Options) (string, []schema.Statement, []schema.LoadedField, error)
}

func (c *Context) tableAlias() string {
	return model.TableAlias(c.Model, c.Scope)
}

// resolveRead looks up path against the current model and returns its
// field and read selector; a path matching no field yields
// FIELD_NOT_FOUND.
func (c *Context) resolveRead(path string) (*schema.Field, string, error) {
	return model.GetFieldFromModel(c.Model, path, model.SourceRead, c.tableAlias())
}

func (c *Context) resolveWrite(path string) (*schema.Field, string, error) {
	return model.GetFieldFromModel(c.Model, path, model.SourceWrite, c.tableAlias())
}
