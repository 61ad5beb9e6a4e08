package ddl

import (
	"fmt"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// Result is what TransformMetaQuery hands back to the caller: the DML
// query to compile against the root model (nil when the meta-query has no
// row-level effect, e.g. creating the root model itself) plus any ordered
// dependency statements (CREATE/ALTER/DROP TABLE, CREATE INDEX, CREATE
// TRIGGER) that must run alongside it.
type Result struct {
	DML          *schema.Query
	Dependencies []schema.Statement
}

// TransformMetaQuery lowers one create/alter/drop meta-query into DML
// against the root model plus dependency DDL (spec.md §4.3). all is
// mutated in place: creating a model adds it (and its associative
// children); dropping one removes it.
func TransformMetaQuery(all *model.Set, meta *schema.MetaQuery, gen symbols.IDGenerator, compile Compiler, opts schema.Options) (*Result, error) {
	switch meta.Action {
	case schema.CreateModel:
		return transformCreateModel(all, meta, gen, compile, opts)
	case schema.AlterModelTo:
		return transformAlterModelTo(all, meta, compile, opts)
	case schema.DropModel:
		return transformDropModel(all, meta)
	case schema.CreateEntity:
		return transformCreateEntity(all, meta, gen, compile, opts)
	case schema.AlterEntity:
		return transformAlterEntity(all, meta)
	case schema.DropEntity:
		return transformDropEntity(all, meta)
	default:
		return nil, schema.NewErrorf(schema.ErrInvalidModelValue, "Unknown meta action: %s", meta.Action)
	}
}

func transformCreateModel(all *model.Set, meta *schema.MetaQuery, gen symbols.IDGenerator, compile Compiler, opts schema.Options) (*Result, error) {
	m := meta.Model
	if m.Slug == model.RootSlug {
		root := all.Lookup(model.RootSlug)
		if root == nil {
			root = model.RootModel()
			all.Add(root)
		}
		return &Result{Dependencies: []schema.Statement{CreateTableStatement(all, root)}}, nil
	}

	isNew := true
	model.AddDefaultModelAttributes(m, isNew, gen)
	model.AddDefaultModelFields(m, isNew)
	all.Add(m)
	model.AddDefaultModelPresets(all, m)

	deps := []schema.Statement{CreateTableStatement(all, m)}

	for i := range m.Indexes {
		idx := &m.Indexes[i]
		stmt, err := CreateIndexStatement(m, idx)
		if err != nil {
			return nil, err
		}
		deps = append(deps, stmt)
	}
	for i := range m.Triggers {
		stmt, err := CreateTriggerStatement(all, m, &m.Triggers[i], compile, opts)
		if err != nil {
			return nil, err
		}
		deps = append(deps, stmt)
	}

	systemModels := model.GetSystemModels(m, gen)
	for _, sm := range systemModels {
		all.Add(sm)
		deps = append(deps, CreateTableStatement(all, sm))
	}

	record, err := model.ToRecord(m)
	if err != nil {
		return nil, err
	}
	dml := &schema.Query{
		Kind: schema.Add,
		Models: map[string]*schema.Instructions{
			model.RootSlug: {To: record},
		},
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

func transformAlterModelTo(all *model.Set, meta *schema.MetaQuery, compile Compiler, opts schema.Options) (*Result, error) {
	existing, err := all.Get(meta.ModelSlug)
	if err != nil {
		return nil, err
	}

	updated := *existing
	patch := meta.Model
	mergeModelPatch(&updated, patch)

	var deps []schema.Statement
	if updated.PluralSlug != existing.PluralSlug {
		newTable := symbols.SnakeCase(updated.PluralSlug)
		deps = append(deps, RenameTableStatement(existing.Table, newTable))
		updated.Table = newTable
	}

	all.Replace(meta.ModelSlug, &updated)

	record, err := model.ToRecord(&updated)
	if err != nil {
		return nil, err
	}
	dml := &schema.Query{
		Kind: schema.Set,
		Models: map[string]*schema.Instructions{
			model.RootSlug: {
				With: map[string]any{"slug": meta.ModelSlug},
				To:   record,
			},
		},
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

// mergeModelPatch shallow-merges any attribute patch set on patch into m.
func mergeModelPatch(m *schema.Model, patch *schema.Model) {
	if patch == nil {
		return
	}
	if patch.Name != "" {
		m.Name = patch.Name
	}
	if patch.PluralName != "" {
		m.PluralName = patch.PluralName
	}
	if patch.Slug != "" {
		m.Slug = patch.Slug
	}
	if patch.PluralSlug != "" {
		m.PluralSlug = patch.PluralSlug
	}
	if patch.IDPrefix != "" {
		m.IDPrefix = patch.IDPrefix
	}
	if patch.Identifiers.Name != "" || patch.Identifiers.Slug != "" {
		m.Identifiers = patch.Identifiers
	}
}

func transformDropModel(all *model.Set, meta *schema.MetaQuery) (*Result, error) {
	m, err := all.Get(meta.ModelSlug)
	if err != nil {
		return nil, err
	}

	deps := []schema.Statement{DropTableStatement(m)}

	for i := range m.Fields {
		f := &m.Fields[i]
		if !f.IsManyLink() {
			continue
		}
		assocSlug := model.AssociativeModelSlug(m.Slug, f.Slug)
		if existing := all.Lookup(assocSlug); existing != nil {
			deps = append(deps, DropTableStatement(existing))
			all.Remove(existing.Slug)
		}
	}

	all.Remove(meta.ModelSlug)

	dml := &schema.Query{
		Kind: schema.Remove,
		Models: map[string]*schema.Instructions{
			model.RootSlug: {With: map[string]any{"slug": meta.ModelSlug}},
		},
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

func transformCreateEntity(all *model.Set, meta *schema.MetaQuery, gen symbols.IDGenerator, compile Compiler, opts schema.Options) (*Result, error) {
	m, err := all.Get(meta.ModelSlug)
	if err != nil {
		return nil, err
	}

	var deps []schema.Statement
	var plural string

	switch meta.EntityType {
	case schema.EntityField:
		f := meta.Field
		if m.GetField(f.Slug) != nil {
			return nil, schema.NewErrorf(schema.ErrExistingModelEntity, "Field already exists: %s", f.Slug)
		}
		m.Fields = append(m.Fields, *f)
		if !f.IsManyLink() {
			deps = append(deps, AddColumnStatement(all, m, f))
		} else {
			assoc := model.GetSystemModels(m, gen)
			for _, sm := range assoc {
				if sm.System.AssociationSlug == f.Slug && all.Lookup(sm.Slug) == nil {
					all.Add(sm)
					deps = append(deps, CreateTableStatement(all, sm))
				}
			}
		}
		plural = "fields"
	case schema.EntityIndex:
		idx := meta.Index
		if m.GetIndex(idx.Slug) != nil {
			return nil, schema.NewErrorf(schema.ErrExistingModelEntity, "Index already exists: %s", idx.Slug)
		}
		m.Indexes = append(m.Indexes, *idx)
		stmt, err := CreateIndexStatement(m, idx)
		if err != nil {
			return nil, err
		}
		deps = append(deps, stmt)
		plural = "indexes"
	case schema.EntityTrigger:
		tr := meta.Trigger
		if m.GetTrigger(tr.Slug) != nil {
			return nil, schema.NewErrorf(schema.ErrExistingModelEntity, "Trigger already exists: %s", tr.Slug)
		}
		m.Triggers = append(m.Triggers, *tr)
		stmt, err := CreateTriggerStatement(all, m, tr, compile, opts)
		if err != nil {
			return nil, err
		}
		deps = append(deps, stmt)
		plural = "triggers"
	case schema.EntityPreset:
		p := meta.Preset
		if m.GetPreset(p.Slug) != nil {
			return nil, schema.NewErrorf(schema.ErrExistingModelEntity, "Preset already exists: %s", p.Slug)
		}
		m.Presets = append(m.Presets, *p)
		plural = "presets"
	default:
		return nil, schema.NewErrorf(schema.ErrInvalidModelValue, "Unknown entity type: %s", meta.EntityType)
	}

	dml, err := entityListSetQuery(m, plural)
	if err != nil {
		return nil, err
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

func transformAlterEntity(all *model.Set, meta *schema.MetaQuery) (*Result, error) {
	m, err := all.Get(meta.ModelSlug)
	if err != nil {
		return nil, err
	}

	var deps []schema.Statement
	var plural string

	switch meta.EntityType {
	case schema.EntityField:
		f := m.GetField(meta.EntitySlug)
		if f == nil {
			return nil, schema.FieldNotFoundError(m.Slug, meta.EntitySlug)
		}
		oldSlug := f.Slug
		if meta.Field != nil {
			*f = *meta.Field
		}
		if f.Slug != oldSlug && !f.IsManyLink() {
			deps = append(deps, RenameColumnStatement(m, oldSlug, f.Slug))
		}
		plural = "fields"
	default:
		return nil, fmt.Errorf("alter is only supported for fields")
	}

	dml, err := entityListSetQuery(m, plural)
	if err != nil {
		return nil, err
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

func transformDropEntity(all *model.Set, meta *schema.MetaQuery) (*Result, error) {
	m, err := all.Get(meta.ModelSlug)
	if err != nil {
		return nil, err
	}

	var deps []schema.Statement
	var plural string

	switch meta.EntityType {
	case schema.EntityField:
		f := m.GetField(meta.EntitySlug)
		if f == nil {
			return nil, schema.FieldNotFoundError(m.Slug, meta.EntitySlug)
		}
		if schema.IsSystemFieldSlug(f.Slug) {
			return nil, schema.NewErrorf(schema.ErrRequiredModelEntity, "Cannot drop system field: %s", f.Slug)
		}
		if !f.IsManyLink() {
			deps = append(deps, DropColumnStatement(m, f.Slug))
		}
		m.Fields = removeField(m.Fields, f.Slug)
		plural = "fields"
	case schema.EntityIndex:
		idx := m.GetIndex(meta.EntitySlug)
		if idx == nil {
			return nil, schema.NewErrorf(schema.ErrIndexNotFound, "Index not found: %s", meta.EntitySlug)
		}
		deps = append(deps, DropIndexStatement(m, idx))
		m.Indexes = removeIndex(m.Indexes, idx.Slug)
		plural = "indexes"
	case schema.EntityTrigger:
		tr := m.GetTrigger(meta.EntitySlug)
		if tr == nil {
			return nil, schema.NewErrorf(schema.ErrTriggerNotFound, "Trigger not found: %s", meta.EntitySlug)
		}
		deps = append(deps, DropTriggerStatement(m, tr))
		m.Triggers = removeTrigger(m.Triggers, tr.Slug)
		plural = "triggers"
	default:
		return nil, schema.NewErrorf(schema.ErrInvalidModelValue, "Unsupported drop entity type: %s", meta.EntityType)
	}

	dml, err := entityListSetQuery(m, plural)
	if err != nil {
		return nil, err
	}
	return &Result{DML: dml, Dependencies: deps}, nil
}

// entityListSetQuery builds the `set { model: { with:{slug}, to:{<plural>:
// <json>} } }` DML against the root model that persists an updated
// field/index/trigger/preset list (spec.md §4.3).
func entityListSetQuery(m *schema.Model, plural string) (*schema.Query, error) {
	record, err := model.ToRecord(m)
	if err != nil {
		return nil, err
	}
	return &schema.Query{
		Kind: schema.Set,
		Models: map[string]*schema.Instructions{
			model.RootSlug: {
				With: map[string]any{"slug": m.Slug},
				To:   map[string]any{plural: record[plural]},
			},
		},
	}, nil
}

func removeField(fields []schema.Field, slug string) []schema.Field {
	out := fields[:0]
	for _, f := range fields {
		if f.Slug != slug {
			out = append(out, f)
		}
	}
	return out
}

func removeIndex(indexes []schema.Index, slug string) []schema.Index {
	out := indexes[:0]
	for _, i := range indexes {
		if i.Slug != slug {
			out = append(out, i)
		}
	}
	return out
}

func removeTrigger(triggers []schema.Trigger, slug string) []schema.Trigger {
	out := triggers[:0]
	for _, t := range triggers {
		if t.Slug != slug {
			out = append(out, t)
		}
	}
	return out
}
