package schema

// QueryKind is one of the eight query kinds a Query's single key names.
type QueryKind string

const (
	Get    QueryKind = "get"
	Set    QueryKind = "set"
	Add    QueryKind = "add"
	Remove QueryKind = "remove"
	Count  QueryKind = "count"
	Create QueryKind = "create"
	Alter  QueryKind = "alter"
	Drop   QueryKind = "drop"
)

// IsDML reports whether the kind operates on records (as opposed to the
// create/alter/drop model-definition kinds, which C3 lowers into DML).
func (k QueryKind) IsDML() bool {
	switch k {
	case Get, Set, Add, Remove, Count:
		return true
	default:
		return false
	}
}

// AllModelSlug is the pseudo-model slug "all" that the transaction facade
// expands into one query per registered model.
const AllModelSlug = "all"

// Query is a single-key mapping whose key is a QueryKind. For DML kinds,
// Models holds the (usually single) model-slug -> Instructions mapping;
// nil Instructions means "no filter". For DDL kinds, Meta describes the
// model descriptor or entity manipulator instead.
type Query struct {
	Kind   QueryKind
	Models map[string]*Instructions
	Meta   *MetaQuery
}

// ModelTarget returns the single model slug + instructions a DML query
// names. RONIN queries are single-key both at the top level and at the
// model level, but the map shape is kept for symmetry with "all" expansion.
func (q *Query) ModelTarget() (slug string, instr *Instructions, ok bool) {
	for s, i := range q.Models {
		return s, i, true
	}
	return "", nil, false
}

// Instructions is the tagged record of optional query modifiers.
type Instructions struct {
	With      map[string]any `json:"with,omitempty"`
	To        map[string]any `json:"to,omitempty"`
	Selecting []string       `json:"selecting,omitempty"`
	Including map[string]any `json:"including,omitempty"`
	OrderedBy OrderedBy      `json:"orderedBy,omitempty"`
	Before    *string        `json:"before,omitempty"`
	After     *string        `json:"after,omitempty"`
	LimitedTo *int           `json:"limitedTo,omitempty"`
	Using     []PresetUse    `json:"using,omitempty"`
}

// OrderedBy holds the ascending/descending field-slug (or expression) lists.
type OrderedBy struct {
	Ascending  []string `json:"ascending,omitempty"`
	Descending []string `json:"descending,omitempty"`
}

// PresetUse names a preset to splice in, with an optional caller-supplied
// argument substituted for any embedded VALUE symbol within the preset.
type PresetUse struct {
	Slug   string `json:"slug"`
	Arg    any    `json:"arg,omitempty"`
	HasArg bool   `json:"-"`
}

// MetaQuery describes a create/alter/drop query's payload (spec.md §4.3).
type MetaQuery struct {
	Action       MetaAction
	ModelSlug    string
	Model        *Model // for CreateModel, and the "to" side of AlterModelTo
	EntityType   EntityType
	EntitySlug   string // entity being altered/dropped
	EntityToSlug string // not read by DDL lowering; an AlterEntity rename takes its new slug from Field.Slug
	Field        *Field
	Index        *Index
	Trigger      *Trigger
	Preset       *Preset
}

type MetaAction string

const (
	CreateModel       MetaAction = "create_model"
	AlterModelTo       MetaAction = "alter_model_to"
	DropModel          MetaAction = "drop_model"
	CreateEntity       MetaAction = "create_entity"
	AlterEntity        MetaAction = "alter_entity"
	DropEntity         MetaAction = "drop_entity"
)

type EntityType string

const (
	EntityField   EntityType = "field"
	EntityIndex   EntityType = "index"
	EntityTrigger EntityType = "trigger"
	EntityPreset  EntityType = "preset"
)
