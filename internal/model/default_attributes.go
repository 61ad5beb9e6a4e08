package model

import (
	"strings"

	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// AddDefaultModelAttributes populates any of pluralSlug/name/pluralName/
// idPrefix/table/identifiers that the caller left unset, and assigns a
// fresh model identifier when isNew (spec.md §4.2).
func AddDefaultModelAttributes(m *schema.Model, isNew bool, gen symbols.IDGenerator) {
	if m.PluralSlug == "" {
		m.PluralSlug = symbols.Pluralize(m.Slug)
	}
	if m.Name == "" {
		m.Name = symbols.TitleCase(m.Slug)
	}
	if m.PluralName == "" {
		m.PluralName = symbols.TitleCase(m.PluralSlug)
	}
	if m.IDPrefix == "" {
		m.IDPrefix = strings.ToLower(firstThree(m.Slug))
	}
	if m.Table == "" {
		m.Table = symbols.SnakeCase(m.PluralSlug)
	}
	if m.Identifiers.Slug == "" && m.Identifiers.Name == "" {
		m.Identifiers = defaultIdentifiers(m)
	}
	if isNew && m.ID == "" {
		m.ID = symbols.NewModelID(gen)
	}
}

func firstThree(slug string) string {
	if len(slug) <= 3 {
		return slug
	}
	return slug[:3]
}

// defaultIdentifiers prefers a required string field named name/slug/handle
// for both the name and slug identifiers, falling back to "id".
func defaultIdentifiers(m *schema.Model) schema.Identifiers {
	for _, candidate := range []string{"name", "slug", "handle"} {
		if f := m.GetField(candidate); f != nil && f.Type == schema.FieldString && f.Required {
			return schema.Identifiers{Name: candidate, Slug: candidate}
		}
	}
	return schema.Identifiers{Name: "id", Slug: "id"}
}

// AddDefaultModelFields prepends the six system fields (spec.md §3) in
// their fixed order, keeping the caller's defaultValue, unique, required
// and check settings where the caller already defined one of them (its
// other attributes are replaced by the system defaults), and leaves the
// remaining (user) fields in their original relative order.
func AddDefaultModelFields(m *schema.Model, isNew bool) {
	existing := make(map[string]schema.Field, len(m.Fields))
	var userFields []schema.Field
	for _, f := range m.Fields {
		if schema.IsSystemFieldSlug(f.Slug) {
			existing[f.Slug] = f
		} else {
			userFields = append(userFields, f)
		}
	}

	systemFields := defaultSystemFields(m.IDPrefix)
	final := make([]schema.Field, 0, len(systemFields)+len(userFields))
	for _, f := range systemFields {
		if caller, ok := existing[f.Slug]; ok {
			final = append(final, mergeField(f, caller))
		} else {
			final = append(final, f)
		}
	}
	final = append(final, userFields...)
	m.Fields = final
}

func mergeField(def, caller schema.Field) schema.Field {
	out := def
	if caller.DefaultValue != nil {
		out.DefaultValue = caller.DefaultValue
	}
	if caller.Unique {
		out.Unique = true
	}
	if caller.Required {
		out.Required = true
	}
	if caller.Check != "" {
		out.Check = caller.Check
	}
	return out
}

func defaultSystemFields(idPrefix string) []schema.Field {
	createdAtExpr := "strftime('%Y-%m-%dT%H:%M:%f', 'now') || 'Z'"
	idExpr := "'" + idPrefix + "_' || lower(substr(hex(randomblob(12)), 1, 16))"
	return []schema.Field{
		{
			Slug:         "id",
			Type:         schema.FieldString,
			Unique:       true,
			Required:     true,
			DefaultValue: schema.NewExpression(idExpr),
		},
		{
			Slug:         "ronin.locked",
			Type:         schema.FieldBoolean,
			DefaultValue: schema.NewLiteral(false),
		},
		{
			Slug:         "ronin.createdAt",
			Type:         schema.FieldDate,
			Required:     true,
			DefaultValue: schema.NewExpression(createdAtExpr),
		},
		{
			Slug: "ronin.createdBy",
			Type: schema.FieldString,
		},
		{
			Slug:         "ronin.updatedAt",
			Type:         schema.FieldDate,
			Required:     true,
			DefaultValue: schema.NewExpression(createdAtExpr),
		},
		{
			Slug: "ronin.updatedBy",
			Type: schema.FieldString,
		},
	}
}
