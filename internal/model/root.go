package model

import "github.com/ronin-co/compiler/internal/schema"

// RootSlug / RootTable are the root model's fixed slug and table name.
const (
	RootSlug  = "model"
	RootTable = "ronin_schema"
)

// RootModel returns the always-present root model that holds every other
// model's metadata (spec.md §3 "The root model"). Its column layout
// mirrors spec.md §6 "Root schema layout" exactly.
func RootModel() *schema.Model {
	m := &schema.Model{
		Slug:       RootSlug,
		PluralSlug: "models",
		Name:       "Model",
		PluralName: "Models",
		Table:      RootTable,
		IDPrefix:   "mod",
		Identifiers: schema.Identifiers{
			Name: "name",
			Slug: "slug",
		},
		Fields: []schema.Field{
			{Slug: "name", Type: schema.FieldString},
			{Slug: "pluralName", Type: schema.FieldString},
			{Slug: "slug", Type: schema.FieldString, Unique: true, Required: true},
			{Slug: "pluralSlug", Type: schema.FieldString, Unique: true, Required: true},
			{Slug: "idPrefix", Type: schema.FieldString},
			{Slug: "table", Type: schema.FieldString},
			{Slug: "identifiers.name", Type: schema.FieldString},
			{Slug: "identifiers.slug", Type: schema.FieldString},
			{Slug: "fields", Type: schema.FieldJSON, DefaultValue: schema.NewLiteral("{}")},
			{Slug: "indexes", Type: schema.FieldJSON, DefaultValue: schema.NewLiteral("{}")},
			{Slug: "triggers", Type: schema.FieldJSON, DefaultValue: schema.NewLiteral("{}")},
			{Slug: "presets", Type: schema.FieldJSON, DefaultValue: schema.NewLiteral("{}")},
		},
		System: schema.System{Model: true},
	}
	AddDefaultModelFields(m, false)
	return m
}
