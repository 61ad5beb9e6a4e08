package model

import (
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// AddDefaultModelPresets synthesises the three preset families spec.md
// §4.2 describes: forward one-links, forward many-links (via the
// associative model), and reverse links from other models into m.
func AddDefaultModelPresets(all *Set, m *schema.Model) {
	existing := make(map[string]bool, len(m.Presets))
	for _, p := range m.Presets {
		existing[p.Slug] = true
	}
	add := func(p schema.Preset) {
		if existing[p.Slug] {
			return
		}
		existing[p.Slug] = true
		m.Presets = append(m.Presets, p)
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		if !f.IsLink() || schema.IsSystemFieldSlug(f.Slug) {
			continue
		}
		if f.Kind == schema.LinkMany {
			add(manyLinkPreset(m, f))
		} else {
			add(oneLinkPreset(m, f))
		}
	}

	for _, linking := range all.LinksInto(m.Slug) {
		add(reverseLinkPreset(m, linking))
	}
}

// oneLinkPreset joins the target model via `target.id = FIELD_PARENT.<field>`.
func oneLinkPreset(m *schema.Model, f *schema.Field) schema.Preset {
	return schema.Preset{
		Slug: f.Slug,
		Instructions: &schema.Instructions{
			Including: map[string]any{
				f.Slug: schema.NewSubQuery(&schema.Query{
					Kind: schema.Get,
					Models: map[string]*schema.Instructions{
						f.Target: {
							With: map[string]any{
								"id": schema.NewExpression(schema.TokenFieldParent + "." + f.Slug),
							},
						},
					},
				}),
			},
		},
	}
}

// manyLinkPreset joins via the associative model and then the target,
// selecting every target field except the associative model's own
// source/target join columns.
func manyLinkPreset(m *schema.Model, f *schema.Field) schema.Preset {
	assocSlug := AssociativeModelSlug(m.Slug, f.Slug)
	return schema.Preset{
		Slug: f.Slug,
		Instructions: &schema.Instructions{
			Including: map[string]any{
				f.Slug: schema.NewSubQuery(&schema.Query{
					Kind: schema.Get,
					Models: map[string]*schema.Instructions{
						assocSlug: {
							With: map[string]any{
								"source": schema.NewExpression(schema.TokenFieldParent + ".id"),
							},
							Selecting: []string{"**", "!source", "!target"},
							Including: map[string]any{
								"target": schema.NewSubQuery(&schema.Query{
									Kind: schema.Get,
									Models: map[string]*schema.Instructions{
										f.Target: {
											With: map[string]any{
												"id": schema.NewExpression(schema.TokenFieldParent + ".target"),
											},
										},
									},
								}),
							},
						},
					},
				}),
			},
		},
	}
}

// reverseLinkPreset joins the child rows that link into m, named after
// the child's plural slug (or its associationSlug when it is itself an
// associative model).
func reverseLinkPreset(m *schema.Model, linking LinkingField) schema.Preset {
	name := linking.Model.PluralSlug
	if linking.Model.System.AssociationSlug != "" {
		name = linking.Model.System.AssociationSlug
	}
	return schema.Preset{
		Slug: name,
		Instructions: &schema.Instructions{
			Including: map[string]any{
				name: schema.NewSubQuery(&schema.Query{
					Kind: schema.Get,
					Models: map[string]*schema.Instructions{
						linking.Model.PluralSlug: {
							With: map[string]any{
								linking.Field.Slug: schema.NewExpression(schema.TokenFieldParent + ".id"),
							},
						},
					},
				}),
			},
		},
	}
}

// AssociativeModelSlug derives the synthesised many-to-many join model's
// slug, e.g. AssociativeModelSlug("post", "comments") -> "roninLinkPostComments".
func AssociativeModelSlug(sourceSlug, fieldSlug string) string {
	return symbols.CamelCase("ronin_link_" + sourceSlug + "_" + fieldSlug)
}

// GetSystemModels returns the associative models that must exist for
// every kind=many link field on m (spec.md §4.2's getSystemModels).
func GetSystemModels(m *schema.Model, gen symbols.IDGenerator) []*schema.Model {
	var out []*schema.Model
	for i := range m.Fields {
		f := &m.Fields[i]
		if !f.IsLink() || f.Kind != schema.LinkMany {
			continue
		}
		slug := AssociativeModelSlug(m.Slug, f.Slug)
		assoc := &schema.Model{
			Slug: slug,
			Fields: []schema.Field{
				{Slug: "source", Type: schema.FieldLink, Target: m.Slug, Kind: schema.LinkOne},
				{Slug: "target", Type: schema.FieldLink, Target: f.Target, Kind: schema.LinkOne},
			},
			System: schema.System{Model: true, AssociationSlug: f.Slug},
		}
		AddDefaultModelAttributes(assoc, true, gen)
		AddDefaultModelFields(assoc, true)
		out = append(out, assoc)
	}
	return out
}
