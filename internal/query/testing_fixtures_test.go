package query

import (
	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/paramlist"
	"github.com/ronin-co/compiler/internal/schema"
)

type fixedGenerator struct{ hex string }

func (g fixedGenerator) Hex16() string { return g.hex }

func postModel() *schema.Model {
	return &schema.Model{
		Slug: "post", PluralSlug: "posts", Table: "posts", IDPrefix: "pos",
		Fields: []schema.Field{
			{Slug: "id", Type: schema.FieldString},
			{Slug: "title", Type: schema.FieldString},
			{Slug: "content", Type: schema.FieldString},
			{Slug: "views", Type: schema.FieldNumber},
			{Slug: "ronin.createdAt", Type: schema.FieldDate},
			{Slug: "ronin.updatedAt", Type: schema.FieldDate},
			{Slug: "account", Type: schema.FieldLink, Target: "account", Kind: schema.LinkOne},
			{Slug: "tags", Type: schema.FieldLink, Target: "tag", Kind: schema.LinkMany},
		},
	}
}

func accountModel() *schema.Model {
	return &schema.Model{
		Slug: "account", PluralSlug: "accounts", Table: "accounts", IDPrefix: "acc",
		Fields: []schema.Field{
			{Slug: "id", Type: schema.FieldString},
			{Slug: "handle", Type: schema.FieldString},
		},
	}
}

func tagModel() *schema.Model {
	return &schema.Model{
		Slug: "tag", PluralSlug: "tags", Table: "tags", IDPrefix: "tag",
		Fields: []schema.Field{
			{Slug: "id", Type: schema.FieldString},
			{Slug: "name", Type: schema.FieldString},
		},
	}
}

func assocModel() *schema.Model {
	return &schema.Model{
		Slug: "roninLinkPostTags", PluralSlug: "roninLinkPostTags", Table: "ronin_link_post_tags", IDPrefix: "rlk",
		System: schema.System{Model: true},
		Fields: []schema.Field{
			{Slug: "id", Type: schema.FieldString},
			{Slug: "source", Type: schema.FieldLink, Target: "post", Kind: schema.LinkOne},
			{Slug: "target", Type: schema.FieldLink, Target: "tag", Kind: schema.LinkOne},
			{Slug: "ronin.createdAt", Type: schema.FieldDate},
			{Slug: "ronin.updatedAt", Type: schema.FieldDate},
		},
	}
}

func newTestContext(m *schema.Model, models *model.Set) *Context {
	return &Context{
		Models:  models,
		Model:   m,
		Params:  &paramlist.Builder{},
		Gen:     fixedGenerator{hex: "abcdef0123456789"},
		Options: schema.Options{},
	}
}
