package ronin

import (
	"testing"

	"github.com/ronin-co/compiler/internal/schema"
)

type fixedGen struct{ hex string }

func (g fixedGen) Hex16() string { return g.hex }

func postModel() *schema.Model {
	return &schema.Model{
		Slug: "post", PluralSlug: "posts", Table: "posts", IDPrefix: "pos",
		Fields: []schema.Field{
			{Slug: "title", Type: schema.FieldString, Required: true},
		},
	}
}

func TestNewTransaction_CompilesInOrder(t *testing.T) {
	queries := []*schema.Query{
		{Kind: schema.Add, Models: map[string]*schema.Instructions{"post": {To: map[string]any{"title": "Hello"}}}},
		{Kind: schema.Get, Models: map[string]*schema.Instructions{"posts": {}}},
	}

	tx, err := NewTransaction(queries, []*schema.Model{postModel()}, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tx.plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(tx.plans))
	}
	stmts := tx.Statements()
	if len(stmts) == 0 {
		t.Fatal("expected at least one compiled statement")
	}
	if stmts[0].SQL == "" {
		t.Fatal("expected a non-empty first statement")
	}
}

func TestNewTransaction_ExpandsAllPseudoModel(t *testing.T) {
	post := postModel()
	tag := &schema.Model{Slug: "tag", PluralSlug: "tags", Table: "tags", IDPrefix: "tag"}
	queries := []*schema.Query{
		{Kind: schema.Count, Models: map[string]*schema.Instructions{schema.AllModelSlug: {}}},
	}

	tx, err := NewTransaction(queries, []*schema.Model{post, tag}, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tx.plans) != 2 {
		t.Fatalf("expected one plan per registered model, got %d", len(tx.plans))
	}
	for _, p := range tx.plans {
		if p.groupIndex != 0 {
			t.Fatalf("expected every expanded plan to share groupIndex 0, got %d", p.groupIndex)
		}
	}
}

func TestNewTransaction_RegistersAssociativeModels(t *testing.T) {
	post := postModel()
	post.Fields = append(post.Fields, schema.Field{Slug: "tags", Type: schema.FieldLink, Kind: schema.LinkMany, Target: "tag"})
	tag := &schema.Model{Slug: "tag", PluralSlug: "tags", Table: "tags", IDPrefix: "tag"}

	tx, err := NewTransaction(nil, []*schema.Model{post, tag}, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, m := range tx.Models() {
		if m.System.AssociationSlug == "tags" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an associative model to be registered")
	}
}
