package compose

import (
	"strings"
	"testing"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

type fixedGen struct{ hex string }

func (g fixedGen) Hex16() string { return g.hex }

func postModel() *schema.Model {
	m := &schema.Model{
		Slug: "post", PluralSlug: "posts", Table: "posts", IDPrefix: "pos",
		Fields: []schema.Field{
			{Slug: "title", Type: schema.FieldString, Required: true},
			{Slug: "views", Type: schema.FieldNumber, DefaultValue: schema.NewLiteral(0)},
		},
	}
	model.AddDefaultModelFields(m, false)
	return m
}

func TestCompose_AddSynthesisesID(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	q := &schema.Query{Kind: schema.Add, Models: map[string]*schema.Instructions{
		"post": {To: map[string]any{"title": "Hello"}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Main.SQL, "INSERT INTO") || !strings.HasSuffix(res.Main.SQL, "RETURNING *") {
		t.Fatalf("unexpected SQL: %s", res.Main.SQL)
	}
	if !res.SingleRecord {
		t.Fatal("expected add to report single record")
	}
}

func TestCompose_GetSingleBySlug(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	q := &schema.Query{Kind: schema.Get, Models: map[string]*schema.Instructions{
		"post": {With: map[string]any{"id": "pos_123"}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SingleRecord {
		t.Fatal("expected singular-slug address to be single-record")
	}
	if !strings.Contains(res.Main.SQL, `WHERE ("id" = ?1)`) {
		t.Fatalf("unexpected SQL: %s", res.Main.SQL)
	}
	if !strings.Contains(res.Main.SQL, "LIMIT 1") {
		t.Fatalf("expected LIMIT 1 on a single-record get, got: %s", res.Main.SQL)
	}
}

func TestCompose_GetManyAppendsCreatedAtTieBreak(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	limit := 10
	q := &schema.Query{Kind: schema.Get, Models: map[string]*schema.Instructions{
		"posts": {LimitedTo: &limit},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SingleRecord {
		t.Fatal("expected plural-slug address to be multi-record")
	}
	if !strings.Contains(res.Main.SQL, `"ronin.createdAt" DESC`) {
		t.Fatalf("expected a descending ronin.createdAt tie-break, got: %s", res.Main.SQL)
	}
	if !strings.Contains(res.Main.SQL, "LIMIT 11") {
		t.Fatalf("expected LIMIT pageSize+1, got: %s", res.Main.SQL)
	}
}

func TestCompose_Count(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	q := &schema.Query{Kind: schema.Count, Models: map[string]*schema.Instructions{"posts": {}}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Main.SQL, `SELECT COUNT(*) as "amount"`) {
		t.Fatalf("unexpected SQL: %s", res.Main.SQL)
	}
}

func TestCompose_SetTouchesUpdatedAt(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	q := &schema.Query{Kind: schema.Set, Models: map[string]*schema.Instructions{
		"post": {With: map[string]any{"id": "pos_123"}, To: map[string]any{"title": "Edited"}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Main.SQL, `"ronin.updatedAt" = (`) {
		t.Fatalf("expected updatedAt touch, got: %s", res.Main.SQL)
	}
}

func TestCompose_Remove(t *testing.T) {
	all := model.NewSet([]*schema.Model{postModel()})
	q := &schema.Query{Kind: schema.Remove, Models: map[string]*schema.Instructions{
		"post": {With: map[string]any{"id": "pos_123"}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Main.SQL, "DELETE FROM") {
		t.Fatalf("unexpected SQL: %s", res.Main.SQL)
	}
}

func TestCompose_CreateModelEmitsTableAndRootInsert(t *testing.T) {
	all := model.NewSet([]*schema.Model{model.RootModel()})
	q := &schema.Query{Kind: schema.Create, Meta: &schema.MetaQuery{
		Action: schema.CreateModel,
		Model:  &schema.Model{Slug: "post", Fields: []schema.Field{{Slug: "title", Type: schema.FieldString}}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Dependencies) == 0 || !strings.HasPrefix(res.Dependencies[0].SQL, "CREATE TABLE") {
		t.Fatalf("expected CREATE TABLE dependency, got %v", res.Dependencies)
	}
	if res.Main == nil || !strings.HasPrefix(res.Main.SQL, "INSERT INTO") {
		t.Fatalf("expected root-model insert, got %v", res.Main)
	}
	if all.Lookup("post") == nil {
		t.Fatal("expected the model to be registered in the set")
	}
}

func TestCompose_CreateRootModelEmitsNoMain(t *testing.T) {
	all := model.NewSet(nil)
	q := &schema.Query{Kind: schema.Create, Meta: &schema.MetaQuery{
		Action: schema.CreateModel,
		Model:  &schema.Model{Slug: model.RootSlug},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Main != nil {
		t.Fatalf("expected nil Main for root model creation, got %v", res.Main)
	}
}

func TestCompose_ManyLinkAddDependency(t *testing.T) {
	post := postModel()
	post.Fields = append(post.Fields, schema.Field{Slug: "tags", Type: schema.FieldLink, Kind: schema.LinkMany, Target: "tag"})
	tag := &schema.Model{Slug: "tag", PluralSlug: "tags", Table: "tags", IDPrefix: "tag"}
	model.AddDefaultModelFields(tag, false)
	all := model.NewSet([]*schema.Model{post, tag})
	for _, sm := range model.GetSystemModels(post, fixedGen{"abcdef0123456789"}) {
		all.Add(sm)
	}
	assocSlug := model.AssociativeModelSlug("post", "tags")
	if all.Lookup(assocSlug) == nil {
		t.Fatalf("expected associative model %s to exist", assocSlug)
	}

	q := &schema.Query{Kind: schema.Add, Models: map[string]*schema.Instructions{
		"post": {To: map[string]any{"title": "Hello", "tags": []any{"tag_1", "tag_2"}}},
	}}

	res, err := Compose(q, all, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Dependencies) != 3 {
		t.Fatalf("expected 1 delete-all + 2 inserts, got %d: %v", len(res.Dependencies), res.Dependencies)
	}
}
