package query

import (
	"strings"
	"testing"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

func TestBuildWith_Empty(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "" {
		t.Fatalf("expected empty fragment, got %q", where)
	}
}

func TestBuildWith_ScalarEquality(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"title": "Hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != `("title" = ?1)` {
		t.Fatalf("unexpected fragment: %s", where)
	}
	if len(ctx.Params.Params()) != 1 || ctx.Params.Params()[0] != "Hello" {
		t.Fatalf("unexpected params: %v", ctx.Params.Params())
	}
}

func TestBuildWith_NullAndArray(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"content": nil, "views": []any{1.0, 2.0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, `"content" IS NULL`) {
		t.Fatalf("expected IS NULL clause: %s", where)
	}
	if !strings.Contains(where, ` OR `) {
		t.Fatalf("expected OR-joined alternatives: %s", where)
	}
}

func TestBuildWith_Refinement(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"views": map[string]any{"greaterThan": 10.0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, `"views" > ?1`) {
		t.Fatalf("unexpected refinement fragment: %s", where)
	}
}

func TestBuildWith_ContainingBindsFullPattern(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"title": map[string]any{"containing": "foo"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, "LIKE ?1") {
		t.Fatalf("expected parameterised LIKE: %s", where)
	}
	if ctx.Params.Params()[0] != "%foo%" {
		t.Fatalf("expected full wildcard pattern bound as param, got %v", ctx.Params.Params()[0])
	}
}

func TestBuildWith_LinkShortcut(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), accountModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"account": map[string]any{"id": "acc_1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != `("account" = ?1)` {
		t.Fatalf("unexpected shortcut fragment: %s", where)
	}
}

func TestBuildWith_LinkSubQuery(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), accountModel()})
	ctx := newTestContext(postModel(), models)

	where, err := BuildWith(ctx, map[string]any{"account": map[string]any{"handle": "alice"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, `SELECT "id" FROM "accounts" WHERE`) {
		t.Fatalf("expected correlated sub-query: %s", where)
	}
}

func TestBuildWith_InvalidRefinementObject(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	_, err := BuildWith(ctx, map[string]any{"views": map[string]any{"bogus": 1}})
	if err == nil {
		t.Fatal("expected an error for unknown operator")
	}
	serr, ok := err.(*schema.Error)
	if !ok || serr.Code != schema.ErrInvalidWithValue {
		t.Fatalf("expected INVALID_WITH_VALUE, got %v", err)
	}
}

func TestBuildWith_Deterministic(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx1 := newTestContext(postModel(), models)
	ctx2 := newTestContext(postModel(), models)

	with := map[string]any{"views": 3.0, "title": "a", "content": "b"}
	w1, err := BuildWith(ctx1, with)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := BuildWith(ctx2, with)
	if err != nil {
		t.Fatal(err)
	}
	if w1 != w2 {
		t.Fatalf("expected deterministic output, got %q vs %q", w1, w2)
	}
}
