package query

import (
	"strings"
	"testing"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

func TestBuildInsert_SynthesisesID(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	res, err := BuildInsert(ctx, map[string]any{"title": "Hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.ColumnsAndValues, `"id"`) {
		t.Fatalf("expected a synthesised id column: %s", res.ColumnsAndValues)
	}
	found := false
	for _, p := range ctx.Params.Params() {
		if s, ok := p.(string); ok && strings.HasPrefix(s, "pos_") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a pos_-prefixed id among params: %v", ctx.Params.Params())
	}
}

func TestBuildInsert_RejectsEmpty(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	_, err := BuildInsert(ctx, map[string]any{})
	if err == nil {
		t.Fatal("expected an error for empty `to`")
	}
}

func TestBuildUpdate_AlwaysTouchesUpdatedAt(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	res, err := BuildUpdate(ctx, map[string]any{"title": "New title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.SetClause, `"ronin.updatedAt" =`) {
		t.Fatalf("expected ronin.updatedAt touch: %s", res.SetClause)
	}
	if !strings.Contains(res.SetClause, `"title" = ?1`) {
		t.Fatalf("expected title assignment: %s", res.SetClause)
	}
}

func TestBuildUpdate_ExcludesManyLinkFromRowAssignment(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), tagModel()})
	ctx := newTestContext(postModel(), models)

	res, err := BuildUpdate(ctx, map[string]any{"tags": []any{"tag_1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.SetClause, `"tags"`) {
		t.Fatalf("many-link field must not appear in the row SET clause: %s", res.SetClause)
	}
}

func TestManyLinkDependencies_BareArrayReplacesAll(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), tagModel(), assocModel()})
	ctx := newTestContext(postModel(), models)
	field := postModel().GetField("tags")

	stmts, err := ManyLinkDependencies(ctx, field, "pos_1", []any{"tag_1", "tag_2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 1 delete + 2 inserts, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[0].SQL, "DELETE FROM") {
		t.Fatalf("expected delete-all first, got %s", stmts[0].SQL)
	}
	for _, s := range stmts[1:] {
		if !strings.HasPrefix(s.SQL, "INSERT INTO") {
			t.Fatalf("expected insert, got %s", s.SQL)
		}
	}
}

func TestManyLinkDependencies_Containing(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), tagModel(), assocModel()})
	ctx := newTestContext(postModel(), models)
	field := postModel().GetField("tags")

	stmts, err := ManyLinkDependencies(ctx, field, "pos_1", map[string]any{"containing": []any{"tag_1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 || !strings.HasPrefix(stmts[0].SQL, "INSERT INTO") {
		t.Fatalf("expected a single insert, got %v", stmts)
	}
}

func TestManyLinkDependencies_NotContaining(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel(), tagModel(), assocModel()})
	ctx := newTestContext(postModel(), models)
	field := postModel().GetField("tags")

	stmts, err := ManyLinkDependencies(ctx, field, "pos_1", map[string]any{"notContaining": []any{"tag_1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 || !strings.HasPrefix(stmts[0].SQL, "DELETE FROM") {
		t.Fatalf("expected a single delete, got %v", stmts)
	}
}

func TestRenderValue_ExpressionSymbolIsNotParameterised(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	ph, err := renderValue(ctx, postModel().GetField("views"), schema.NewExpression("views + 1"))
	if err != nil {
		t.Fatal(err)
	}
	if ph != "(views + 1)" {
		t.Fatalf("unexpected rendering: %s", ph)
	}
	if len(ctx.Params.Params()) != 0 {
		t.Fatalf("expression should not bind a parameter, got %v", ctx.Params.Params())
	}
}
