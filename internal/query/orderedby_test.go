package query

import (
	"strings"
	"testing"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

func TestBuildOrderedBy_StringGetsCollateNocase(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	clause, err := BuildOrderedBy(ctx, schema.OrderedBy{Ascending: []string{"title"}, Descending: []string{"views"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(clause, `"title" COLLATE NOCASE ASC`) {
		t.Fatalf("expected COLLATE NOCASE on string field: %s", clause)
	}
	if strings.Contains(clause, `"views" COLLATE NOCASE`) {
		t.Fatalf("number field should not get COLLATE NOCASE: %s", clause)
	}
}

func TestBuildOrderedBy_ExpressionBypassesResolution(t *testing.T) {
	models := model.NewSet([]*schema.Model{postModel()})
	ctx := newTestContext(postModel(), models)

	clause, err := BuildOrderedBy(ctx, schema.OrderedBy{Ascending: []string{"length(title)"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "ORDER BY length(title) ASC" {
		t.Fatalf("expected raw expression passthrough: %s", clause)
	}
}

func TestWithCreatedAtTieBreak(t *testing.T) {
	ob := schema.OrderedBy{Descending: []string{"views"}}
	out := WithCreatedAtTieBreak(ob)
	if !HasCreatedAtTieBreak(out) {
		t.Fatal("expected a ronin.createdAt tie-break to be appended")
	}

	already := schema.OrderedBy{Ascending: []string{"ronin.createdAt"}}
	out2 := WithCreatedAtTieBreak(already)
	if len(out2.Descending) != 0 {
		t.Fatalf("should not append a second tie-break: %v", out2)
	}
}
