package query

import (
	"testing"

	"github.com/ronin-co/compiler/internal/schema"
)

func TestApplyPresets_SubstitutesValueAndExtends(t *testing.T) {
	m := &schema.Model{
		Slug: "post",
		Presets: []schema.Preset{
			{
				Slug: "popular",
				Instructions: &schema.Instructions{
					With: map[string]any{"views": map[string]any{"greaterThan": schema.TokenValue}},
				},
			},
		},
	}

	instr := &schema.Instructions{With: map[string]any{"title": "Hello"}, Using: []schema.PresetUse{{Slug: "popular", Arg: 100.0, HasArg: true}}}
	if err := ApplyPresets(m, instr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := instr.With["title"]; !ok {
		t.Fatal("expected existing `title` entry to survive the merge")
	}
	views, ok := instr.With["views"].(map[string]any)
	if !ok {
		t.Fatalf("expected preset's `views` entry to be merged in: %v", instr.With)
	}
	if views["greaterThan"] != 100.0 {
		t.Fatalf("expected VALUE token substituted with 100.0, got %v", views["greaterThan"])
	}
}

func TestApplyPresets_UnknownSlug(t *testing.T) {
	m := &schema.Model{Slug: "post"}
	instr := &schema.Instructions{Using: []schema.PresetUse{{Slug: "missing"}}}

	err := ApplyPresets(m, instr)
	serr, ok := err.(*schema.Error)
	if !ok || serr.Code != schema.ErrPresetNotFound {
		t.Fatalf("expected PRESET_NOT_FOUND, got %v", err)
	}
}

func TestApplyPresets_ArraysConcatenate(t *testing.T) {
	m := &schema.Model{
		Slug: "post",
		Presets: []schema.Preset{
			{Slug: "withAuthor", Instructions: &schema.Instructions{Selecting: []string{"account"}}},
		},
	}
	instr := &schema.Instructions{Selecting: []string{"title"}, Using: []schema.PresetUse{{Slug: "withAuthor"}}}
	if err := ApplyPresets(m, instr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instr.Selecting) != 2 {
		t.Fatalf("expected concatenated selecting list, got %v", instr.Selecting)
	}
}
