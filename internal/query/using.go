package query

import "github.com/ronin-co/compiler/internal/schema"

// ApplyPresets resolves each `using` entry against m's preset list, deep
// clones its instructions substituting any embedded VALUE token with the
// caller's argument, and merges the result into instr in place (spec.md
// §4.4.7): object instructions shallow-extend, array instructions
// concatenate, missing ones are assigned outright.
func ApplyPresets(m *schema.Model, instr *schema.Instructions) error {
	for _, use := range instr.Using {
		preset := m.GetPreset(use.Slug)
		if preset == nil {
			return schema.PresetNotFoundError(use.Slug)
		}
		var arg any
		if use.HasArg {
			arg = use.Arg
		}
		cloned := cloneInstructions(preset.Instructions, arg)
		mergeInstructions(instr, cloned)
	}
	return nil
}

func cloneInstructions(src *schema.Instructions, arg any) *schema.Instructions {
	if src == nil {
		return &schema.Instructions{}
	}
	return &schema.Instructions{
		With:      substituteMap(src.With, arg),
		To:        substituteMap(src.To, arg),
		Selecting: append([]string{}, src.Selecting...),
		Including: substituteMap(src.Including, arg),
		OrderedBy: schema.OrderedBy{
			Ascending:  append([]string{}, src.OrderedBy.Ascending...),
			Descending: append([]string{}, src.OrderedBy.Descending...),
		},
		Before:    src.Before,
		After:     src.After,
		LimitedTo: src.LimitedTo,
		Using:     append([]schema.PresetUse{}, src.Using...),
	}
}

func substituteValue(v any, arg any) any {
	switch t := v.(type) {
	case string:
		if t == schema.TokenValue {
			return arg
		}
		return t
	case map[string]any:
		return substituteMap(t, arg)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = substituteValue(item, arg)
		}
		return out
	case *schema.Symbol:
		if t != nil && t.Kind == schema.SymbolLiteral {
			if s, ok := t.Literal.(string); ok && s == schema.TokenValue {
				return schema.NewLiteral(arg)
			}
		}
		return t
	default:
		return t
	}
}

func substituteMap(src map[string]any, arg any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = substituteValue(v, arg)
	}
	return out
}

// mergeInstructions folds preset into dst: maps shallow-extend (dst's own
// keys win on conflict), slices concatenate, and unset dst fields are
// assigned outright.
func mergeInstructions(dst *schema.Instructions, preset *schema.Instructions) {
	dst.With = mergeExtend(dst.With, preset.With)
	dst.To = mergeExtend(dst.To, preset.To)
	dst.Including = mergeExtend(dst.Including, preset.Including)

	if len(preset.Selecting) > 0 {
		dst.Selecting = append(dst.Selecting, preset.Selecting...)
	}
	dst.OrderedBy.Ascending = append(dst.OrderedBy.Ascending, preset.OrderedBy.Ascending...)
	dst.OrderedBy.Descending = append(dst.OrderedBy.Descending, preset.OrderedBy.Descending...)

	if dst.Before == nil {
		dst.Before = preset.Before
	}
	if dst.After == nil {
		dst.After = preset.After
	}
	if dst.LimitedTo == nil {
		dst.LimitedTo = preset.LimitedTo
	}
}

func mergeExtend(dst, src map[string]any) map[string]any {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}
