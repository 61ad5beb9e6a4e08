package model

import (
	"encoding/json"

	"github.com/ronin-co/compiler/internal/schema"
)

// ToRecord flattens m into the flat field-slug → value record the root
// model's DDL-lowered `add`/`set` queries assign into `to` (spec.md §4.3).
// fields/indexes/triggers/presets are pre-serialised to JSON text, since
// they're bound through the root model's json-typed columns.
func ToRecord(m *schema.Model) (map[string]any, error) {
	fieldsJSON, err := json.Marshal(m.Fields)
	if err != nil {
		return nil, err
	}
	indexesJSON, err := json.Marshal(m.Indexes)
	if err != nil {
		return nil, err
	}
	triggersJSON, err := json.Marshal(m.Triggers)
	if err != nil {
		return nil, err
	}
	presetsJSON, err := json.Marshal(m.Presets)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"name":             m.Name,
		"pluralName":       m.PluralName,
		"slug":             m.Slug,
		"pluralSlug":       m.PluralSlug,
		"idPrefix":         m.IDPrefix,
		"table":            m.Table,
		"identifiers.name": m.Identifiers.Name,
		"identifiers.slug": m.Identifiers.Slug,
		"fields":           string(fieldsJSON),
		"indexes":          string(indexesJSON),
		"triggers":         string(triggersJSON),
		"presets":          string(presetsJSON),
	}, nil
}
