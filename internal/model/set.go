// Package model implements the in-memory model layer (spec.md §4.2, C2):
// model lookup, field resolution, default-attribute/field/preset
// injection, and associative/system-model synthesis.
package model

import (
	"github.com/ronin-co/compiler/internal/schema"
)

// Set is the owned, mutable collection of models threaded through one
// compile. DDL lowering (C3) adds models (on create) and removes them
// (on drop) in place, so later queries in the same batch observe the
// change — spec.md §9 "Mutable model list during a batch". A Set must
// never be shared between two Transactions.
type Set struct {
	models []*schema.Model
}

func NewSet(models []*schema.Model) *Set {
	return &Set{models: models}
}

// All returns every model currently in the set, in insertion order.
func (s *Set) All() []*schema.Model {
	return s.models
}

// Get returns the model whose slug or plural slug equals slug.
func (s *Set) Get(slug string) (*schema.Model, error) {
	for _, m := range s.models {
		if m.MatchesSlug(slug) {
			return m, nil
		}
	}
	return nil, schema.ModelNotFoundError(slug)
}

// Lookup is Get without the error, for call sites that treat "missing" as
// a legitimate outcome (e.g. DDL existence checks).
func (s *Set) Lookup(slug string) *schema.Model {
	for _, m := range s.models {
		if m.MatchesSlug(slug) {
			return m
		}
	}
	return nil
}

// Add appends a model to the set.
func (s *Set) Add(m *schema.Model) {
	s.models = append(s.models, m)
}

// Remove deletes the model (and, transitively, none of its dependents —
// callers are responsible for also removing any associative models) whose
// slug or plural slug equals slug.
func (s *Set) Remove(slug string) {
	out := s.models[:0]
	for _, m := range s.models {
		if !m.MatchesSlug(slug) {
			out = append(out, m)
		}
	}
	s.models = out
}

// Replace swaps the model at oldSlug for replacement in place, preserving
// its position in the set.
func (s *Set) Replace(oldSlug string, replacement *schema.Model) {
	for i, m := range s.models {
		if m.MatchesSlug(oldSlug) {
			s.models[i] = replacement
			return
		}
	}
}

// LinksInto returns every field across every model (system models
// excluded) that is a link field targeting the given model slug — used
// to synthesize the "child rows that link into me" presets (spec.md
// §4.2's addDefaultModelPresets third bullet).
func (s *Set) LinksInto(targetSlug string) []LinkingField {
	var out []LinkingField
	for _, m := range s.models {
		if m.IsSystem() {
			continue
		}
		for i := range m.Fields {
			f := &m.Fields[i]
			if f.IsLink() && f.Target == targetSlug {
				out = append(out, LinkingField{Model: m, Field: f})
			}
		}
	}
	return out
}

type LinkingField struct {
	Model *schema.Model
	Field *schema.Field
}
