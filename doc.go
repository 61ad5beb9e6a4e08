// Package ronin compiles RONIN query batches into parameterised SQLite
// statements and reshapes a driver's returned rows back into nested
// records (spec.md §2 "System overview", C6). It never opens a
// connection or executes SQL itself: callers run the emitted statements
// with whatever driver they choose and hand the resulting rows back to
// FormatResults.
//
// The public surface re-exports the core internal/schema types under
// package-level aliases, so callers never import internal/schema
// directly (spec.md §9 "no import cycle through the public package").
package ronin

import (
	"github.com/ronin-co/compiler/internal/schema"
)

type (
	Model       = schema.Model
	Field       = schema.Field
	FieldType   = schema.FieldType
	LinkKind    = schema.LinkKind
	Index       = schema.Index
	IndexField  = schema.IndexField
	Trigger     = schema.Trigger
	Preset      = schema.Preset
	Identifiers = schema.Identifiers
	Query       = schema.Query
	QueryKind   = schema.QueryKind
	Instructions = schema.Instructions
	OrderedBy   = schema.OrderedBy
	PresetUse   = schema.PresetUse
	MetaQuery   = schema.MetaQuery
	MetaAction  = schema.MetaAction
	EntityType  = schema.EntityType
	Symbol      = schema.Symbol
	Statement   = schema.Statement
	Options     = schema.Options
	LoadedField = schema.LoadedField
	Error       = schema.Error
	ErrorCode   = schema.ErrorCode
)

const (
	Get    = schema.Get
	Set    = schema.Set
	Add    = schema.Add
	Remove = schema.Remove
	Count  = schema.Count
	Create = schema.Create
	Alter  = schema.Alter
	Drop   = schema.Drop
)

const (
	FieldString  = schema.FieldString
	FieldNumber  = schema.FieldNumber
	FieldBoolean = schema.FieldBoolean
	FieldDate    = schema.FieldDate
	FieldJSON    = schema.FieldJSON
	FieldBlob    = schema.FieldBlob
	FieldLink    = schema.FieldLink
)

const (
	LinkOne  = schema.LinkOne
	LinkMany = schema.LinkMany
)

var (
	NewLiteral    = schema.NewLiteral
	NewExpression = schema.NewExpression
	NewSubQuery   = schema.NewSubQuery
)
