package symbols

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces the random hex material used for record ids and
// model identifiers. It is an injected capability (spec.md §5 "Randomness
// is an injected capability, not a global") so compiler tests can swap in
// a deterministic sequence.
type IDGenerator interface {
	// Hex16 returns 16 lower-case hex characters, the same shape SQLite's
	// own `lower(substr(hex(randomblob(12)), 1, 16))` id default produces.
	Hex16() string
}

// UUIDGenerator is the default IDGenerator, backed by github.com/google/uuid
// the same way the teacher's internal/auth package mints user ids.
type UUIDGenerator struct{}

func (UUIDGenerator) Hex16() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw[:16]
}

// NewModelID returns a fresh system model identifier: "mod_" + 16 hex chars.
func NewModelID(gen IDGenerator) string {
	return "mod_" + gen.Hex16()
}

// NewRecordID returns a fresh record id: "<idPrefix>_" + 16 hex chars,
// matching the expression SQLite evaluates for the `id` system field's
// default value.
func NewRecordID(gen IDGenerator, idPrefix string) string {
	return idPrefix + "_" + gen.Hex16()
}
