package schema

// Statement is one compiled SQL statement plus its bound parameters
// (spec.md §6 "Output — statement").
type Statement struct {
	SQL       string
	Params    []Value
	Returning bool
}

// Options configures a compile (spec.md §4.6 "Option semantics").
type Options struct {
	InlineParams   bool
	InlineDefaults bool
	ExpandColumns  bool
}

// LoadedField is one selected column's output shape: the SQL alias it was
// selected under, and the dotted (possibly "[0]"-suffixed) path under
// which its value is mounted in the reshaped record (spec.md §4.4.3 /
// glossary "Mounting path").
type LoadedField struct {
	Alias        string
	MountingPath string
	Field        *Field // nil for computed/including columns with no backing field
}
