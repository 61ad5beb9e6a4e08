// Package ddl implements the DDL lowering / meta-query transformer
// (spec.md §4.3, C3): it rewrites create/alter/drop queries into DML
// against the root model plus CREATE/ALTER/DROP TABLE, CREATE INDEX, and
// CREATE TRIGGER dependency statements. Grounded on the teacher's
// internal/store/migrator.go (schema-diffing into ALTER statements) and
// internal/store/dialect_sqlite.go (SQLite type mapping), generalised
// from a fixed entity schema to RONIN's dynamic model descriptors.
package ddl

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/paramlist"
	"github.com/ronin-co/compiler/internal/schema"
)

// sqliteType maps a field's RONIN type to its SQLite column affinity.
// Link fields store the target's id string, so they share string's affinity.
func sqliteType(f *schema.Field) string {
	switch f.Type {
	case schema.FieldNumber:
		return "REAL"
	case schema.FieldBoolean:
		return "INTEGER"
	case schema.FieldBlob:
		return "BLOB"
	case schema.FieldString, schema.FieldDate, schema.FieldJSON, schema.FieldLink:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// ColumnDefinition renders one field as a CREATE-TABLE column definition,
// including its default, uniqueness, nullability, check, computed-column,
// and foreign-key pieces. Many-kind link fields never materialise as a
// column and must be filtered out by the caller before calling this.
// targetTable is the resolved table name for a link field's REFERENCES
// clause; it is ignored for non-link fields.
func ColumnDefinition(f *schema.Field, targetTable string) string {
	var b strings.Builder
	b.WriteString(model.QuoteIdent(f.Slug))
	b.WriteByte(' ')
	b.WriteString(sqliteType(f))

	if f.Slug == "id" {
		b.WriteString(" PRIMARY KEY")
	}
	if f.Unique {
		b.WriteString(" UNIQUE")
	}
	if f.Required {
		b.WriteString(" NOT NULL")
	}
	if f.ComputedAs != nil {
		fmt.Fprintf(&b, " GENERATED ALWAYS AS (%s) %s", f.ComputedAs.Value, f.ComputedAs.Kind)
	} else if f.DefaultValue != nil {
		fmt.Fprintf(&b, " DEFAULT (%s)", defaultExpr(f.DefaultValue))
	}
	if f.Collation != "" {
		fmt.Fprintf(&b, " COLLATE %s", f.Collation)
	}
	if f.Check != "" {
		fmt.Fprintf(&b, " CHECK (%s)", f.Check)
	}
	if f.IsLink() && targetTable != "" {
		fmt.Fprintf(&b, " REFERENCES %s(\"id\")", model.QuoteIdent(targetTable))
		if f.Actions.OnDelete != "" {
			fmt.Fprintf(&b, " ON DELETE %s", f.Actions.OnDelete)
		}
		if f.Actions.OnUpdate != "" {
			fmt.Fprintf(&b, " ON UPDATE %s", f.Actions.OnUpdate)
		}
	}
	return b.String()
}

func defaultExpr(sym *schema.Symbol) string {
	if sym.IsExpression() {
		return sym.Expression
	}
	return paramlist.InlineLiteral(sym.Literal)
}
