package ddl

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
)

// CreateTableStatement renders the full `CREATE TABLE` for m, skipping
// many-kind link fields (they never materialise as a column). all is used
// to resolve link fields' target table names for the REFERENCES clause.
func CreateTableStatement(all *model.Set, m *schema.Model) schema.Statement {
	var cols []string
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.IsManyLink() {
			continue
		}
		targetTable := ""
		if f.IsLink() {
			if target, err := all.Get(f.Target); err == nil {
				targetTable = target.Table
			}
		}
		cols = append(cols, ColumnDefinition(f, targetTable))
	}
	sql := fmt.Sprintf("CREATE TABLE %s (%s)", model.QuoteIdent(m.Table), strings.Join(cols, ", "))
	return schema.Statement{SQL: sql}
}

// DropTableStatement renders `DROP TABLE`.
func DropTableStatement(m *schema.Model) schema.Statement {
	return schema.Statement{SQL: fmt.Sprintf("DROP TABLE %s", model.QuoteIdent(m.Table))}
}

// RenameTableStatement renders `ALTER TABLE ... RENAME TO ...`.
func RenameTableStatement(oldTable, newTable string) schema.Statement {
	return schema.Statement{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s", model.QuoteIdent(oldTable), model.QuoteIdent(newTable))}
}

// AddColumnStatement renders `ALTER TABLE ... ADD COLUMN ...` for a newly
// created non-many-link field.
func AddColumnStatement(all *model.Set, m *schema.Model, f *schema.Field) schema.Statement {
	targetTable := ""
	if f.IsLink() {
		if target, err := all.Get(f.Target); err == nil {
			targetTable = target.Table
		}
	}
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", model.QuoteIdent(m.Table), ColumnDefinition(f, targetTable))
	return schema.Statement{SQL: sql}
}

// RenameColumnStatement renders `ALTER TABLE ... RENAME COLUMN ... TO ...`.
func RenameColumnStatement(m *schema.Model, oldSlug, newSlug string) schema.Statement {
	sql := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", model.QuoteIdent(m.Table), model.QuoteIdent(oldSlug), model.QuoteIdent(newSlug))
	return schema.Statement{SQL: sql}
}

// DropColumnStatement renders `ALTER TABLE ... DROP COLUMN ...`.
func DropColumnStatement(m *schema.Model, slug string) schema.Statement {
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", model.QuoteIdent(m.Table), model.QuoteIdent(slug))
	return schema.Statement{SQL: sql}
}
