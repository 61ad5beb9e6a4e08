package ddl

import (
	"fmt"
	"strings"

	"github.com/ronin-co/compiler/internal/model"
	"github.com/ronin-co/compiler/internal/schema"
	"github.com/ronin-co/compiler/internal/symbols"
)

// CreateIndexStatement renders `CREATE [UNIQUE] INDEX "<snake>" ON "<table>"
// (<cols>) [WHERE ...]`. The index is named after the model slug and the
// index slug, joined with "_" and snake_cased; an empty field list is
// rejected with INVALID_MODEL_VALUE.
func CreateIndexStatement(m *schema.Model, idx *schema.Index) (schema.Statement, error) {
	if len(idx.Fields) == 0 {
		return schema.Statement{}, schema.NewErrorf(schema.ErrInvalidModelValue, "Index %s must name at least one field", idx.Slug)
	}

	var cols []string
	for _, f := range idx.Fields {
		col := model.QuoteIdent(f.Slug)
		if f.Order == "DESC" {
			col += " DESC"
		}
		cols = append(cols, col)
	}

	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	name := symbols.SnakeCase(m.Slug + "_" + idx.Slug)
	sql := fmt.Sprintf(`CREATE %sINDEX %s ON %s (%s)`, unique, model.QuoteIdent(name), model.QuoteIdent(m.Table), strings.Join(cols, ", "))
	if idx.Filter != "" {
		sql += " WHERE " + idx.Filter
	}
	return schema.Statement{SQL: sql}, nil
}

// DropIndexStatement renders `DROP INDEX "<snake>"`.
func DropIndexStatement(m *schema.Model, idx *schema.Index) schema.Statement {
	name := symbols.SnakeCase(m.Slug + "_" + idx.Slug)
	return schema.Statement{SQL: fmt.Sprintf(`DROP INDEX %s`, model.QuoteIdent(name))}
}
