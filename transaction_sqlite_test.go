package ronin

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ronin-co/compiler/internal/schema"
)

// TestTransaction_RoundTripsThroughSQLite exercises the compiled
// statements against a real SQLite engine (spec.md §5 "the compiler
// targets SQLite's actual grammar, not an approximation of it"). The
// compiler itself never opens a connection; this test plays the part of
// the external caller that does.
func TestTransaction_RoundTripsThroughSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	queries := []*schema.Query{
		{Kind: schema.Create, Meta: &schema.MetaQuery{
			Action: schema.CreateModel,
			Model:  &schema.Model{Slug: "model"},
		}},
		{Kind: schema.Create, Meta: &schema.MetaQuery{
			Action: schema.CreateModel,
			Model: &schema.Model{
				Slug: "post",
				Fields: []schema.Field{
					{Slug: "title", Type: schema.FieldString, Required: true},
				},
			},
		}},
		{Kind: schema.Add, Models: map[string]*schema.Instructions{
			"post": {To: map[string]any{"title": "Hello"}},
		}},
	}

	tx, err := NewTransaction(queries, nil, schema.Options{}, fixedGen{"abcdef0123456789"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	for _, stmt := range tx.Statements() {
		args := make([]any, len(stmt.Params))
		for i, p := range stmt.Params {
			args[i] = p
		}
		if _, err := db.Exec(stmt.SQL, args...); err != nil {
			t.Fatalf("exec %q: %v", stmt.SQL, err)
		}
	}

	var title string
	if err := db.QueryRow(`SELECT "title" FROM "posts"`).Scan(&title); err != nil {
		t.Fatalf("select: %v", err)
	}
	if title != "Hello" {
		t.Fatalf("expected title %q, got %q", "Hello", title)
	}
}
