// Package symbols implements the string-casing, flatten/expand, deep-search
// and id/cursor-generation helpers shared by every other compiler package.
package symbols

import (
	"strings"

	"github.com/gobuffalo/flect"
)

// SnakeCase converts a camelCase or dotted slug into snake_case, e.g.
// "pluralSlug" -> "plural_slug", "ronin.createdAt" -> "ronin_created_at".
func SnakeCase(s string) string {
	s = strings.ReplaceAll(s, ".", "_")
	return flect.Underscore(s)
}

// CamelCase converts a snake_case or space-separated string into camelCase,
// e.g. "ronin_link_post_comments" -> "roninLinkPostComments".
func CamelCase(s string) string {
	return flect.Camelize(s)
}

// TitleCase converts a slug into a display name, e.g. "blogPost" -> "Blog Post".
func TitleCase(s string) string {
	return flect.Titleize(s)
}
