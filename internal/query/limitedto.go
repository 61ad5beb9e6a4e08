package query

import "fmt"

// BuildLimit compiles the `limitedTo` instruction (spec.md §4.4.6).
// Single-record queries always get LIMIT 1 regardless of a caller-supplied
// page size. Multi-record queries request one extra row over the page
// size, letting the caller detect a following page.
func BuildLimit(isSingleRecord bool, limitedTo *int) string {
	if isSingleRecord {
		return "LIMIT 1"
	}
	if limitedTo == nil {
		return ""
	}
	return fmt.Sprintf("LIMIT %d", *limitedTo+1)
}
