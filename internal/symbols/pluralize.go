package symbols

import "strings"

// Pluralize implements the exact suffix-group rules spec.md §4.1 requires:
//
//   - ends with a consonant followed by "y"  -> drop the "y", append "ies"
//   - ends with "s", "ch", "sh", or "ex"     -> append "es"
//   - otherwise                              -> append "s"
//
// gobuffalo/flect.Pluralize covers a much larger (and more correct, in the
// general case) set of English irregulars, but it would silently diverge
// from this fixed rule set on common slugs (e.g. it pluralizes "index" to
// "indices", not "indexes"). Determinism against the spec's stated rules
// matters more here than broader linguistic coverage, so the three rules
// are applied directly instead.
func Pluralize(slug string) string {
	if slug == "" {
		return slug
	}

	lower := strings.ToLower(slug)

	if strings.HasSuffix(lower, "y") && len(slug) >= 2 && !isVowel(rune(lower[len(lower)-2])) {
		return slug[:len(slug)-1] + "ies"
	}

	for _, suffix := range []string{"s", "ch", "sh", "ex"} {
		if strings.HasSuffix(lower, suffix) {
			return slug + "es"
		}
	}

	return slug + "s"
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
