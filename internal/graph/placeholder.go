package graph

import "regexp"

// placeholderPattern matches {{identifier}} template placeholders embedded
// directly inside string literal values. The wire format has no separate
// placeholder section.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// PlaceholderIdentifiers returns the placeholder identifiers embedded in s,
// in order of occurrence. Repeated identifiers repeat.
func PlaceholderIdentifiers(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m[1]
	}
	return out
}
