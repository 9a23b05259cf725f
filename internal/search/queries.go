package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BuildSearchQueries returns the deduplicated query set for a scale. When a
// cultural context is given, at least one query contains it.
func BuildSearchQueries(name, culturalContext string) []string {
	name = clean(name)
	culturalContext = clean(culturalContext)
	if name == "" {
		return []string{}
	}

	candidates := []string{name}
	if culturalContext != "" {
		candidates = append(candidates,
			name+" "+culturalContext,
			culturalContext+" "+name,
		)
	}
	candidates = append(candidates, name+" scale", name+" mode")

	seen := make(map[string]bool, len(candidates))
	queries := make([]string, 0, len(candidates))
	for _, q := range candidates {
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, q)
	}
	return queries
}

// clean composes the string to NFC and collapses whitespace
func clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
