package tags

import "strings"

// Normalize splits a comma-separated tag string into canonical tags
func Normalize(raw string) []string {
	return NormalizeList(strings.Split(raw, ","))
}

// NormalizeList trims and lowercases tags, dropping empties and repeats.
// First occurrence wins, so order is stable.
func NormalizeList(in []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range in {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Format renders tags for display
func Format(tags []string) string {
	return strings.Join(tags, ", ")
}

// HasAll reports whether every wanted tag is present in have
func HasAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range NormalizeList(have) {
		set[t] = true
	}
	for _, t := range NormalizeList(want) {
		if !set[t] {
			return false
		}
	}
	return true
}
