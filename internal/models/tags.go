package models

import "strings"

// normalizeTag lowercases and trims a tag for dedupe comparisons
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// CleanTags normalizes raw tag input: trims whitespace, drops empties and
// case-insensitive duplicates, preserving first-seen casing and order.
func CleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		trimmed := strings.TrimSpace(t)
		key := normalizeTag(trimmed)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
