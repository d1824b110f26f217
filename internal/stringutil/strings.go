// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// JoinNatural joins items as a grammatical English conjunction.
// Three or more items use the serial comma: "a, b, and c".
// Two items join with " and ", a single item is returned as-is,
// and an empty list renders the fallback phrase.
//
// Example:
//
//	JoinNatural([]string{"Python", "Flask", "React"}, "various things")
//	returns "Python, Flask, and React"
func JoinNatural(items []string, fallback string) string {
	// Drop blank entries so a sparse profile list never yields ", and ".
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			parts = append(parts, s)
		}
	}

	switch len(parts) {
	case 0:
		return fallback
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

// Truncate shortens s to at most max runes, appending "..." when truncated.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// FirstNonEmpty returns the first non-blank value, or "" when all are blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
