package keywords

import "strings"

// DefaultKeyword is returned by ChooseBest when no keywords are active.
const DefaultKeyword = "general"

// Match returns the active keywords contained in text, case-insensitively,
// in the order they appear in active.
func Match(text string, active []string) []string {
	lowered := strings.ToLower(text)
	var matched []string
	for _, kw := range active {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// ChooseBest picks a single keyword for text: the first active keyword it
// contains, else the first active keyword, else DefaultKeyword.
func ChooseBest(text string, active []string) string {
	if len(active) == 0 {
		return DefaultKeyword
	}
	if matched := Match(text, active); len(matched) > 0 {
		return matched[0]
	}
	return active[0]
}
