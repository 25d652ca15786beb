package flow

import "strings"

// IsAvailable reports whether ingredient matches any confirmed name. Only the
// lower-cased first word of each side is compared, and either may contain
// the other, so "tomato" matches "Tomatoes" and "Olive oil" matches "olive".
func IsAvailable(ingredient string, confirmed []string) bool {
	want := firstWord(ingredient)
	if want == "" {
		return false
	}
	for _, c := range confirmed {
		have := firstWord(c)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
