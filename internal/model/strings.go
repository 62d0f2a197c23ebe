package model

import "strings"

func foldLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// contains reports whether s contains any of the given substrings.
func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
