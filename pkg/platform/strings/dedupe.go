// Package strings holds small string helpers for configuration parsing.
package strings

import "strings"

// SplitList splits raw on sep, trims each item and drops blanks and repeats.
// First occurrence wins, so order is kept. An empty input yields nil.
func SplitList(raw, sep string) []string {
	var out []string
	seen := map[string]bool{}
	for item := range strings.SplitSeq(raw, sep) {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
