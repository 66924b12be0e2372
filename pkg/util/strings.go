package util

import "strings"

// NormalizeSymbol upper-cases and trims a ticker so cache keys, registry
// lookups and provider calls agree on one spelling.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
