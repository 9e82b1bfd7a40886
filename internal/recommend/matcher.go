// Package recommend scores the therapy catalog against an assessment profile
// and picks supporting supplements for the winning therapies.
package recommend

import "strings"

// Matcher reports whether keyword occurs in text. Scoring only ever asks
// this question, so a tokenising or fuzzy matcher can replace the default.
type Matcher func(text, keyword string) bool

// Contains is the default Matcher: case-insensitive substring containment.
func Contains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}
