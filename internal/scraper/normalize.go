package scraper

import "strings"

// Normalize collapses all whitespace runs (including newlines and tabs) to
// single spaces and trims the ends. This is the sole text-cleaning path:
// every extracted field passes through it before being stored or compared.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
