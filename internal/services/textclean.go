package services

import "strings"

// CleanText collapses every run of whitespace, newlines included, into a
// single space and trims both ends. It is total: any input yields a result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
