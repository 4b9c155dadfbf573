package highlight

import (
	"github.com/rivo/uniseg"
)

// Graphemes returns the number of user-perceived characters in s.
func Graphemes(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Prefix returns the first n grapheme clusters of s. A cluster is never
// split.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	state := -1
	rest := s
	for i := 0; i < n && rest != ""; i++ {
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
	}
	return s[:len(s)-len(rest)]
}
