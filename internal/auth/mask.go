package auth

import "strings"

// visibleSuffix is how many trailing characters of a key stay readable
const visibleSuffix = 4

// MaskAPIKey hides every character of key except the last four.
// Keys of four characters or fewer are hidden entirely.
func MaskAPIKey(key string) string {
	runes := []rune(key)
	if len(runes) <= visibleSuffix {
		return strings.Repeat("*", len(runes))
	}

	hidden := len(runes) - visibleSuffix
	return strings.Repeat("*", hidden) + string(runes[hidden:])
}
