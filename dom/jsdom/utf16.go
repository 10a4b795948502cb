package jsdom

import "unicode/utf16"

// runeOffset converts a UTF-16 code unit offset into s to a rune offset.
// An offset inside a surrogate pair rounds up to the following rune.
func runeOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n, u := 0, 0
	for _, r := range s {
		if u >= units {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return n
}

// unitOffset converts a rune offset into s to a UTF-16 code unit offset.
func unitOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	n, u := 0, 0
	for _, r := range s {
		if n >= runes {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return u
}
