package services

import (
	"strings"
	"unicode"
)

// naturalLess compares strings in a way that treats numbers as numbers rather than characters
// For example: "file2" < "file10" when using naturalLess
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		for i < len(s1) && unicode.IsSpace(rune(s1[i])) {
			i++
		}
		for j < len(s2) && unicode.IsSpace(rune(s2[j])) {
			j++
		}
		if i >= len(s1) || j >= len(s2) {
			break
		}

		if isDigit(s1[i]) && isDigit(s2[j]) {
			start1, start2 := i, j
			for i < len(s1) && isDigit(s1[i]) {
				i++
			}
			for j < len(s2) && isDigit(s2[j]) {
				j++
			}
			n1 := strings.TrimLeft(s1[start1:i], "0")
			n2 := strings.TrimLeft(s2[start2:j], "0")
			// Compare by length first so long digit runs cannot overflow
			if len(n1) != len(n2) {
				return len(n1) < len(n2)
			}
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}

		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}

	if len(s1) != len(s2) {
		return len(s1) < len(s2)
	}
	return s1 < s2
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
