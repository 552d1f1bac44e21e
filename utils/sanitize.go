package utils

import (
	"strings"
	"unicode"
)

// CleanText normalizes user supplied free text. The text is kept as sent:
// markup and entities are not interpreted, and responses escape <, > and &
// when encoded (see RespondWithJSON). Control characters other than
// newline and tab are dropped.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
