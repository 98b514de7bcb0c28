package domain

import (
	"strconv"
	"strings"
)

// FormatFCFA renders a monetary amount with thousands separators, e.g.
// "1 250 000 FCFA". Amounts are truncated to whole francs for display.
func FormatFCFA(v float64) string {
	return GroupDigits(int64(v)) + " FCFA"
}

// GroupDigits renders an integer with space-separated thousands groups.
func GroupDigits(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
