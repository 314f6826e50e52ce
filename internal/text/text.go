// Package text prepares labels for drawing: normalization and truncation
// against a caller supplied width function.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis marks a truncated label.
const Ellipsis = "…"

// Measure returns the drawn width of s in the caller's units.
type Measure func(s string) float64

// Clean composes s to NFC, drops control characters and collapses runs of
// whitespace into single spaces.
func Clean(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsControl(r):
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fit returns s unchanged when it fits in maxWidth, otherwise the longest
// prefix that fits once Ellipsis is appended. A label too narrow for even the
// ellipsis comes back as Ellipsis.
func Fit(s string, maxWidth float64, m Measure) string {
	if maxWidth <= 0 || m(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m(strings.TrimRightFunc(string(runes[:mid]), unicode.IsSpace)+Ellipsis) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimRightFunc(string(runes[:lo]), unicode.IsSpace) + Ellipsis
}
