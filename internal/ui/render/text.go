// Package render shapes metadata strings into fixed-width panel cells.
package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Sanitize strips control characters and invalid UTF-8 so titles pasted
// from arbitrary sources cannot break the terminal. Tabs survive,
// non-breaking spaces become plain spaces.
func Sanitize(s string) string {
	if !dirty(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			i++
		case r != '\t' && unicode.IsControl(r):
			i += size
		case r == ' ':
			b.WriteByte(' ')
			i += size
		default:
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return b.String()
}

// dirty reports whether Sanitize would change s; the common case is a
// clean string returned without allocation.
func dirty(s string) bool {
	for i := range len(s) {
		b := s[i]
		if b < 0x20 && b != '\t' {
			return true
		}
		if b >= 0x80 && b <= 0x9f {
			return true
		}
		if b == 0xc2 && i+1 < len(s) && s[i+1] == 0xa0 { // U+00A0
			return true
		}
	}
	return false
}

// Truncate fits s into maxWidth display cells, marking cuts with "...".
// Width math is display-cell aware (CJK, emoji).
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(Sanitize(s), maxWidth, "...")
}

// TruncateEllipsis is Truncate with a single-cell … marker.
func TruncateEllipsis(s string, maxWidth int) string {
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > maxWidth-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Pad right-fills s with spaces to width display cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// TruncateAndPad renders s at exactly width cells.
func TruncateAndPad(s string, width int) string {
	return Pad(Truncate(s, width), width)
}

// TruncateAndPadEllipsis renders s at exactly width cells with … cuts.
func TruncateAndPadEllipsis(s string, width int) string {
	return Pad(TruncateEllipsis(s, width), width)
}

// Separator draws a horizontal rule of width cells.
func Separator(width int) string {
	return strings.Repeat("─", width)
}
