// Package overlay splices a popup into a rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose lays overlay over base, line by line. Only the visibly
// non-blank span of each overlay line replaces the base; the base shows
// through around it. Both strings may carry ANSI styling.
func Compose(base, overlay string, width, _ int) string {
	baseLines := strings.Split(base, "\n")

	for i, line := range strings.Split(overlay, "\n") {
		if i >= len(baseLines) {
			break
		}
		plain := ansi.Strip(line)
		if strings.TrimSpace(plain) == "" {
			continue
		}

		from, to := visibleSpan(plain)
		spliced := ansi.Cut(padTo(baseLines[i], width), 0, from) + ansi.Cut(line, from, to)
		if to < width {
			spliced += ansi.Cut(padTo(baseLines[i], width), to, width)
		}
		baseLines[i] = spliced
	}

	return strings.Join(baseLines, "\n")
}

// visibleSpan returns the column range of plain with the surrounding
// blank runs excluded.
func visibleSpan(plain string) (from, to int) {
	for _, r := range plain {
		if r != ' ' {
			break
		}
		from++
	}
	trimmed := strings.TrimRight(plain, " ")
	return from, from + ansi.StringWidth(trimmed[from:])
}

func padTo(line string, width int) string {
	if w := ansi.StringWidth(ansi.Strip(line)); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}
