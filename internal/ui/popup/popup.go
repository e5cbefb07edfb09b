// Package popup renders modal components centered over the main view.
package popup

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlouvel/playdeck/internal/ui/styles"
)

// Popup is the contract every modal component satisfies. The host view
// drives Update with raw messages and overlays View's output.
type Popup interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Popup, tea.Cmd)
	// View renders the inner content; the host adds border and centering.
	View() string
	SetSize(width, height int)
}

// SizeConfig controls how a popup is sized against the screen.
// Zero percentages mean fit to the content.
type SizeConfig struct {
	WidthPct  int
	HeightPct int
	MaxWidth  int
}

// SizeAuto fits the popup to its content.
var SizeAuto = SizeConfig{}

// RenderBordered wraps content in a rounded border and centers it on a
// screenW x screenH canvas.
func RenderBordered(content string, screenW, screenH int, size SizeConfig) string {
	width, height := fit(content, screenW, screenH, size)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border).
		Width(width - 2).
		Height(height - 2).
		Padding(1, 2).
		Render(content)

	return center(box, screenW, screenH)
}

func fit(content string, screenW, screenH int, size SizeConfig) (width, height int) {
	if size.WidthPct > 0 {
		return screenW * size.WidthPct / 100, screenH * size.HeightPct / 100
	}

	width = widestLine(content) + 6 // padding plus border
	if size.MaxWidth > 0 && width > size.MaxWidth {
		width = size.MaxWidth
	}
	if limit := screenW - 4; width > limit {
		width = limit
	}

	height = strings.Count(content, "\n") + 5
	if limit := screenH - 4; height > limit {
		height = limit
	}
	return width, height
}

func widestLine(s string) int {
	widest := 0
	for line := range strings.SplitSeq(s, "\n") {
		if w := lipgloss.Width(line); w > widest {
			widest = w
		}
	}
	return widest
}

func center(box string, screenW, screenH int) string {
	lines := strings.Split(box, "\n")

	padTop := (screenH - len(lines)) / 2
	padLeft := (screenW - widestLine(box)) / 2
	if padTop < 0 {
		padTop = 0
	}
	if padLeft < 0 {
		padLeft = 0
	}

	var b strings.Builder
	for range padTop {
		b.WriteString(strings.Repeat(" ", screenW))
		b.WriteByte('\n')
	}
	indent := strings.Repeat(" ", padLeft)
	for _, line := range lines {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
