// Package helpbindings renders the scrollable keybinding reference popup.
package helpbindings

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlouvel/playdeck/internal/keymap"
	"github.com/mlouvel/playdeck/internal/ui"
	"github.com/mlouvel/playdeck/internal/ui/popup"
	"github.com/mlouvel/playdeck/internal/ui/styles"
)

var _ popup.Popup = (*Model)(nil)

// Sections render in this order regardless of how contexts were passed in.
var sectionOrder = []string{"global", "playback", "playlists", "tracks"}

var sectionLabels = map[string]string{
	"global":    "Global",
	"playback":  "Playback",
	"playlists": "Playlists",
	"tracks":    "Tracks",
}

// section groups the bindings of one context under a header.
type section struct {
	label string
	rows  []keymap.Binding
}

// Model is the help popup state. Scrolling works on rendered lines, not
// bindings, so headers and separators scroll with their rows.
type Model struct {
	ui.Base
	sections     []section
	scrollOffset int
}

func New() Model {
	return Model{}
}

// SetContexts selects which binding contexts to show and rewinds the
// scroll position.
func (m *Model) SetContexts(contexts []string) {
	m.sections = nil
	for _, ctx := range sectionOrder {
		if !slices.Contains(contexts, ctx) {
			continue
		}
		rows := keymap.ByContext(ctx)
		if len(rows) == 0 {
			continue
		}
		label := sectionLabels[ctx]
		if label == "" {
			label = ctx
		}
		m.sections = append(m.sections, section{label: label, rows: rows})
	}
	m.scrollOffset = 0
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "?", "esc", "q":
		return m, func() tea.Msg { return ActionMsg(Close{}) }
	case "j", "down":
		if m.scrollOffset < m.maxScroll() {
			m.scrollOffset++
		}
	case "k", "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}

	lines := m.bodyLines()

	// The popup keeps one width across scroll positions, so measure
	// every line, not just the visible window.
	width := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > width {
			width = w
		}
	}

	visible := m.visibleHeight()
	from := min(m.scrollOffset, len(lines))
	to := min(from+visible, len(lines))
	window := lines[from:to]
	for i, line := range window {
		if w := lipgloss.Width(line); w < width {
			window[i] = line + strings.Repeat(" ", width-w)
		}
	}

	s := styles.T().S()
	var b strings.Builder
	b.WriteString(s.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(window, "\n"))
	b.WriteString("\n\n")
	b.WriteString(s.Subtle.Render(m.footer(len(lines), visible)))
	return b.String()
}

// bodyLines renders every section to a flat slice of styled lines.
func (m *Model) bodyLines() []string {
	s := styles.T().S()
	keyStyle := s.Playing
	headerStyle := lipgloss.NewStyle().Foreground(styles.T().Secondary).Bold(true)

	keyWidth := 0
	for _, sec := range m.sections {
		for _, row := range sec.rows {
			if w := len(strings.Join(row.Keys, ", ")); w > keyWidth {
				keyWidth = w
			}
		}
	}

	var lines []string
	for i, sec := range m.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			headerStyle.Render(sec.label),
			s.Subtle.Render(strings.Repeat("─", keyWidth+15)))
		for _, row := range sec.rows {
			keys := strings.Join(row.Keys, ", ")
			lines = append(lines,
				keyStyle.Render(keys+strings.Repeat(" ", keyWidth-len(keys)))+
					"  "+s.Base.Render(row.Description))
		}
	}
	return lines
}

func (m *Model) footer(total, visible int) string {
	if total <= visible {
		return "?/esc close"
	}
	return "j/k scroll · ?/esc close"
}

// visibleHeight leaves room for the title, footer, and popup chrome.
func (m *Model) visibleHeight() int {
	return max(m.Height()-10, 5)
}

func (m *Model) maxScroll() int {
	total := len(m.bodyLines())
	visible := m.visibleHeight()
	if total <= visible {
		return 0
	}
	return total - visible
}
