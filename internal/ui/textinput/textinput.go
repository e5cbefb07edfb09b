// Package textinput is the single-line prompt popup used for playlist
// names, media URLs and import paths.
package textinput

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlouvel/playdeck/internal/ui"
	"github.com/mlouvel/playdeck/internal/ui/popup"
	"github.com/mlouvel/playdeck/internal/ui/styles"
)

var _ popup.Popup = (*Model)(nil)

// Model is the prompt popup.
type Model struct {
	ui.Base
	title   string
	text    string
	context any // handed back untouched in the Result
}

func New() Model {
	return Model{}
}

// Start opens the prompt. initialText pre-fills the field, e.g. the
// current name when renaming.
func (m *Model) Start(title, initialText string, context any, width, height int) {
	m.title = title
	m.text = initialText
	m.context = context
	m.SetSize(width, height)
}

// Reset clears the prompt state.
func (m *Model) Reset() {
	m.title = ""
	m.text = ""
	m.context = nil
}

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "enter":
		return m, m.emit(Result{Text: m.text, Context: m.context})
	case "esc":
		return m, m.emit(Result{Canceled: true, Context: m.context})
	case "backspace":
		if m.text != "" {
			m.text = m.text[:len(m.text)-1]
		}
	default:
		// Printable input only; named keys (tab, arrows) fall through
		// as multi-character strings and are dropped.
		if len(s) == 1 && s[0] >= 32 {
			m.text += s
		}
	}
	return m, nil
}

func (m *Model) emit(res Result) tea.Cmd {
	return func() tea.Msg { return ActionMsg(res) }
}

// View implements popup.Popup.
func (m *Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}
	s := styles.T().S()

	title := s.Title.Render(m.title)
	field := s.Base.Render("> "+m.text) + "█"
	hint := s.Subtle.Render("Enter: confirm, Esc: cancel")

	return title + "\n\n" + field + "\n\n" + hint
}
