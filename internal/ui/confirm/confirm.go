// Package confirm asks before destructive operations. It runs in two
// shapes: a plain yes/no question, or a short option list whose last
// entry always means "do nothing".
package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlouvel/playdeck/internal/ui"
	"github.com/mlouvel/playdeck/internal/ui/popup"
	"github.com/mlouvel/playdeck/internal/ui/styles"
)

var _ popup.Popup = (*Model)(nil)

// Model is the confirmation popup.
type Model struct {
	ui.Base
	title    string
	message  string
	context  any
	active   bool
	options  []string // empty = yes/no mode
	selected int
}

func New() Model {
	return Model{}
}

// Show opens the popup in yes/no mode. context is handed back untouched
// in the Result so the caller knows what was being confirmed.
func (m *Model) Show(title, message string, context any, width, height int) {
	m.ShowWithOptions(title, message, nil, context, width, height)
}

// ShowWithOptions opens the popup with a selectable option list. The
// last option is the safe exit: picking it reports Confirmed=false.
func (m *Model) ShowWithOptions(title, message string, options []string, context any, width, height int) {
	m.title = title
	m.message = message
	m.context = context
	m.options = options
	m.selected = 0
	m.active = true
	m.SetSize(width, height)
}

// Reset closes and clears the popup.
func (m *Model) Reset() {
	*m = Model{}
}

// Active reports whether the popup is on screen.
func (m Model) Active() bool {
	return m.active
}

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.active {
		return m, nil
	}
	if len(m.options) > 0 {
		return m, m.optionKey(key.String())
	}
	return m, m.yesNoKey(key.String())
}

func (m *Model) yesNoKey(key string) tea.Cmd {
	switch key {
	case "enter", "y", "Y":
		return m.emit(true, 0)
	case "esc", "n", "N":
		return m.emit(false, 0)
	}
	return nil
}

func (m *Model) optionKey(key string) tea.Cmd {
	last := len(m.options) - 1
	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < last {
			m.selected++
		}
	case "enter":
		return m.emit(m.selected < last, m.selected)
	case "esc":
		return m.emit(false, last)
	}
	return nil
}

// emit deactivates the popup and produces the Result command.
func (m *Model) emit(confirmed bool, selected int) tea.Cmd {
	m.active = false
	ctx := m.context
	return func() tea.Msg {
		return ActionMsg(Result{Confirmed: confirmed, Context: ctx, SelectedOption: selected})
	}
}

// View implements popup.Popup.
func (m *Model) View() string {
	if !m.active || m.Width() == 0 || m.Height() == 0 {
		return ""
	}
	s := styles.T().S()

	title := s.Title.Render(m.title)
	message := s.Base.Render(m.message)

	if len(m.options) == 0 {
		hint := s.Subtle.Render("Enter/Y: confirm, Esc/N: cancel")
		return title + "\n\n" + message + "\n\n" + hint
	}

	rows := make([]string, len(m.options))
	for i, opt := range m.options {
		if i == m.selected {
			rows[i] = s.Playing.Render("> " + opt)
		} else {
			rows[i] = s.Base.Render("  " + opt)
		}
	}
	hint := s.Subtle.Render("↑↓/jk navigate · enter select")
	return title + "\n\n" + message + "\n\n" +
		lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n\n" + hint
}
