package textinput

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/mlouvel/playdeck/internal/ui/action"
)

func started(title, initial string, context any) *Model {
	m := New()
	m.Start(title, initial, context, 80, 24)
	return &m
}

func press(m *Model, key tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(key)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, runes(string(r)))
	}
}

// resultOf executes the command a confirm/cancel key produced.
func resultOf(t *testing.T, cmd tea.Cmd) Result {
	t.Helper()
	if cmd == nil {
		t.Fatal("key should produce a result command")
	}
	msg, ok := cmd().(action.Msg)
	if !ok {
		t.Fatal("command should carry an action.Msg")
	}
	res, ok := msg.Action.(Result)
	if !ok {
		t.Fatalf("action = %T, want Result", msg.Action)
	}
	return res
}

func TestSubmit(t *testing.T) {
	cases := []struct {
		name    string
		initial string
		typed   string
		want    string
	}{
		{"typed text", "", "Jazz", "Jazz"},
		{"initial text kept", "Road Mix", "", "Road Mix"},
		{"typed appends to initial", "Road", " Mix", "Road Mix"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := started("Rename playlist", tc.initial, nil)
			typeText(m, tc.typed)

			res := resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
			if res.Text != tc.want {
				t.Errorf("Text = %q, want %q", res.Text, tc.want)
			}
			if res.Canceled {
				t.Error("enter must not cancel")
			}
		})
	}
}

func TestBackspace(t *testing.T) {
	m := started("New playlist", "Jazz", nil)
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})

	res := resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if res.Text != "Ja" {
		t.Errorf("Text = %q, want %q", res.Text, "Ja")
	}

	// Empty input absorbs further backspaces.
	m = started("New playlist", "", nil)
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	res = resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
}

func TestCancelKeepsContext(t *testing.T) {
	m := started("New playlist", "typed", "create")

	res := resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEsc}))
	if !res.Canceled {
		t.Error("esc must cancel")
	}
	if res.Context != "create" {
		t.Errorf("Context = %v, want %q", res.Context, "create")
	}
}

func TestSubmitKeepsContext(t *testing.T) {
	m := started("New playlist", "", "create")
	typeText(m, "x")

	res := resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if res.Context != "create" {
		t.Errorf("Context = %v, want %q", res.Context, "create")
	}
}

func TestControlKeysIgnored(t *testing.T) {
	m := started("New playlist", "", nil)
	typeText(m, "a")
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "b")

	res := resultOf(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if res.Text != "ab" {
		t.Errorf("Text = %q, want %q", res.Text, "ab")
	}
}

func TestView(t *testing.T) {
	m := started("Add media", "paste url", nil)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Add media", "paste url", "Enter: confirm"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}

	m.Reset()
	if strings.Contains(ansi.Strip(m.View()), "Add media") {
		t.Error("reset must clear the view")
	}
}

func TestViewEmptyWithoutSize(t *testing.T) {
	m := New()
	m.Start("Add media", "", nil, 0, 0)

	if m.View() != "" {
		t.Errorf("View = %q, want empty at zero size", m.View())
	}
}
