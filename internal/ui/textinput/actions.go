package textinput

import (
	"github.com/mlouvel/playdeck/internal/ui/action"
)

// Result is the prompt's answer. Context is the caller's value from
// Start, returned untouched; Canceled means esc was pressed and Text
// should be ignored.
type Result struct {
	Text     string
	Context  any
	Canceled bool
}

// ActionType implements action.Action.
func (a Result) ActionType() string { return "textinput.result" }

// ActionMsg wraps a textinput action for the app's action router.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "textinput", Action: a}
}
