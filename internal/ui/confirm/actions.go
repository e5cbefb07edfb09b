package confirm

import (
	"github.com/mlouvel/playdeck/internal/ui/action"
)

// Result is what the popup answers with. Context is the caller's value
// from Show, returned untouched; SelectedOption only matters in option
// mode.
type Result struct {
	Confirmed      bool
	Context        any
	SelectedOption int
}

// ActionType implements action.Action.
func (a Result) ActionType() string { return "confirm.result" }

// ActionMsg wraps a confirm action for the app's action router.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "confirm", Action: a}
}
