package engine

import (
	"fmt"
	"strings"
)

// ActionKind enumerates the betting actions a seat can take.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
)

// String returns the symbolic wire name (FOLD, CHECK, CALL, RAISE).
func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "FOLD"
	case Check:
		return "CHECK"
	case Call:
		return "CALL"
	case Raise:
		return "RAISE"
	default:
		return "UNKNOWN"
	}
}

// ParseActionKind maps a symbolic name to an ActionKind, case-insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOLD":
		return Fold, nil
	case "CHECK":
		return Check, nil
	case "CALL":
		return Call, nil
	case "RAISE":
		return Raise, nil
	default:
		return Fold, fmt.Errorf("engine: unknown action %q", s)
	}
}

// Action is a proposed or applied betting action. For Raise, Amount is the
// total bet for the current street, never a delta.
type Action struct {
	Kind   ActionKind
	Amount int
}

// String renders the action for logs, e.g. "RAISE(60)".
func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("RAISE(%d)", a.Amount)
	}
	return a.Kind.String()
}

// FoldAction, CheckAction and CallAction are convenience constructors for
// the amount-free actions.
func FoldAction() Action  { return Action{Kind: Fold} }
func CheckAction() Action { return Action{Kind: Check} }
func CallAction() Action  { return Action{Kind: Call} }

// RaiseTo constructs a raise to the given street total.
func RaiseTo(total int) Action { return Action{Kind: Raise, Amount: total} }
