package session

import (
	"errors"

	"github.com/feltlabs/holdemd/internal/engine"
)

// ErrNoLegalActions means the engine reported an empty legal set; the
// orchestrator treats it as an agent failure and errors the hand.
var ErrNoLegalActions = errors.New("no legal actions reported")

// ValidateAction normalizes a proposed action against the engine's legal
// set and raise range. It is pure: the engine is read, never mutated.
//
//  1. Raise outside the range is clamped to the nearest endpoint when
//     Raise is legal, otherwise rewritten to Call.
//  2. An action still outside the legal set degrades through the ladder
//     Check, Call, Fold.
//
// The returned action is exactly what gets handed to the engine.
func ValidateAction(moves engine.Moves, a engine.Action) (engine.Action, error) {
	if moves.Empty() {
		return engine.Action{}, ErrNoLegalActions
	}

	if a.Kind == engine.Raise {
		if moves.Contains(engine.Raise) {
			if a.Amount < moves.RaiseMin {
				a.Amount = moves.RaiseMin
			}
			if a.Amount > moves.RaiseMax {
				a.Amount = moves.RaiseMax
			}
		} else {
			a = engine.CallAction()
		}
	}

	if moves.Contains(a.Kind) {
		if a.Kind != engine.Raise {
			a.Amount = 0
		}
		return a, nil
	}
	return fallbackAction(moves, engine.Check, engine.Call, engine.Fold)
}

// FallbackFromCall is the agent-failure ladder: the seat could not
// produce any decision, so continue as cheaply as possible, preferring
// Call per the decision pipeline's degradation policy.
func FallbackFromCall(moves engine.Moves) (engine.Action, error) {
	if moves.Empty() {
		return engine.Action{}, ErrNoLegalActions
	}
	return fallbackAction(moves, engine.Call, engine.Check, engine.Fold)
}

func fallbackAction(moves engine.Moves, ladder ...engine.ActionKind) (engine.Action, error) {
	for _, k := range ladder {
		if moves.Contains(k) {
			return engine.Action{Kind: k}, nil
		}
	}
	return engine.Action{}, ErrNoLegalActions
}
