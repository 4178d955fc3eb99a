package agent

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/feltlabs/holdemd/internal/analysis"
	"github.com/feltlabs/holdemd/internal/engine"
)

// strengthRule is the shared tight/loose/position_aware shape: fold weak
// hands to bets, continue with medium ones, raise strong ones.
func strengthRule(v *engine.View, foldBelow, raiseAbove float64, raiseTotal func(*engine.View) int) Decision {
	s := analysis.Strength(v)
	facing := v.ChipsToCall > 0

	if s > raiseAbove && v.Moves.Contains(engine.Raise) {
		return raiseTo(v, raiseTotal(v), fmt.Sprintf("strength %.2f, raising", s))
	}
	if s < foldBelow && facing {
		return pick(v, fmt.Sprintf("strength %.2f below %.2f", s, foldBelow), engine.Fold, engine.Check)
	}
	if facing {
		return pick(v, fmt.Sprintf("strength %.2f, continuing", s), engine.Call, engine.Check, engine.Fold)
	}
	return pick(v, fmt.Sprintf("strength %.2f, free card", s), engine.Check, engine.Call, engine.Fold)
}

func tightRule(v *engine.View, _ *rand.Rand) Decision {
	return strengthRule(v, 0.35, 0.6, func(v *engine.View) int {
		return 2 * v.Moves.RaiseMin
	})
}

func looseRule(v *engine.View, _ *rand.Rand) Decision {
	return strengthRule(v, 0.2, 0.55, func(v *engine.View) int {
		return v.Moves.RaiseMin
	})
}

// bluffRule raises 15% of the time on the flop and turn regardless of
// strength, otherwise plays the passive line.
func bluffRule(v *engine.View, rng *rand.Rand) Decision {
	onBluffStreet := v.Phase == engine.Flop || v.Phase == engine.Turn
	if onBluffStreet && v.Moves.Contains(engine.Raise) && rng.Float64() < 0.15 {
		return raiseTo(v, v.Moves.RaiseMin, "taking a stab at the pot")
	}
	return passiveRule(v, rng)
}

// positionAwareRule plays tight thresholds, loosened by 0.1 in the last
// third of the action order.
func positionAwareRule(v *engine.View, _ *rand.Rand) Decision {
	foldBelow, raiseAbove := 0.35, 0.6
	if analysis.SeatPosition(v) == analysis.Late {
		foldBelow -= 0.1
		raiseAbove -= 0.1
	}
	return strengthRule(v, foldBelow, raiseAbove, func(v *engine.View) int {
		return 2 * v.Moves.RaiseMin
	})
}
