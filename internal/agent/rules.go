package agent

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/feltlabs/holdemd/internal/engine"
)

// ruleFunc is one personality: a pure function of the view and the
// agent's rng.
type ruleFunc func(v *engine.View, rng *rand.Rand) Decision

// RuleAgent is a deterministic or pseudorandom personality for one seat.
type RuleAgent struct {
	name string
	rng  *rand.Rand
	fn   ruleFunc
}

// NewRule builds the named personality. The rng is owned by the agent;
// hand it a seeded source for reproducible games.
func NewRule(name string, rng *rand.Rand) (*RuleAgent, error) {
	fn, ok := rules[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule agent %q", name)
	}
	return &RuleAgent{name: name, rng: rng, fn: fn}, nil
}

// RuleNames lists the available personalities, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(rules))
	for n := range rules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *RuleAgent) Name() string { return r.name }

func (r *RuleAgent) Decide(_ context.Context, v *engine.View) (Decision, error) {
	if v.Moves.Empty() {
		return Decision{}, errors.New("no legal actions")
	}
	return r.fn(v, r.rng), nil
}

var rules = map[string]ruleFunc{
	"call":              callRule,
	"random":            randomRule,
	"aggressive_random": aggressiveRandomRule,
	"passive":           passiveRule,
	"tight":             tightRule,
	"loose":             looseRule,
	"bluff":             bluffRule,
	"position_aware":    positionAwareRule,
}

// pick returns the first legal kind from the ladder, falling back to the
// first legal action of all.
func pick(v *engine.View, reasoning string, ladder ...engine.ActionKind) Decision {
	for _, k := range ladder {
		if v.Moves.Contains(k) {
			return Decision{Action: engine.Action{Kind: k}, Reasoning: reasoning, Confidence: 1}
		}
	}
	return Decision{
		Action:     engine.Action{Kind: v.Moves.Actions[0]},
		Reasoning:  "fallback: " + reasoning,
		Confidence: 0.5,
	}
}

// raiseTo clamps the total into the legal raise range. Callers must have
// checked that Raise is legal.
func raiseTo(v *engine.View, total int, reasoning string) Decision {
	if total < v.Moves.RaiseMin {
		total = v.Moves.RaiseMin
	}
	if total > v.Moves.RaiseMax {
		total = v.Moves.RaiseMax
	}
	return Decision{Action: engine.RaiseTo(total), Reasoning: reasoning, Confidence: 1}
}

func callRule(v *engine.View, _ *rand.Rand) Decision {
	if v.ChipsToCall > 0 {
		return pick(v, "calling the bet", engine.Call, engine.Check, engine.Fold)
	}
	return pick(v, "nothing to call", engine.Check, engine.Call, engine.Fold)
}

func randomRule(v *engine.View, rng *rand.Rand) Decision {
	return sampleAction(v, rng, v.Moves.Actions)
}

func aggressiveRandomRule(v *engine.View, rng *rand.Rand) Decision {
	var kinds []engine.ActionKind
	for _, k := range v.Moves.Actions {
		if k != engine.Fold {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		kinds = v.Moves.Actions
	}
	return sampleAction(v, rng, kinds)
}

// sampleAction draws uniformly from kinds; a drawn Raise gets a uniform
// amount over the legal range.
func sampleAction(v *engine.View, rng *rand.Rand, kinds []engine.ActionKind) Decision {
	k := kinds[rng.IntN(len(kinds))]
	a := engine.Action{Kind: k}
	if k == engine.Raise {
		span := v.Moves.RaiseMax - v.Moves.RaiseMin
		a.Amount = v.Moves.RaiseMin
		if span > 0 {
			a.Amount += rng.IntN(span + 1)
		}
	}
	return Decision{Action: a, Reasoning: "random pick", Confidence: 0.5}
}

func passiveRule(v *engine.View, _ *rand.Rand) Decision {
	if v.Moves.Contains(engine.Check) {
		return pick(v, "checking passively", engine.Check)
	}
	if chips := v.Chips(); chips > 0 && float64(v.ChipsToCall) > 0.4*float64(chips) {
		return pick(v, "bet too large for a passive line", engine.Fold, engine.Call)
	}
	return pick(v, "calling passively", engine.Call, engine.Fold)
}
