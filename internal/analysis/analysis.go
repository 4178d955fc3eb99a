// Package analysis derives betting signals from a decision view: hand
// strength, pot odds and table position. Everything here is a pure
// read-through over the view; nothing mutates game state.
package analysis

import "github.com/feltlabs/holdemd/internal/engine"

// worstRank is the weakest five-card rank the rules engine reports.
const worstRank = 7462

// Position buckets a seat by its distance from the dealer button.
type Position int

const (
	Early Position = iota
	Middle
	Late
)

func (p Position) String() string {
	switch p {
	case Early:
		return "early"
	case Middle:
		return "middle"
	case Late:
		return "late"
	default:
		return "unknown"
	}
}

// Strength normalizes the engine's 1..7462 rank into [0,1], 1 strongest.
// Before five cards are visible the rank is unknown and a neutral 0.5 is
// returned.
func Strength(v *engine.View) float64 {
	if !v.RankKnown {
		return 0.5
	}
	s := 1 - float64(v.HandRank-1)/float64(worstRank-1)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// PotOdds returns chips_to_call / (pot + chips_to_call). ok is false when
// the seat faces no bet, where the ratio is undefined.
func PotOdds(v *engine.View) (float64, bool) {
	if v.ChipsToCall <= 0 {
		return 0, false
	}
	return float64(v.ChipsToCall) / float64(v.PotTotal+v.ChipsToCall), true
}

// WinProbability is a cheap heuristic: strength discounted by the number
// of live opponents. With nobody left to beat it is 1.
func WinProbability(v *engine.View) float64 {
	opps := v.NumLiveSeats() - 1
	if opps <= 0 {
		return 1
	}
	p := Strength(v) / (1 + 0.3*float64(opps))
	if p > 1 {
		return 1
	}
	return p
}

// SeatPosition buckets the view's seat into thirds of the action order
// after the button. The button itself is the latest possible position.
func SeatPosition(v *engine.View) Position {
	n := v.NumLiveSeats()
	if n <= 1 {
		return Late
	}
	dist := v.ButtonDistance()
	frac := float64(dist) / float64(n-1)
	switch {
	case frac < 1.0/3:
		return Early
	case frac < 2.0/3:
		return Middle
	default:
		return Late
	}
}
