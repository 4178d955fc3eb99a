// Package enginetest provides a scriptable rules-engine double for unit
// tests that need exact control over a single decision point.
package enginetest

import "github.com/feltlabs/holdemd/internal/engine"

// Stub is a field-settable engine.Engine for unit tests that need exact
// control over a single decision point rather than a playable table.
type Stub struct {
	GameRunning bool
	HandRunning bool
	StartErr    error
	Cur         int
	CurOK       bool
	Phase       engine.Phase
	BoardCards  []engine.Card
	Hands       map[int][]engine.Card
	ToCall      map[int]int
	Advisory    int
	Legal       engine.Moves
	ValidFn     func(seat int, a engine.Action) bool
	TakeFn      func(a engine.Action) error
	Taken       []engine.Action
	PotList     []engine.Pot
	PotsCleared bool
	Stacks      map[int]int
	States      map[int]engine.SeatState
	Seats       int
	Button      int
	InPot       []int
	Ranks       map[int]int
}

func (s *Stub) IsGameRunning() bool { return s.GameRunning }
func (s *Stub) IsHandRunning() bool { return s.HandRunning }
func (s *Stub) StartHand() error    { return s.StartErr }

func (s *Stub) CurrentPlayer() (int, bool) { return s.Cur, s.CurOK }
func (s *Stub) HandPhase() engine.Phase    { return s.Phase }
func (s *Stub) Board() []engine.Card       { return s.BoardCards }

func (s *Stub) HandOf(seat int) []engine.Card { return s.Hands[seat] }
func (s *Stub) ChipsToCall(seat int) int      { return s.ToCall[seat] }
func (s *Stub) MinRaise() int                 { return s.Advisory }
func (s *Stub) AvailableMoves() engine.Moves  { return s.Legal }

func (s *Stub) ValidateMove(seat int, a engine.Action) bool {
	if s.ValidFn != nil {
		return s.ValidFn(seat, a)
	}
	if !s.Legal.Contains(a.Kind) {
		return false
	}
	if a.Kind == engine.Raise && (a.Amount < s.Legal.RaiseMin || a.Amount > s.Legal.RaiseMax) {
		return false
	}
	return true
}

func (s *Stub) TakeAction(a engine.Action) error {
	s.Taken = append(s.Taken, a)
	if s.TakeFn != nil {
		return s.TakeFn(a)
	}
	return nil
}

func (s *Stub) Pots() []engine.Pot { return s.PotList }

func (s *Stub) ClearPots() {
	s.PotsCleared = true
	for i := range s.PotList {
		s.PotList[i].Total = 0
	}
}

func (s *Stub) Chips(seat int) int { return s.Stacks[seat] }

func (s *Stub) SeatState(seat int) engine.SeatState { return s.States[seat] }

func (s *Stub) NumSeats() int     { return s.Seats }
func (s *Stub) ButtonSeat() int   { return s.Button }
func (s *Stub) SeatsInPot() []int { return s.InPot }

func (s *Stub) HandRank(seat int) (int, bool) {
	r, ok := s.Ranks[seat]
	return r, ok
}
