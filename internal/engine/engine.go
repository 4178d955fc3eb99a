// Package engine defines the contract between the session orchestrator and
// the Texas Hold'em rules engine it consumes. The orchestrator never deals
// cards, ranks hands or computes betting legality itself: it drives an
// Engine implementation through this interface and treats the answers as
// authoritative.
package engine

// Moves is the legal action set for the seat to act, together with the
// enforced raise range. RaiseMin and RaiseMax are street totals; they are
// meaningful only when Raise is among the actions.
//
// The engine's advisory MinRaise() is known to diverge from the enforced
// range, so callers must validate against Moves and never against
// MinRaise().
type Moves struct {
	Actions  []ActionKind
	RaiseMin int
	RaiseMax int
}

// Contains reports whether the action kind is legal.
func (m Moves) Contains(k ActionKind) bool {
	for _, a := range m.Actions {
		if a == k {
			return true
		}
	}
	return false
}

// Empty reports whether no action at all is legal.
func (m Moves) Empty() bool { return len(m.Actions) == 0 }

// Pot is one pot on the table. Side pots appear when all-ins fracture the
// betting; Eligible lists the seats that can win this pot.
type Pot struct {
	ID       int
	Total    int
	Eligible []int
}

// Engine is the consumed rules-engine handle for one table. Implementations
// are not required to be safe for concurrent use; the session serializes
// all access behind its lock. All calls are non-blocking CPU work.
type Engine interface {
	// IsGameRunning reports whether the table is still solvent (at least
	// two seats hold chips).
	IsGameRunning() bool

	// IsHandRunning reports whether a hand is in progress (PreFlop..River).
	IsHandRunning() bool

	// StartHand deals hole cards, posts blinds and advances to PreFlop.
	StartHand() error

	// CurrentPlayer returns the seat with a decision pending. ok is false
	// outside betting phases or when no decider remains.
	CurrentPlayer() (seat int, ok bool)

	// HandPhase returns the current phase.
	HandPhase() Phase

	// Board returns the ordered community cards.
	Board() []Card

	// HandOf returns the seat's hole cards. Cards persist until the next
	// StartHand so settle-time projections can show them; empty when the
	// seat has no dealt hand.
	HandOf(seat int) []Card

	// ChipsToCall returns the non-negative amount the seat must add to
	// continue.
	ChipsToCall(seat int) int

	// MinRaise is the engine's advisory minimum raise. Advisory only; see
	// Moves.
	MinRaise() int

	// AvailableMoves returns the legal action set and raise range for the
	// current player.
	AvailableMoves() Moves

	// ValidateMove reports whether the action would be accepted for the
	// seat without applying it.
	ValidateMove(seat int, a Action) bool

	// TakeAction applies the current player's action; the engine may
	// advance the phase as a result.
	TakeAction(a Action) error

	// Pots returns the current pots, main pot first.
	Pots() []Pot

	// ClearPots zeroes every pot's total. Remediation hook for the known
	// defect where fold-terminated hands leave the credited pot total in
	// place; see session.Reconcile.
	ClearPots()

	// Chips returns the seat's current stack.
	Chips(seat int) int

	// SeatState returns the seat's standing in the current hand.
	SeatState(seat int) SeatState

	// NumSeats returns the table size (dense seat ids 0..NumSeats-1).
	NumSeats() int

	// ButtonSeat returns the dealer button position.
	ButtonSeat() int

	// SeatsInPot returns the seats still contesting the pot, in action
	// order.
	SeatsInPot() []int

	// HandRank returns the 1..7462 rank of the seat's best five-card hand
	// (1 strongest). ok is false while fewer than five cards are visible
	// to the seat.
	HandRank(seat int) (rank int, ok bool)
}
