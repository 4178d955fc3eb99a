// Package holdem is the built-in rules engine: a minimal no-limit
// hold'em table with simplified betting arithmetic (one pot, coarse hand
// ranking, ties broken by seat order). It implements the engine.Engine
// contract and mirrors the upstream engine's behavior faithfully,
// including the quirk where a hand that ends by everyone folding credits
// the winner but leaves the pot total in place; the session's
// reconciliation pass exists to clean that up.
package holdem

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/feltlabs/holdemd/internal/engine"
	"github.com/feltlabs/holdemd/internal/randutil"
)

// Table is a deterministic engine.Engine for a fixed set of seats. Not
// safe for concurrent use; callers serialize access.
type Table struct {
	buyin int
	sb    int
	bb    int

	chips  []int
	state  []engine.SeatState
	hole   [][]engine.Card
	board  []engine.Card
	phase  engine.Phase
	button int

	deck    []engine.Card
	deckPos int
	rng     *rand.Rand

	potTotal   int
	streetBet  []int
	currentBet int
	minRaiseTo int
	queue      []int
}

// NewTable creates a table of n seats, each staked with buyin chips. The
// seed fixes the shuffle so tests replay identical hands.
func NewTable(n, buyin, smallBlind, bigBlind int, seed int64) *Table {
	if n < 2 {
		panic("holdem: need at least two seats")
	}
	t := &Table{
		buyin:     buyin,
		sb:        smallBlind,
		bb:        bigBlind,
		chips:     make([]int, n),
		state:     make([]engine.SeatState, n),
		hole:      make([][]engine.Card, n),
		streetBet: make([]int, n),
		button:    n - 1, // first hand puts the button on seat 0
		phase:     engine.PreHand,
		rng:       randutil.New(seed),
	}
	for i := range t.chips {
		t.chips[i] = buyin
		t.state[i] = engine.SeatIn
	}
	return t
}

func (t *Table) IsGameRunning() bool {
	n := 0
	for _, c := range t.chips {
		if c > 0 {
			n++
		}
	}
	return n >= 2
}

func (t *Table) IsHandRunning() bool { return t.phase.IsBetting() }

func (t *Table) StartHand() error {
	if t.IsHandRunning() {
		return errors.New("holdem: hand already running")
	}
	if !t.IsGameRunning() {
		return errors.New("holdem: game is over")
	}

	t.potTotal = 0
	t.board = nil
	for i := range t.state {
		t.streetBet[i] = 0
		t.hole[i] = nil
		if t.chips[i] > 0 {
			t.state[i] = engine.SeatIn
		} else {
			t.state[i] = engine.SeatOut
		}
	}
	t.button = t.next(t.button, func(s int) bool { return t.chips[s] > 0 })

	t.shuffle()
	for round := 0; round < 2; round++ {
		for s := range t.hole {
			if t.state[s] != engine.SeatOut {
				t.hole[s] = append(t.hole[s], t.draw())
			}
		}
	}

	// Heads-up the button posts the small blind and acts first.
	sbSeat := t.next(t.button, t.live)
	if t.liveCount() == 2 {
		sbSeat = t.button
	}
	bbSeat := t.next(sbSeat, t.live)
	t.post(sbSeat, t.sb)
	t.post(bbSeat, t.bb)
	t.currentBet = t.bb
	t.minRaiseTo = 2 * t.bb
	t.phase = engine.PreFlop
	t.buildQueue(t.next(bbSeat, t.canAct), -1)
	t.refreshStates()
	if len(t.queue) == 0 {
		t.advanceStreet()
	}
	return nil
}

func (t *Table) CurrentPlayer() (int, bool) {
	if !t.phase.IsBetting() || len(t.queue) == 0 {
		return 0, false
	}
	return t.queue[0], true
}

func (t *Table) HandPhase() engine.Phase { return t.phase }

func (t *Table) Board() []engine.Card {
	return append([]engine.Card(nil), t.board...)
}

func (t *Table) HandOf(seat int) []engine.Card {
	return append([]engine.Card(nil), t.hole[seat]...)
}

func (t *Table) ChipsToCall(seat int) int {
	d := t.currentBet - t.streetBet[seat]
	if d < 0 {
		d = 0
	}
	if d > t.chips[seat] {
		d = t.chips[seat]
	}
	return d
}

// MinRaise reports the raise increment rather than the enforced street
// total, matching the production engine's advisory behavior.
func (t *Table) MinRaise() int { return t.minRaiseTo - t.currentBet }

func (t *Table) AvailableMoves() engine.Moves {
	seat, ok := t.CurrentPlayer()
	if !ok {
		return engine.Moves{}
	}
	var m engine.Moves
	if t.ChipsToCall(seat) == 0 {
		m.Actions = append(m.Actions, engine.Check)
	} else {
		m.Actions = append(m.Actions, engine.Call)
	}
	maxTotal := t.streetBet[seat] + t.chips[seat]
	if maxTotal > t.currentBet {
		m.Actions = append(m.Actions, engine.Raise)
		m.RaiseMin = t.minRaiseTo
		if m.RaiseMin > maxTotal {
			m.RaiseMin = maxTotal
		}
		m.RaiseMax = maxTotal
	}
	m.Actions = append(m.Actions, engine.Fold)
	return m
}

func (t *Table) ValidateMove(seat int, a engine.Action) bool {
	cur, ok := t.CurrentPlayer()
	if !ok || cur != seat {
		return false
	}
	m := t.AvailableMoves()
	if !m.Contains(a.Kind) {
		return false
	}
	if a.Kind == engine.Raise && (a.Amount < m.RaiseMin || a.Amount > m.RaiseMax) {
		return false
	}
	return true
}

func (t *Table) TakeAction(a engine.Action) error {
	seat, ok := t.CurrentPlayer()
	if !ok {
		return errors.New("holdem: no decision pending")
	}
	if !t.ValidateMove(seat, a) {
		return fmt.Errorf("holdem: illegal %s for seat %d", a, seat)
	}
	t.queue = t.queue[1:]

	switch a.Kind {
	case engine.Fold:
		t.state[seat] = engine.SeatFolded
	case engine.Check:
		// nothing to pay
	case engine.Call:
		t.post(seat, t.currentBet-t.streetBet[seat])
	case engine.Raise:
		prev := t.currentBet
		t.post(seat, a.Amount-t.streetBet[seat])
		t.currentBet = t.streetBet[seat]
		t.minRaiseTo = t.currentBet + (t.currentBet - prev)
		t.buildQueue(t.next(seat, t.canAct), seat)
	}
	t.refreshStates()

	if len(t.contenders()) == 1 {
		t.settleFoldWin()
		return nil
	}
	if len(t.queue) == 0 {
		t.advanceStreet()
	}
	return nil
}

func (t *Table) Pots() []engine.Pot {
	return []engine.Pot{{ID: 0, Total: t.potTotal, Eligible: t.SeatsInPot()}}
}

func (t *Table) ClearPots() { t.potTotal = 0 }

func (t *Table) Chips(seat int) int { return t.chips[seat] }

func (t *Table) SeatState(seat int) engine.SeatState { return t.state[seat] }

func (t *Table) NumSeats() int { return len(t.chips) }

func (t *Table) ButtonSeat() int { return t.button }

func (t *Table) SeatsInPot() []int { return t.contenders() }

// HandRank scores hands coarsely: pairs and board matches beat high
// cards, nothing else is modelled. Good enough to produce a stable total
// order at showdown.
func (t *Table) HandRank(seat int) (int, bool) {
	h := t.hole[seat]
	if len(h) < 2 || len(h)+len(t.board) < 5 {
		return 0, false
	}
	if t.state[seat] == engine.SeatFolded || t.state[seat] == engine.SeatOut {
		return 0, false
	}
	score := int(h[0].Rank) + int(h[1].Rank)
	if h[0].Rank == h[1].Rank {
		score += 120
	}
	for _, b := range t.board {
		if b.Rank == h[0].Rank || b.Rank == h[1].Rank {
			score += 160
		}
	}
	rank := 7462 - score*8
	if rank < 1 {
		rank = 1
	}
	return rank, true
}

// AddChips tops a seat up mid-test. Breaks conservation on purpose, for
// tests that want reconciliation to fail.
func (t *Table) AddChips(seat, amount int) { t.chips[seat] += amount }

func (t *Table) shuffle() {
	t.deck = t.deck[:0]
	for r := engine.Two; r <= engine.Ace; r++ {
		for s := engine.Spades; s <= engine.Clubs; s++ {
			t.deck = append(t.deck, engine.NewCard(r, s))
		}
	}
	t.rng.Shuffle(len(t.deck), func(i, j int) {
		t.deck[i], t.deck[j] = t.deck[j], t.deck[i]
	})
	t.deckPos = 0
}

func (t *Table) draw() engine.Card {
	c := t.deck[t.deckPos]
	t.deckPos++
	return c
}

// post moves up to amount chips from the seat into the pot, clamping to
// the stack and marking the seat all-in when it empties.
func (t *Table) post(seat, amount int) {
	if amount > t.chips[seat] {
		amount = t.chips[seat]
	}
	t.chips[seat] -= amount
	t.streetBet[seat] += amount
	t.potTotal += amount
	if t.chips[seat] == 0 {
		t.state[seat] = engine.SeatAllIn
	}
}

func (t *Table) live(s int) bool {
	switch t.state[s] {
	case engine.SeatIn, engine.SeatToCall, engine.SeatAllIn:
		return true
	}
	return false
}

func (t *Table) canAct(s int) bool {
	switch t.state[s] {
	case engine.SeatIn, engine.SeatToCall:
		return true
	}
	return false
}

func (t *Table) liveCount() int {
	n := 0
	for s := range t.state {
		if t.live(s) {
			n++
		}
	}
	return n
}

func (t *Table) contenders() []int {
	var out []int
	for i := 0; i < len(t.state); i++ {
		s := (t.button + 1 + i) % len(t.state)
		if t.live(s) {
			out = append(out, s)
		}
	}
	return out
}

// next returns the first seat after from satisfying pred, wrapping around.
func (t *Table) next(from int, pred func(int) bool) int {
	n := len(t.chips)
	for i := 1; i <= n; i++ {
		s := (from + i) % n
		if pred(s) {
			return s
		}
	}
	return from
}

// buildQueue seeds the action order from start, skipping exclude and any
// seat that cannot act.
func (t *Table) buildQueue(start, exclude int) {
	n := len(t.chips)
	t.queue = t.queue[:0]
	for i := 0; i < n; i++ {
		s := (start + i) % n
		if s == exclude || !t.canAct(s) {
			continue
		}
		t.queue = append(t.queue, s)
	}
}

func (t *Table) refreshStates() {
	for s := range t.state {
		if !t.canAct(s) {
			continue
		}
		if t.streetBet[s] < t.currentBet {
			t.state[s] = engine.SeatToCall
		} else {
			t.state[s] = engine.SeatIn
		}
	}
}

func (t *Table) advanceStreet() {
	for i := range t.streetBet {
		t.streetBet[i] = 0
	}
	t.currentBet = 0
	t.minRaiseTo = t.bb

	switch t.phase {
	case engine.PreFlop:
		t.board = append(t.board, t.draw(), t.draw(), t.draw())
		t.phase = engine.Flop
	case engine.Flop:
		t.board = append(t.board, t.draw())
		t.phase = engine.Turn
	case engine.Turn:
		t.board = append(t.board, t.draw())
		t.phase = engine.River
	case engine.River:
		t.showdown()
		return
	default:
		return
	}

	t.buildQueue(t.next(t.button, t.canAct), -1)
	t.refreshStates()
	// With at most one seat able to act there is no betting; deal on.
	if len(t.queue) < 2 {
		t.queue = t.queue[:0]
		t.advanceStreet()
	}
}

// settleFoldWin pays the last contender. Known defect: the pot total
// is not cleared on this path; the session layer reconciles it after
// every fold-ended hand, so a fix here must land together with that
// code.
func (t *Table) settleFoldWin() {
	winner := t.contenders()[0]
	t.chips[winner] += t.potTotal
	t.phase = engine.PreHand
	t.queue = nil
}

func (t *Table) showdown() {
	best, bestRank := -1, 1<<30
	for _, s := range t.contenders() {
		r, ok := t.HandRank(s)
		if ok && r < bestRank {
			best, bestRank = s, r
		}
	}
	t.chips[best] += t.potTotal
	t.potTotal = 0
	t.phase = engine.PreHand
	t.queue = nil
}
