package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltlabs/holdemd/internal/engine"
)

func chipSum(t *Table) int {
	total := 0
	for s := 0; s < t.NumSeats(); s++ {
		total += t.Chips(s)
	}
	return total
}

func potSum(t *Table) int {
	total := 0
	for _, p := range t.Pots() {
		total += p.Total
	}
	return total
}

func TestStartHandPostsBlinds(t *testing.T) {
	tbl := NewTable(3, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	assert.True(t, tbl.IsHandRunning())
	assert.Equal(t, engine.PreFlop, tbl.HandPhase())
	assert.Equal(t, 0, tbl.ButtonSeat())
	assert.Equal(t, 30, potSum(tbl))
	assert.Equal(t, 990, tbl.Chips(1)) // small blind
	assert.Equal(t, 980, tbl.Chips(2)) // big blind

	// UTG acts first and faces the big blind.
	seat, ok := tbl.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 0, seat)
	assert.Equal(t, 20, tbl.ChipsToCall(0))

	for s := 0; s < 3; s++ {
		assert.Len(t, tbl.HandOf(s), 2)
	}
	assert.Empty(t, tbl.Board())
}

func TestHeadsUpButtonIsSmallBlind(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	assert.Equal(t, 0, tbl.ButtonSeat())
	assert.Equal(t, 990, tbl.Chips(0))
	assert.Equal(t, 980, tbl.Chips(1))

	seat, ok := tbl.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 0, seat)
}

func TestFoldTerminationLeavesPhantomPot(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	require.NoError(t, tbl.TakeAction(engine.FoldAction()))

	assert.False(t, tbl.IsHandRunning())
	// Winner was paid, but the settled pot still reports its total.
	assert.Equal(t, 1010, tbl.Chips(1))
	assert.Equal(t, 30, potSum(tbl))
	assert.Equal(t, 2030, chipSum(tbl)+potSum(tbl))

	// Clearing the pots restores conservation.
	tbl.ClearPots()
	assert.Equal(t, 2000, chipSum(tbl)+potSum(tbl))
}

func TestCheckedDownHandReachesShowdown(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	// Button completes, big blind checks, then both check every street.
	require.NoError(t, tbl.TakeAction(engine.CallAction()))
	for tbl.IsHandRunning() {
		require.NoError(t, tbl.TakeAction(engine.CheckAction()))
	}

	assert.Equal(t, engine.PreHand, tbl.HandPhase())
	assert.Len(t, tbl.Board(), 5)
	// Showdown settles cleanly: no phantom chips.
	assert.Equal(t, 0, potSum(tbl))
	assert.Equal(t, 2000, chipSum(tbl))
}

func TestRaiseReopensAction(t *testing.T) {
	tbl := NewTable(3, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	moves := tbl.AvailableMoves()
	require.True(t, moves.Contains(engine.Raise))
	assert.Equal(t, 40, moves.RaiseMin)
	assert.Equal(t, 1000, moves.RaiseMax)

	require.NoError(t, tbl.TakeAction(engine.RaiseTo(60)))
	assert.Equal(t, 50, tbl.ChipsToCall(1))
	assert.Equal(t, 40, tbl.ChipsToCall(2))

	// Everyone including the blinds must respond to the raise.
	seat, ok := tbl.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 1, seat)

	// Min raise grows by the raise increment.
	require.NoError(t, tbl.TakeAction(engine.CallAction()))
	moves = tbl.AvailableMoves()
	assert.Equal(t, 100, moves.RaiseMin)
}

func TestBelowMinimumRaiseRejected(t *testing.T) {
	tbl := NewTable(3, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	assert.False(t, tbl.ValidateMove(0, engine.RaiseTo(30)))
	assert.Error(t, tbl.TakeAction(engine.RaiseTo(30)))

	// The advisory minimum is an increment, not the enforced total.
	assert.NotEqual(t, tbl.AvailableMoves().RaiseMin, tbl.MinRaise())
}

func TestOutOfTurnRejected(t *testing.T) {
	tbl := NewTable(3, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	assert.False(t, tbl.ValidateMove(2, engine.CallAction()))
}

func TestAllInCallRunsOutBoard(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	require.NoError(t, tbl.TakeAction(engine.RaiseTo(1000)))
	require.NoError(t, tbl.TakeAction(engine.CallAction()))

	// Both all-in: the board runs out and the hand settles without
	// further decisions.
	assert.False(t, tbl.IsHandRunning())
	assert.Len(t, tbl.Board(), 5)
	assert.Equal(t, 0, potSum(tbl))
	assert.Equal(t, 2000, chipSum(tbl))
	assert.False(t, tbl.IsGameRunning())
}

func TestBustedSeatSkipsNextHand(t *testing.T) {
	tbl := NewTable(3, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	// Seat 0 shoves, seat 1 folds, seat 2 calls all-in.
	require.NoError(t, tbl.TakeAction(engine.RaiseTo(1000)))
	require.NoError(t, tbl.TakeAction(engine.FoldAction()))
	require.NoError(t, tbl.TakeAction(engine.CallAction()))
	require.False(t, tbl.IsHandRunning())

	loser := 0
	if tbl.Chips(0) > 0 {
		loser = 2
	}
	require.Equal(t, 0, tbl.Chips(loser))

	require.NoError(t, tbl.StartHand())
	assert.Equal(t, engine.SeatOut, tbl.SeatState(loser))
	assert.Empty(t, tbl.HandOf(loser))
}

func TestHandRankNeedsFiveCards(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())

	_, ok := tbl.HandRank(0)
	assert.False(t, ok, "preflop rank should be unknown")

	require.NoError(t, tbl.TakeAction(engine.CallAction()))
	require.NoError(t, tbl.TakeAction(engine.CheckAction()))
	require.Equal(t, engine.Flop, tbl.HandPhase())

	r, ok := tbl.HandRank(0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, r, 1)
	assert.LessOrEqual(t, r, 7462)
}

func TestStartHandWhileRunningFails(t *testing.T) {
	tbl := NewTable(2, 1000, 10, 20, 1)
	require.NoError(t, tbl.StartHand())
	assert.Error(t, tbl.StartHand())
}
