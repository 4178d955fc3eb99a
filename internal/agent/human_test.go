package agent

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltlabs/holdemd/internal/engine"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func humanView(toCall int, moves engine.Moves) *engine.View {
	v := ruleView(toCall, moves)
	return v
}

func TestHumanProposeBeforeTurnIsOutOfTurn(t *testing.T) {
	h := NewHuman(0, 30*time.Second, quartz.NewMock(t), testLogger())
	err := h.Propose(engine.CallAction(), "")
	assert.ErrorIs(t, err, ErrOutOfTurn)
}

func TestHumanProposeDeliversDecision(t *testing.T) {
	h := NewHuman(0, 30*time.Second, quartz.NewMock(t), testLogger())

	got := make(chan Decision, 1)
	go func() {
		d, err := h.Decide(context.Background(), humanView(20, facingBet))
		require.NoError(t, err)
		got <- d
	}()

	require.Eventually(t, func() bool {
		return h.Propose(engine.CallAction(), "seems fine") == nil
	}, time.Second, time.Millisecond)

	select {
	case d := <-got:
		assert.Equal(t, engine.Call, d.Action.Kind)
		assert.Equal(t, "seems fine", d.Reasoning)
		assert.False(t, d.TimedOut)
	case <-time.After(time.Second):
		t.Fatal("decision never delivered")
	}
}

func TestHumanTimeoutFoldsFacingBet(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	trap := mClock.Trap().AfterFunc()
	defer trap.Close()

	h := NewHuman(0, 30*time.Second, mClock, testLogger())
	got := make(chan Decision, 1)
	go func() {
		d, err := h.Decide(ctx, humanView(20, facingBet))
		require.NoError(t, err)
		got <- d
	}()

	call := trap.MustWait(ctx)
	call.Release()
	mClock.Advance(30 * time.Second).MustWait(ctx)

	d := <-got
	assert.True(t, d.TimedOut)
	assert.Equal(t, engine.Fold, d.Action.Kind)
}

func TestHumanTimeoutChecksWhenFree(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	trap := mClock.Trap().AfterFunc()
	defer trap.Close()

	h := NewHuman(0, 30*time.Second, mClock, testLogger())
	got := make(chan Decision, 1)
	go func() {
		d, err := h.Decide(ctx, humanView(0, noBet))
		require.NoError(t, err)
		got <- d
	}()

	call := trap.MustWait(ctx)
	call.Release()
	mClock.Advance(30 * time.Second).MustWait(ctx)

	d := <-got
	assert.True(t, d.TimedOut)
	assert.Equal(t, engine.Check, d.Action.Kind)
}

func TestHumanProposeRejectsIllegalAction(t *testing.T) {
	h := NewHuman(0, 30*time.Second, quartz.NewMock(t), testLogger())

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer close(done)
		h.Decide(ctx, humanView(20, facingBet)) //nolint:errcheck
	}()

	// Check is not in the legal set while facing a bet.
	require.Eventually(t, func() bool {
		var invalid *InvalidActionError
		return errors.As(h.Propose(engine.CheckAction(), ""), &invalid)
	}, time.Second, time.Millisecond)

	var invalid *InvalidActionError
	err := h.Propose(engine.RaiseTo(5), "")
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "range")

	cancel()
	<-done
}

func TestHumanDecideCancellation(t *testing.T) {
	h := NewHuman(0, 30*time.Second, quartz.NewMock(t), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Decide(ctx, humanView(20, facingBet))
	assert.ErrorIs(t, err, context.Canceled)
}
