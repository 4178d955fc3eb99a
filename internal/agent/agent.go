// Package agent defines the decision-maker abstraction for a poker seat
// and the built-in rule-based personalities. Agents receive an immutable
// view and return decisions; they never mutate game state.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/feltlabs/holdemd/internal/engine"
)

// Decision is an agent's answer for one turn.
type Decision struct {
	Action     engine.Action
	Reasoning  string
	Confidence float64
	TimedOut   bool // set when a human seat fell back to the timeout default
}

// Agent makes decisions for a single seat. Decide may block (human input,
// LLM round-trips) and must honor ctx cancellation. The returned error is
// wrapped into a Failure by the caller; agents themselves should return
// the underlying cause.
type Agent interface {
	// Name identifies the agent for logs and the wire state.
	Name() string

	// Decide produces an action for the view's seat.
	Decide(ctx context.Context, v *engine.View) (Decision, error)
}

// Failure marks a seat's agent as unable to produce a decision this turn.
// Never fatal to a session: the orchestrator degrades to the validator's
// fallback ladder.
type Failure struct {
	Seat  int
	Cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("agent failure at seat %d: %v", f.Seat, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// InvalidActionError rejects a proposal that is illegal in the current
// state, with a reason suitable for the wire.
type InvalidActionError struct {
	Action engine.Action
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %s: %s", e.Action, e.Reason)
}

// ErrOutOfTurn is returned when an action is proposed for a seat that is
// not the current player.
var ErrOutOfTurn = errors.New("not this seat's turn")

// ErrActionPending is returned when a seat already has an undelivered
// proposal in its mailbox.
var ErrActionPending = errors.New("an action is already pending for this seat")
