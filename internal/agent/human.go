package agent

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltlabs/holdemd/internal/engine"
)

// proposal is one human action waiting for the turn loop.
type proposal struct {
	action    engine.Action
	reasoning string
}

// Human bridges an external player into the turn loop through a
// single-slot mailbox. Decide blocks until a proposal arrives or the
// timeout fires; Propose is called from the transport goroutine and only
// succeeds while this seat's decision is pending.
type Human struct {
	seat    int
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger

	slot chan proposal

	mu      sync.Mutex
	waiting bool
	moves   engine.Moves
}

// NewHuman creates the bridge for a seat. The quartz clock drives the
// decision timeout so tests can advance it manually.
func NewHuman(seat int, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *Human {
	return &Human{
		seat:    seat,
		timeout: timeout,
		clock:   clock,
		logger:  logger.WithPrefix("human").With("seat", seat),
		slot:    make(chan proposal, 1),
	}
}

func (h *Human) Name() string { return "human" }

// Decide waits for a proposal. On timeout it yields the configured
// default: Fold when facing a bet, Check otherwise. The TimedOut flag
// lets the caller emit a timeout event.
func (h *Human) Decide(ctx context.Context, v *engine.View) (Decision, error) {
	// Drain a stale proposal left over from a previous turn before
	// Propose can start delivering for this one.
	select {
	case <-h.slot:
	default:
	}

	h.mu.Lock()
	h.waiting = true
	h.moves = v.Moves
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.waiting = false
		h.mu.Unlock()
	}()

	timedOut := make(chan struct{})
	timer := h.clock.AfterFunc(h.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case p := <-h.slot:
		h.logger.Info("received action", "action", p.action)
		return Decision{Action: p.action, Reasoning: p.reasoning, Confidence: 1}, nil

	case <-timedOut:
		d := Decision{
			Action:     engine.CheckAction(),
			Reasoning:  "timed out, checking",
			Confidence: 0,
			TimedOut:   true,
		}
		if v.ChipsToCall > 0 {
			d.Action = engine.FoldAction()
			d.Reasoning = "timed out facing a bet, folding"
		}
		h.logger.Warn("decision timeout", "default", d.Action)
		return d, nil

	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}

// Propose delivers an external action into the mailbox. It fails with
// ErrOutOfTurn when this seat has no pending decision and with
// ErrActionPending when an earlier proposal has not been consumed yet.
// Legality is checked against the moves captured at Decide time; the
// session's validator still has the final word.
func (h *Human) Propose(a engine.Action, reasoning string) error {
	h.mu.Lock()
	waiting, moves := h.waiting, h.moves
	h.mu.Unlock()

	if !waiting {
		return ErrOutOfTurn
	}
	if !moves.Contains(a.Kind) {
		return &InvalidActionError{Action: a, Reason: "action not in legal set"}
	}
	if a.Kind == engine.Raise && (a.Amount < moves.RaiseMin || a.Amount > moves.RaiseMax) {
		return &InvalidActionError{Action: a, Reason: "raise amount outside legal range"}
	}

	select {
	case h.slot <- proposal{action: a, reasoning: reasoning}:
		return nil
	default:
		return ErrActionPending
	}
}
