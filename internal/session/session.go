// Package session is the orchestration layer: one Session drives one
// table through its hands, dispatching decisions to the seat agents,
// validating and applying actions through the rules engine, correcting
// the engine's phantom-chip defect, and fanning state out over the
// event bus.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/feltlabs/holdemd/internal/agent"
	"github.com/feltlabs/holdemd/internal/engine"
	"github.com/feltlabs/holdemd/internal/llm"
	"github.com/feltlabs/holdemd/internal/randutil"
)

// errDecisionTimeout marks an LLM decision cancelled by its timer rather
// than by a real gateway failure.
var errDecisionTimeout = errors.New("decision timed out")

// seatSlot binds a seat to its decision maker.
type seatSlot struct {
	id    int
	name  string
	spec  agent.Spec
	ag    agent.Agent
	human *agent.Human // non-nil for human seats
	llm   *llm.Agent   // non-nil for LLM seats
}

// Deps are the external collaborators a session needs.
type Deps struct {
	Engine  engine.Engine
	Gateway llm.Gateway // may be nil when no LLM seats are configured
	Clock   quartz.Clock
	Logger  *log.Logger

	// BusBuffer overrides the per-subscriber buffer bound; 0 takes the
	// default.
	BusBuffer int
}

// Session owns one table. All state transitions are serialized behind
// mu; the driver goroutine releases it across every external wait.
type Session struct {
	id     string
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	eng    engine.Engine
	seats  []*seatSlot
	bus    *Bus

	ctx       context.Context
	cancel    context.CancelFunc
	advanceCh chan struct{}
	done      chan struct{}

	mu            sync.Mutex
	status        Status
	revision      uint64
	handNum       int
	createdAt     time.Time
	updatedAt     time.Time
	rankings      []Ranking
	expectedTotal int
	lastShowdown  bool
}

// New builds a session, filling config defaults and validating the
// result. Call Start to launch the driver.
func New(id string, cfg Config, deps Deps) (*Session, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		cfg:       cfg,
		logger:    deps.Logger.WithPrefix("session").With("game", id),
		clock:     deps.Clock,
		eng:       deps.Engine,
		bus:       NewBus(deps.BusBuffer),
		ctx:       ctx,
		cancel:    cancel,
		advanceCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
		createdAt: deps.Clock.Now(),
		updatedAt: deps.Clock.Now(),
	}
	s.expectedTotal = cfg.MaxPlayers * cfg.Buyin

	for seatID := 0; seatID < cfg.MaxPlayers; seatID++ {
		slot, err := s.buildSeat(seatID, cfg.Agents[seatID], deps.Gateway)
		if err != nil {
			cancel()
			return nil, err
		}
		s.seats = append(s.seats, slot)
	}

	if !cfg.HasHumans() || cfg.AutoStart {
		s.status = StatusRunning
	} else {
		s.status = StatusWaiting
	}
	return s, nil
}

func (s *Session) buildSeat(seatID int, spec agent.Spec, gw llm.Gateway) (*seatSlot, error) {
	slot := &seatSlot{id: seatID, name: s.cfg.displayName(seatID), spec: spec}
	switch spec.Kind {
	case agent.KindRule:
		// Stream 0 belongs to the deck; seats draw from their own.
		a, err := agent.NewRule(spec.Rule, randutil.Derive(s.cfg.Seed, uint64(seatID)+1))
		if err != nil {
			return nil, invalidConfigf("seat %d: %v", seatID, err)
		}
		slot.ag = a
	case agent.KindHuman:
		h := agent.NewHuman(seatID, s.cfg.HumanTimeout, s.clock, s.logger)
		slot.ag, slot.human = h, h
	case agent.KindLLM:
		if gw == nil {
			return nil, invalidConfigf("seat %d wants model %s but no LLM gateway is configured", seatID, spec.Model)
		}
		a := llm.NewAgent(spec.Model, spec.Personality, gw, s.logger)
		slot.ag, slot.llm = a, a
	default:
		return nil, invalidConfigf("seat %d: unknown agent kind", seatID)
	}
	return slot, nil
}

// ID returns the game id.
func (s *Session) ID() string { return s.id }

// Start launches the driver goroutine.
func (s *Session) Start() {
	go s.run()
}

// Done is closed when the driver has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run() {
	defer close(s.done)
	for {
		if !s.waitForStart() {
			return
		}
		s.playHand()

		s.mu.Lock()
		if s.status.Terminal() {
			s.mu.Unlock()
			return
		}
		if s.handNum >= s.cfg.MaxHands || !s.eng.IsGameRunning() {
			s.completeLocked()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

// waitForStart blocks until the next hand may begin: immediately for
// human-free play, otherwise on an Advance call.
func (s *Session) waitForStart() bool {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return false
	}
	ready := s.status == StatusRunning && !s.needsManualAdvanceLocked()
	s.mu.Unlock()
	if ready {
		return true
	}

	select {
	case <-s.advanceCh:
	case <-s.ctx.Done():
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.status = StatusRunning
	return true
}

// needsManualAdvanceLocked reports whether the next hand waits for an
// external Advance: only between hands, and only while a human seat
// still holds chips.
func (s *Session) needsManualAdvanceLocked() bool {
	if s.handNum == 0 {
		return false
	}
	for _, slot := range s.seats {
		if slot.human != nil && s.eng.Chips(slot.id) > 0 {
			return true
		}
	}
	return false
}

func (s *Session) playHand() {
	s.mu.Lock()
	if err := s.eng.StartHand(); err != nil {
		s.failLocked(DiagRulesDefect, fmt.Errorf("start hand: %w", err))
		s.mu.Unlock()
		return
	}
	s.handNum++
	s.lastShowdown = false
	for _, slot := range s.seats {
		if slot.llm != nil {
			slot.llm.BeginHand()
		}
	}
	s.logger.Info("hand started", "hand", s.handNum, "button", s.eng.ButtonSeat())
	s.bumpAndPublishStateLocked()
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.status.Terminal() {
			s.mu.Unlock()
			return
		}
		if !s.eng.IsHandRunning() {
			s.settleLocked()
			s.mu.Unlock()
			return
		}
		seatID, ok := s.eng.CurrentPlayer()
		if !ok {
			// No decider left; the engine finishes the hand on its own.
			s.settleLocked()
			s.mu.Unlock()
			return
		}
		slot := s.seats[seatID]
		view := engine.Snapshot(s.eng, seatID, s.nameOf, s.cfg.SmallBlind, s.cfg.BigBlind, s.cfg.Buyin)
		s.mu.Unlock()

		// External wait happens without the lock; the single driver
		// guarantees the engine cannot move underneath us.
		d, derr := s.dispatch(slot, view)

		s.mu.Lock()
		if s.status.Terminal() {
			s.mu.Unlock()
			return
		}
		applied, err := s.resolveLocked(slot, d, derr)
		if err != nil {
			s.failLocked(DiagAgentFailure, &agent.Failure{Seat: seatID, Cause: err})
			s.mu.Unlock()
			return
		}

		potBefore := potTotal(s.eng)
		if err := s.eng.TakeAction(applied); err != nil {
			s.failLocked(DiagRulesDefect, fmt.Errorf("apply %s for seat %d: %w", applied, seatID, err))
			s.mu.Unlock()
			return
		}
		rec := newActionRecord(seatID, view.Phase, applied, d.Reasoning, d.Confidence, potBefore, s.eng.Chips(seatID))
		if slot.llm != nil {
			slot.llm.RecordApplied(llm.MemoryEntry{
				Phase:      view.Phase,
				Action:     applied,
				Reasoning:  d.Reasoning,
				Confidence: d.Confidence,
			})
		}
		s.logger.Info("action applied", "hand", s.handNum, "seat", seatID, "action", applied.String())

		if err := reconcile(s.eng, s.expectedTotal, s.logger); err != nil {
			s.invariantFailureLocked(err)
			s.mu.Unlock()
			return
		}
		s.bus.Publish(Event{Kind: EventActionApplied, Action: &rec})
		s.bumpAndPublishStateLocked()
		s.mu.Unlock()
	}
}

// dispatch obtains a decision from the seat's agent, enforcing the LLM
// decision timeout. Exactly one agent kind is consulted per turn.
func (s *Session) dispatch(slot *seatSlot, view *engine.View) (agent.Decision, error) {
	if slot.llm == nil {
		return slot.ag.Decide(s.ctx, view)
	}

	dctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	var timedOut atomic.Bool
	timer := s.clock.AfterFunc(s.cfg.LLMTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	defer timer.Stop()

	d, err := slot.ag.Decide(dctx, view)
	if err != nil && timedOut.Load() {
		err = fmt.Errorf("%w after %s", errDecisionTimeout, s.cfg.LLMTimeout)
	}
	return d, err
}

// resolveLocked turns the dispatch outcome into the exact action handed
// to the engine: validator normalization on success, the fallback ladder
// with a diagnostic event on failure.
func (s *Session) resolveLocked(slot *seatSlot, d agent.Decision, derr error) (engine.Action, error) {
	moves := s.eng.AvailableMoves()

	if derr != nil {
		kind := DiagAgentFailure
		if errors.Is(derr, errDecisionTimeout) {
			kind = DiagLLMTimeout
		}
		s.logger.Warn("agent failed, degrading", "seat", slot.id, "kind", kind, "error", derr)
		s.bus.Publish(Event{Kind: EventError, ErrKind: kind, Detail: fmt.Sprintf("seat %d: %v", slot.id, derr)})
		return FallbackFromCall(moves)
	}

	if d.TimedOut {
		s.bus.Publish(Event{Kind: EventError, ErrKind: DiagHumanTimeout, Detail: fmt.Sprintf("seat %d defaulted to %s", slot.id, d.Action.Kind)})
	}
	return ValidateAction(moves, d.Action)
}

// settleLocked finishes a hand: discard LLM memories, run the
// phantom-chip correction one final time, publish the post-hand state.
func (s *Session) settleLocked() {
	s.lastShowdown = len(s.eng.SeatsInPot()) >= 2
	for _, slot := range s.seats {
		if slot.llm != nil {
			slot.llm.EndHand()
		}
	}
	if err := reconcile(s.eng, s.expectedTotal, s.logger); err != nil {
		s.invariantFailureLocked(err)
		return
	}
	s.logger.Info("hand settled", "hand", s.handNum)
	s.bumpAndPublishStateLocked()
}

// Snapshot returns a value copy of the wire state at the current
// revision.
func (s *Session) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ProposeAction feeds a human decision into the seat's mailbox. Only the
// current player's human seat can accept; everything else is OutOfTurn
// and never disturbs game state.
func (s *Session) ProposeAction(playerID int, a engine.Action) (GameState, error) {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return GameState{}, ErrSessionTerminal
	}
	if playerID < 0 || playerID >= len(s.seats) {
		s.mu.Unlock()
		return GameState{}, ErrOutOfTurn
	}
	slot := s.seats[playerID]
	cur, ok := s.eng.CurrentPlayer()
	s.mu.Unlock()

	if slot.human == nil || !ok || cur != playerID {
		return GameState{}, ErrOutOfTurn
	}
	if err := slot.human.Propose(a, ""); err != nil {
		return GameState{}, err
	}
	return s.Snapshot(), nil
}

// Advance triggers the next hand. Idempotent between hands; NotReady
// while a hand is still running.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return ErrSessionTerminal
	}
	if s.eng.IsHandRunning() {
		s.mu.Unlock()
		s.logger.Debug("advance ignored, hand in progress")
		return ErrNotReady
	}
	s.mu.Unlock()

	select {
	case s.advanceCh <- struct{}{}:
	default:
	}
	return nil
}

// End completes the session if it is not already terminal and returns
// the final rankings. In-flight waits are cancelled; the bus drains with
// a Terminal event.
func (s *Session) End() []Ranking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		s.completeLocked()
	}
	return append([]Ranking(nil), s.rankings...)
}

// Rankings returns the frozen standings; nil before the session is
// terminal.
func (s *Session) Rankings() []Ranking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Ranking(nil), s.rankings...)
}

// DroppedEvents counts StateUpdate events shed by slow subscribers.
func (s *Session) DroppedEvents() uint64 { return s.bus.Dropped() }

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe attaches an event stream, primed with a StateUpdate of the
// current revision.
func (s *Session) Subscribe() (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.bus.Subscribe()
	if sub == nil {
		return nil, ErrSessionTerminal
	}
	st := s.snapshotLocked()
	sub.push(Event{Kind: EventStateUpdate, Revision: s.revision, State: &st}, s.bus.limit)
	return sub, nil
}

func (s *Session) completeLocked() {
	s.status = StatusCompleted
	s.rankings = s.computeRankingsLocked()
	s.updatedAt = s.clock.Now()
	s.logger.Info("session completed", "hands", s.handNum)
	s.bus.Publish(Event{Kind: EventTerminal, Rankings: s.rankings})
	s.bus.Close()
	s.cancel()
}

func (s *Session) failLocked(kind string, err error) {
	s.logger.Error("session failed", "kind", kind, "error", err)
	s.status = StatusError
	s.rankings = []Ranking{}
	s.updatedAt = s.clock.Now()
	s.bus.Publish(Event{Kind: EventError, ErrKind: kind, Detail: err.Error()})
	s.bus.Publish(Event{Kind: EventTerminal, Rankings: s.rankings})
	s.bus.Close()
	s.cancel()
}

func (s *Session) invariantFailureLocked(err error) {
	s.failLocked(DiagInvariant, err)
}

// computeRankingsLocked sorts seats by chips descending, ties broken by
// player id ascending.
func (s *Session) computeRankingsLocked() []Ranking {
	out := make([]Ranking, len(s.seats))
	for i, slot := range s.seats {
		out[i] = Ranking{PlayerID: slot.id, Name: slot.name, Chips: s.eng.Chips(slot.id)}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.Chips > a.Chips || (b.Chips == a.Chips && b.PlayerID < a.PlayerID) {
				out[j-1], out[j] = b, a
			} else {
				break
			}
		}
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (s *Session) bumpAndPublishStateLocked() {
	s.revision++
	s.updatedAt = s.clock.Now()
	st := s.snapshotLocked()
	s.bus.Publish(Event{Kind: EventStateUpdate, Revision: s.revision, State: &st})
}

func (s *Session) nameOf(seat int) string { return s.seats[seat].name }

func (s *Session) snapshotLocked() GameState {
	st := GameState{
		GameID:           s.id,
		Status:           s.status,
		Phase:            s.eng.HandPhase().String(),
		HandNumber:       s.handNum,
		MaxHands:         s.cfg.MaxHands,
		Board:            cardNames(s.eng.Board()),
		DebugMode:        s.cfg.DebugMode,
		Revision:         s.revision,
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
		AvailableActions: []string{},
	}

	showdown := s.lastShowdown && !s.eng.IsHandRunning()
	for _, slot := range s.seats {
		state := s.eng.SeatState(slot.id)
		info := SeatInfo{
			PlayerID:    slot.id,
			DisplayName: slot.name,
			AgentKind:   slot.spec.Label(),
			Chips:       s.eng.Chips(slot.id),
			State:       state.String(),
		}
		visible := s.cfg.DebugMode || slot.human != nil ||
			(showdown && state != engine.SeatFolded && state != engine.SeatOut)
		if visible {
			if cards := s.eng.HandOf(slot.id); len(cards) > 0 {
				info.HoleCards = cardNames(cards)
			}
		}
		st.Seats = append(st.Seats, info)
	}

	for _, p := range s.eng.Pots() {
		st.Pots = append(st.Pots, PotInfo{PotID: p.ID, Total: p.Total, Eligible: p.Eligible})
	}

	if s.status == StatusRunning && s.eng.HandPhase().IsBetting() {
		if cur, ok := s.eng.CurrentPlayer(); ok {
			seatID := cur
			st.CurrentPlayer = &seatID
			moves := s.eng.AvailableMoves()
			for _, k := range moves.Actions {
				st.AvailableActions = append(st.AvailableActions, k.String())
			}
			if moves.Contains(engine.Raise) {
				minRaise := moves.RaiseMin
				st.MinRaiseAmount = &minRaise
			}
		}
	}
	return st
}

func potTotal(eng engine.Engine) int {
	total := 0
	for _, p := range eng.Pots() {
		total += p.Total
	}
	return total
}
