package session

import (
	"encoding/json"

	"github.com/feltlabs/holdemd/internal/engine"
)

// EventKind discriminates bus events.
type EventKind int

const (
	// EventStateUpdate carries a full GameState at a revision.
	EventStateUpdate EventKind = iota
	// EventActionApplied carries the record of one applied action.
	EventActionApplied
	// EventError carries a non-fatal diagnostic.
	EventError
	// EventTerminal carries the final rankings; last event before the
	// bus closes.
	EventTerminal
)

func (k EventKind) String() string {
	switch k {
	case EventStateUpdate:
		return "state_update"
	case EventActionApplied:
		return "action_applied"
	case EventError:
		return "error"
	case EventTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the symbolic name.
func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Diagnostic kinds used in Error events.
const (
	DiagAgentFailure = "AgentFailure"
	DiagLLMTimeout   = "LLMTimeout"
	DiagHumanTimeout = "HumanTimeout"
	DiagRulesDefect  = "RulesEngineDefect"
	DiagInvariant    = "InvariantViolation"
)

// PlayerAction is the history record of one applied action.
type PlayerAction struct {
	PlayerID   int     `json:"player_id"`
	Phase      string  `json:"phase"`
	Kind       string  `json:"action_kind"`
	Amount     int     `json:"amount,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	PotBefore  int     `json:"pot_before"`
	ChipsAfter int     `json:"chips_remaining_after"`
}

// Ranking is one row of the final standings.
type Ranking struct {
	Rank     int    `json:"rank"`
	PlayerID int    `json:"player_id"`
	Name     string `json:"display_name"`
	Chips    int    `json:"chips"`
}

// Event is one bus message. Exactly the fields for its kind are set.
type Event struct {
	Kind     EventKind     `json:"kind"`
	Revision uint64        `json:"revision,omitempty"`
	State    *GameState    `json:"state,omitempty"`
	Action   *PlayerAction `json:"action,omitempty"`
	ErrKind  string        `json:"error_kind,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Rankings []Ranking     `json:"final_rankings,omitempty"`
}

func newActionRecord(seatID int, phase engine.Phase, a engine.Action, reasoning string, confidence float64, potBefore, chipsAfter int) PlayerAction {
	rec := PlayerAction{
		PlayerID:   seatID,
		Phase:      phase.String(),
		Kind:       a.Kind.String(),
		Reasoning:  reasoning,
		Confidence: confidence,
		PotBefore:  potBefore,
		ChipsAfter: chipsAfter,
	}
	if a.Kind == engine.Raise {
		rec.Amount = a.Amount
	}
	return rec
}
