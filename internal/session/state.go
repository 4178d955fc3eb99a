package session

import (
	"encoding/json"
	"time"

	"github.com/feltlabs/holdemd/internal/engine"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusRunning:
		return "RUNNING"
	case StatusPaused:
		return "PAUSED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON emits the symbolic name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Terminal reports whether no further actions will be applied.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// SeatInfo is the wire projection of one seat. HoleCards is nil unless
// the viewer is entitled to see them.
type SeatInfo struct {
	PlayerID    int      `json:"player_id"`
	DisplayName string   `json:"display_name"`
	AgentKind   string   `json:"agent_kind"`
	Chips       int      `json:"chips"`
	State       string   `json:"state"`
	HoleCards   []string `json:"hole_cards,omitempty"`
}

// PotInfo is the wire projection of one pot.
type PotInfo struct {
	PotID    int   `json:"pot_id"`
	Total    int   `json:"total"`
	Eligible []int `json:"eligible"`
}

// GameState is the wire projection of a session at one revision.
type GameState struct {
	GameID           string     `json:"game_id"`
	Status           Status     `json:"status"`
	Phase            string     `json:"phase"`
	HandNumber       int        `json:"hand_number"`
	MaxHands         int        `json:"max_hands"`
	Board            []string   `json:"board"`
	Seats            []SeatInfo `json:"seats"`
	Pots             []PotInfo  `json:"pots"`
	CurrentPlayer    *int       `json:"current_player,omitempty"`
	AvailableActions []string   `json:"available_actions"`
	MinRaiseAmount   *int       `json:"min_raise_amount,omitempty"`
	DebugMode        bool       `json:"debug_mode"`
	Revision         uint64     `json:"revision"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func cardNames(cards []engine.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
