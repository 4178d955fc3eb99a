package session

import (
	"time"

	"github.com/feltlabs/holdemd/internal/agent"
)

// Default game parameters.
const (
	DefaultBuyin        = 1000
	DefaultBigBlind     = 20
	DefaultSmallBlind   = 10
	DefaultMaxPlayers   = 6
	DefaultMaxHands     = 15
	DefaultLLMTimeout   = 30 * time.Second
	DefaultHumanTimeout = 60 * time.Second
)

// Config describes one game to create. Zero-valued numeric fields take
// the defaults; Agents must cover every seat densely from 0.
type Config struct {
	Preset     string             `json:"preset,omitempty"`
	MaxPlayers int                `json:"max_players,omitempty"`
	Buyin      int                `json:"buyin,omitempty"`
	BigBlind   int                `json:"big_blind,omitempty"`
	SmallBlind int                `json:"small_blind,omitempty"`
	MaxHands   int                `json:"max_hands,omitempty"`
	Agents     map[int]agent.Spec `json:"agents,omitempty"`
	DebugMode  bool               `json:"debug_mode,omitempty"`

	// AutoStart begins dealing immediately even with human seats.
	// Human-free tables always auto-start.
	AutoStart bool `json:"auto_start,omitempty"`

	// Seed fixes the per-session RNG for replayable games; 0 draws a
	// random seed at creation.
	Seed int64 `json:"seed,omitempty"`

	// DisplayNames overrides the generated per-seat names.
	DisplayNames map[int]string `json:"display_names,omitempty"`

	// Timeouts for external waits; zero takes the defaults.
	LLMTimeout   time.Duration `json:"-"`
	HumanTimeout time.Duration `json:"-"`
}

// Normalize resolves the preset, fills unset fields and validates the
// result: the effective config a session will run with.
func (c Config) Normalize() (Config, error) {
	c, err := c.withDefaults()
	if err != nil {
		return c, err
	}
	return c, c.validate()
}

// withDefaults fills unset fields, resolving the preset first.
func (c Config) withDefaults() (Config, error) {
	if c.Preset != "" {
		p, err := Preset(c.Preset)
		if err != nil {
			return c, err
		}
		c.MaxPlayers = p.MaxPlayers
		c.Agents = p.Agents
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = len(c.Agents)
	}
	if c.Buyin == 0 {
		c.Buyin = DefaultBuyin
	}
	if c.BigBlind == 0 {
		c.BigBlind = DefaultBigBlind
	}
	if c.SmallBlind == 0 {
		c.SmallBlind = DefaultSmallBlind
	}
	if c.MaxHands == 0 {
		c.MaxHands = DefaultMaxHands
	}
	if c.LLMTimeout == 0 {
		c.LLMTimeout = DefaultLLMTimeout
	}
	if c.HumanTimeout == 0 {
		c.HumanTimeout = DefaultHumanTimeout
	}
	return c, nil
}

// validate checks a defaulted config.
func (c Config) validate() error {
	if c.MaxPlayers < 2 {
		return invalidConfigf("need at least 2 players, got %d", c.MaxPlayers)
	}
	if len(c.Agents) != c.MaxPlayers {
		return invalidConfigf("agents must fill all %d seats, got %d", c.MaxPlayers, len(c.Agents))
	}
	for seat := 0; seat < c.MaxPlayers; seat++ {
		if _, ok := c.Agents[seat]; !ok {
			return invalidConfigf("missing agent for seat %d", seat)
		}
	}
	if c.SmallBlind <= 0 || c.BigBlind <= 0 {
		return invalidConfigf("blinds must be positive")
	}
	if c.SmallBlind >= c.BigBlind {
		return invalidConfigf("small blind %d must be below big blind %d", c.SmallBlind, c.BigBlind)
	}
	if c.Buyin < c.BigBlind {
		return invalidConfigf("buyin %d cannot cover the big blind %d", c.Buyin, c.BigBlind)
	}
	if c.MaxHands < 1 {
		return invalidConfigf("max_hands must be at least 1")
	}
	return nil
}

// HasHumans reports whether any seat is human-controlled.
func (c Config) HasHumans() bool {
	for _, spec := range c.Agents {
		if spec.Kind == agent.KindHuman {
			return true
		}
	}
	return false
}

func (c Config) displayName(seat int) string {
	if name, ok := c.DisplayNames[seat]; ok && name != "" {
		return name
	}
	spec := c.Agents[seat]
	switch spec.Kind {
	case agent.KindHuman:
		return "Human"
	case agent.KindLLM:
		return spec.Model
	default:
		return spec.Rule
	}
}
