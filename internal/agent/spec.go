package agent

import (
	"encoding/json"
	"fmt"
)

// Kind is the tagged variant behind an agent spec.
type Kind int

const (
	KindRule Kind = iota
	KindHuman
	KindLLM
)

func (k Kind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindHuman:
		return "human"
	case KindLLM:
		return "llm"
	default:
		return "unknown"
	}
}

// Spec describes the agent wanted for a seat. On the wire it is either a
// rule name from the personality table, the literal "human", or
// {"model": ..., "personality": ...} for an LLM seat.
type Spec struct {
	Kind        Kind
	Rule        string // KindRule: personality name
	Model       string // KindLLM: gateway model id
	Personality string // KindLLM: prompt personality
}

// Label is the short display form used in logs and state projections.
func (s Spec) Label() string {
	switch s.Kind {
	case KindHuman:
		return "human"
	case KindLLM:
		return "llm:" + s.Model
	default:
		return s.Rule
	}
}

func (s *Spec) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		if name == "human" {
			*s = Spec{Kind: KindHuman}
			return nil
		}
		if _, ok := rules[name]; !ok {
			return fmt.Errorf("unknown rule agent %q", name)
		}
		*s = Spec{Kind: KindRule, Rule: name}
		return nil
	}

	var obj struct {
		Model       string `json:"model"`
		Personality string `json:"personality"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("agent spec must be a rule name, \"human\", or {model, personality}: %w", err)
	}
	if obj.Model == "" {
		return fmt.Errorf("llm agent spec requires a model id")
	}
	*s = Spec{Kind: KindLLM, Model: obj.Model, Personality: obj.Personality}
	return nil
}

func (s Spec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindHuman:
		return json.Marshal("human")
	case KindLLM:
		return json.Marshal(struct {
			Model       string `json:"model"`
			Personality string `json:"personality,omitempty"`
		}{s.Model, s.Personality})
	default:
		return json.Marshal(s.Rule)
	}
}
