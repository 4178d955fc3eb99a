package session

import (
	"fmt"
	"sort"

	"github.com/feltlabs/holdemd/internal/agent"
)

// Gateway model ids used by the LLM presets.
const (
	modelGPT   = "openai/gpt-4.1-mini"
	modelLlama = "meta-llama/llama-3.1-8b-instruct"
	modelGemma = "google/gemma-3-27b-it:free"
)

func rule(name string) agent.Spec { return agent.Spec{Kind: agent.KindRule, Rule: name} }

func llmSpec(model, personality string) agent.Spec {
	return agent.Spec{Kind: agent.KindLLM, Model: model, Personality: personality}
}

var humanSpec = agent.Spec{Kind: agent.KindHuman}

type preset struct {
	Name        string
	Description string
	MaxPlayers  int
	Agents      map[int]agent.Spec
}

var presets = map[string]preset{
	"test": {
		Name:        "Quick Test Game",
		Description: "2-player quick test",
		MaxPlayers:  2,
		Agents:      map[int]agent.Spec{0: rule("call"), 1: rule("random")},
	},
	"balanced": {
		Name:        "Balanced 6-Player Game",
		Description: "Mix of different AI personalities",
		MaxPlayers:  6,
		Agents: map[int]agent.Spec{
			0: rule("random"), 1: rule("call"), 2: rule("aggressive_random"),
			3: rule("passive"), 4: rule("tight"), 5: rule("loose"),
		},
	},
	"custom_showcase": {
		Name:        "Custom Agent Showcase",
		Description: "6 different custom AI personalities",
		MaxPlayers:  6,
		Agents: map[int]agent.Spec{
			0: rule("passive"), 1: rule("tight"), 2: rule("loose"),
			3: rule("bluff"), 4: rule("position_aware"), 5: rule("aggressive_random"),
		},
	},
	"llm_showcase": {
		Name:        "LLM Showcase",
		Description: "6 different LLM agents (requires API keys)",
		MaxPlayers:  6,
		Agents: map[int]agent.Spec{
			0: llmSpec(modelGPT, "balanced"), 1: llmSpec(modelLlama, "aggressive"),
			2: llmSpec(modelGemma, "mathematical"), 3: llmSpec(modelGPT, "bluffer"),
			4: llmSpec(modelLlama, "conservative"), 5: llmSpec(modelGPT, "mathematical"),
		},
	},
	"human_vs_ai": {
		Name:        "Human vs AI",
		Description: "Human player against 5 AI opponents",
		MaxPlayers:  6,
		Agents: map[int]agent.Spec{
			0: humanSpec, 1: rule("aggressive_random"), 2: rule("tight"),
			3: rule("loose"), 4: rule("bluff"), 5: rule("position_aware"),
		},
	},
	"human_vs_llm": {
		Name:        "Human vs LLM",
		Description: "Human player against 5 LLM opponents",
		MaxPlayers:  6,
		Agents: map[int]agent.Spec{
			0: humanSpec, 1: llmSpec(modelGPT, "balanced"),
			2: llmSpec(modelLlama, "aggressive"), 3: llmSpec(modelGemma, "mathematical"),
			4: llmSpec(modelGPT, "conservative"), 5: llmSpec(modelLlama, "balanced"),
		},
	},
}

// Preset resolves a named table layout.
func Preset(id string) (preset, error) {
	p, ok := presets[id]
	if !ok {
		return preset{}, invalidConfigf("unknown preset %q", id)
	}
	// Copy the seat map so callers cannot mutate the catalogue.
	agents := make(map[int]agent.Spec, len(p.Agents))
	for k, v := range p.Agents {
		agents[k] = v
	}
	p.Agents = agents
	return p, nil
}

// PresetInfo describes one preset for the list endpoint.
type PresetInfo struct {
	PresetID    string `json:"preset_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxPlayers  int    `json:"max_players"`
}

// Presets lists the catalogue in stable order.
func Presets() []PresetInfo {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]PresetInfo, len(ids))
	for i, id := range ids {
		p := presets[id]
		out[i] = PresetInfo{PresetID: id, Name: p.Name, Description: p.Description, MaxPlayers: p.MaxPlayers}
	}
	return out
}

// AgentCatalogEntry describes one selectable agent for list_agents.
type AgentCatalogEntry struct {
	AgentID     string `json:"agent_id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

var ruleDescriptions = map[string]string{
	"random":            "Random Agent (Unpredictable)",
	"call":              "Call Agent (Always calls)",
	"aggressive_random": "Aggressive Random (No folding)",
	"passive":           "Passive Agent (Prefers check/call)",
	"tight":             "Tight Agent (Folds often, strong hands only)",
	"loose":             "Loose Agent (Plays many hands)",
	"bluff":             "Bluff Agent (Occasional bluffs)",
	"position_aware":    "Position-Aware Agent",
}

// AgentCatalog lists every selectable agent kind. llmAvailable reflects
// whether a gateway is configured.
func AgentCatalog(llmAvailable bool) []AgentCatalogEntry {
	out := make([]AgentCatalogEntry, 0, len(ruleDescriptions)+2)
	for _, name := range agent.RuleNames() {
		desc, ok := ruleDescriptions[name]
		if !ok {
			desc = fmt.Sprintf("%s agent", name)
		}
		out = append(out, AgentCatalogEntry{AgentID: name, Kind: "rule", Description: desc, Available: true})
	}
	out = append(out,
		AgentCatalogEntry{AgentID: "llm", Kind: "llm", Description: "LLM agent ({model, personality} spec)", Available: llmAvailable},
		AgentCatalogEntry{AgentID: "human", Kind: "human", Description: "Human Player", Available: true},
	)
	return out
}
