package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/feltlabs/holdemd/internal/agent"
	"github.com/feltlabs/holdemd/internal/engine"
)

const structuredSystem = `You are an expert poker player. Analyze the situation and make the best decision.

IMPORTANT: You must respond with valid JSON in this exact format:
{
  "action": "FOLD" | "CHECK" | "CALL" | "RAISE",
  "amount": integer (raise amount if RAISE, otherwise 0),
  "reasoning": "brief explanation",
  "confidence": number between 0.0 and 1.0
}`

const textSystem = "You are an expert poker player. Always respond in the exact format requested."

const textFormatSuffix = `

Respond with your decision in this exact format:
ACTION: [FOLD/CHECK/CALL/RAISE]
AMOUNT: [number if raising, otherwise null]
REASONING: [brief explanation]
CONFIDENCE: [0.0 to 1.0]`

// decisionSchema constrains structured completions to a poker action.
var decisionSchema = json.RawMessage(`{
  "name": "poker_action",
  "strict": true,
  "schema": {
    "type": "object",
    "properties": {
      "action": {
        "type": "string",
        "enum": ["FOLD", "CHECK", "CALL", "RAISE"],
        "description": "The poker action to take"
      },
      "amount": {
        "type": "integer",
        "description": "Amount to raise (only for RAISE action, 0 for other actions)",
        "minimum": 0
      },
      "reasoning": {
        "type": "string",
        "description": "Brief explanation of the decision (1-2 sentences)"
      },
      "confidence": {
        "type": "number",
        "minimum": 0.0,
        "maximum": 1.0,
        "description": "Confidence in this decision (0.0 to 1.0)"
      }
    },
    "required": ["action", "amount", "reasoning", "confidence"],
    "additionalProperties": false
  }
}`)

// response is the model's answer in either completion mode.
type response struct {
	Action     string  `json:"action"`
	Amount     *int    `json:"amount"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Agent drives one seat through the gateway. The memory handle is owned
// by the session: created at hand start, appended to after each applied
// action, dropped at settle.
type Agent struct {
	model       string
	personality string
	gw          Gateway
	logger      *log.Logger
	mem         *Memory
}

// NewAgent builds the pipeline for a seat.
func NewAgent(model, personality string, gw Gateway, logger *log.Logger) *Agent {
	return &Agent{
		model:       model,
		personality: personality,
		gw:          gw,
		logger:      logger.WithPrefix("llm").With("model", model),
	}
}

func (a *Agent) Name() string { return "llm:" + a.model }

// BeginHand gives the agent a fresh memory for the hand.
func (a *Agent) BeginHand() { a.mem = &Memory{} }

// EndHand discards the memory.
func (a *Agent) EndHand() { a.mem = nil }

// RecordApplied appends an applied action to the hand memory. Call only
// after the rules engine has accepted the action.
func (a *Agent) RecordApplied(e MemoryEntry) {
	if a.mem != nil {
		a.mem.Append(e)
	}
}

// Decide runs the pipeline: structured completion first, one text-mode
// retry when the model lacks schema support or returns an unparseable
// object, then an error that the session degrades through the fallback
// ladder.
func (a *Agent) Decide(ctx context.Context, v *engine.View) (agent.Decision, error) {
	prompt := BuildPrompt(v, a.personality, a.mem)

	r, err := a.structured(ctx, prompt)
	if err != nil {
		var parseErr *parseError
		if !errors.Is(err, ErrStructuredUnsupported) && !errors.As(err, &parseErr) {
			return agent.Decision{}, err // gateway failure, no retry
		}
		a.logger.Warn("structured decision failed, retrying as text", "error", err)
		r, err = a.text(ctx, prompt)
		if err != nil {
			return agent.Decision{}, err
		}
	}
	return a.toDecision(v, r), nil
}

func (a *Agent) structured(ctx context.Context, prompt string) (response, error) {
	raw, err := a.gw.CompleteStructured(ctx, a.model, structuredSystem, prompt, decisionSchema)
	if err != nil {
		return response{}, err
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return response{}, &parseError{reason: "response is not valid JSON: " + err.Error()}
	}
	if !validActionToken(r.Action) {
		return response{}, &parseError{reason: fmt.Sprintf("unknown action token %q", r.Action)}
	}
	return r, nil
}

func (a *Agent) text(ctx context.Context, prompt string) (response, error) {
	content, err := a.gw.CompleteText(ctx, a.model, textSystem, prompt+textFormatSuffix)
	if err != nil {
		return response{}, err
	}
	return parseTextResponse(content)
}

// toDecision normalizes the response into an action. A raise amount is
// always the street total; a value below chips_to_call is assumed to be
// a delta and rewritten. The session's validator has the final word on
// legality.
func (a *Agent) toDecision(v *engine.View, r response) agent.Decision {
	kind, _ := engine.ParseActionKind(r.Action)
	act := engine.Action{Kind: kind}
	if kind == engine.Raise {
		switch {
		case r.Amount == nil:
			act.Amount = v.Moves.RaiseMin
		case *r.Amount < v.ChipsToCall:
			act.Amount = v.ChipsToCall + *r.Amount
		default:
			act.Amount = *r.Amount
		}
	}

	conf := r.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return agent.Decision{Action: act, Reasoning: r.Reasoning, Confidence: conf}
}

// parseError marks a malformed model response, distinct from transport
// failures so the pipeline knows a text retry is worthwhile.
type parseError struct {
	reason string
}

func (e *parseError) Error() string { return "unparseable model response: " + e.reason }

func validActionToken(s string) bool {
	switch s {
	case "FOLD", "CHECK", "CALL", "RAISE":
		return true
	}
	return false
}

// parseTextResponse extracts ACTION/AMOUNT/REASONING/CONFIDENCE lines. A
// missing or unknown action token is a parse failure; the other fields
// degrade to defaults.
func parseTextResponse(content string) (response, error) {
	r := response{Confidence: 0.5}
	found := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ACTION:"):
			token := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "ACTION:")))
			if !validActionToken(token) {
				return response{}, &parseError{reason: fmt.Sprintf("unknown action token %q", token)}
			}
			r.Action = token
			found = true
		case strings.HasPrefix(line, "AMOUNT:"):
			s := strings.TrimSpace(strings.TrimPrefix(line, "AMOUNT:"))
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
				continue
			}
			if n, err := strconv.Atoi(s); err == nil {
				r.Amount = &n
			}
		case strings.HasPrefix(line, "REASONING:"):
			r.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case strings.HasPrefix(line, "CONFIDENCE:"):
			s := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				r.Confidence = f
			}
		}
	}

	if !found {
		return response{}, &parseError{reason: "no ACTION line in response"}
	}
	return r, nil
}
