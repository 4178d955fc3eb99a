package llm

import (
	"fmt"
	"strings"

	"github.com/feltlabs/holdemd/internal/analysis"
	"github.com/feltlabs/holdemd/internal/engine"
)

var personalityTraits = map[string]string{
	"aggressive":   "You prefer aggressive play and look for opportunities to bet and raise.",
	"conservative": "You play tight and only make moves with strong hands or good odds.",
	"balanced":     "You play a balanced strategy, adapting to the situation.",
	"bluffer":      "You occasionally bluff and use deception as part of your strategy.",
	"mathematical": "You focus heavily on pot odds, hand strength, and mathematical analysis.",
}

var personalityReminders = map[string]string{
	"aggressive":   "Remember: You're an aggressive player who likes to bet and raise to put pressure on opponents.",
	"conservative": "Remember: You're a conservative player who only plays strong hands and folds when uncertain.",
	"bluffer":      "Remember: You're a strategic player who occasionally bluffs to keep opponents guessing.",
	"mathematical": "Remember: You're a mathematical player who focuses on odds, probabilities, and expected value.",
}

// Personalities lists the prompt personalities with a defined trait.
func Personalities() []string {
	out := make([]string, 0, len(personalityTraits))
	for p := range personalityTraits {
		out = append(out, p)
	}
	return out
}

// positionDescription narrates the seat's spot relative to the button.
func positionDescription(v *engine.View) string {
	n := len(v.Seats)
	if n == 0 {
		return "Unknown Position"
	}
	rel := (v.Seat - v.Button + n) % n
	switch {
	case rel == 0:
		return "Button (best position)"
	case rel == 1:
		return "Small Blind (early position)"
	case rel == 2:
		return "Big Blind (early position)"
	case rel <= n/2:
		return "Early Position"
	case float64(rel) <= float64(n)*0.75:
		return "Middle Position"
	default:
		return "Late Position"
	}
}

func opponentSummary(v *engine.View) string {
	opps := v.Opponents()
	if len(opps) == 0 {
		return "No opponents remaining"
	}
	parts := make([]string, len(opps))
	for i, o := range opps {
		parts[i] = fmt.Sprintf("Player %d (%d chips, %s)", o.Seat, o.Chips, o.State)
	}
	return fmt.Sprintf("%d opponents: %s", len(opps), strings.Join(parts, ", "))
}

func memorySection(mem *Memory) string {
	var b strings.Builder
	b.WriteString("=== MY PREVIOUS ACTIONS THIS HAND ===\n")
	entries := mem.Entries()
	if len(entries) == 0 {
		b.WriteString("No previous actions taken this hand.\n")
		return b.String()
	}
	for i, e := range entries {
		if e.Action.Kind == engine.Raise {
			fmt.Fprintf(&b, "%d. %s: %s %d chips (Confidence: %.2f)\n", i+1, e.Phase, e.Action.Kind, e.Action.Amount, e.Confidence)
		} else {
			fmt.Fprintf(&b, "%d. %s: %s (Confidence: %.2f)\n", i+1, e.Phase, e.Action.Kind, e.Confidence)
		}
		reasoning := e.Reasoning
		if reasoning == "" {
			reasoning = "No reasoning"
		}
		fmt.Fprintf(&b, "   Reasoning: %s\n", reasoning)
	}
	return b.String()
}

// BuildPrompt assembles the full situation analysis handed to the model:
// game state, the seat's hand and finances, opponents, the hand memory,
// legal actions and the personality framing.
func BuildPrompt(v *engine.View, personality string, mem *Memory) string {
	strength := analysis.Strength(v)
	winProb := analysis.WinProbability(v)

	potOddsLine := "Pot Odds: N/A (nothing to call)"
	if odds, ok := analysis.PotOdds(v); ok {
		potOddsLine = fmt.Sprintf("Pot Odds: %.2f (lower = better odds)", odds)
	}

	stackRatio := 0.5
	if v.Buyin > 0 {
		stackRatio = float64(v.Chips()) / float64(v.Buyin)
	}

	actions := make([]string, len(v.Moves.Actions))
	for i, k := range v.Moves.Actions {
		actions[i] = k.String()
	}
	raiseInfo := ""
	if v.Moves.Contains(engine.Raise) {
		raiseInfo = fmt.Sprintf("Raise range: %d to %d chips\n", v.Moves.RaiseMin, v.Moves.RaiseMax)
	}

	trait, ok := personalityTraits[personality]
	if !ok {
		trait = personalityTraits["balanced"]
	}

	var b strings.Builder
	b.WriteString("POKER SITUATION ANALYSIS\n\n")

	b.WriteString("=== GAME STATE ===\n")
	fmt.Fprintf(&b, "Phase: %s\n", v.Phase)
	fmt.Fprintf(&b, "Your Position: %s\n", positionDescription(v))
	fmt.Fprintf(&b, "Pot: %d chips, Blinds: %d/%d\n\n", v.PotTotal, v.SmallBlind, v.BigBlind)

	b.WriteString("=== YOUR HAND ===\n")
	fmt.Fprintf(&b, "Hole Cards: %s\n", engine.FormatCards(v.HoleCards))
	fmt.Fprintf(&b, "Board Cards: %s\n", engine.FormatCards(v.Board))
	fmt.Fprintf(&b, "Hand Strength: %.2f (0.0 = weakest, 1.0 = strongest)\n", strength)
	fmt.Fprintf(&b, "Estimated Win Probability: %.2f\n\n", winProb)

	b.WriteString("=== FINANCIAL SITUATION ===\n")
	fmt.Fprintf(&b, "Your Chips: %d\n", v.Chips())
	fmt.Fprintf(&b, "Chips to Call: %d\n", v.ChipsToCall)
	fmt.Fprintf(&b, "%s\n", potOddsLine)
	fmt.Fprintf(&b, "Stack Ratio: %.2f (1.0 = full starting stack)\n", stackRatio)
	b.WriteString(raiseInfo)
	b.WriteString("\n")

	b.WriteString("=== OPPONENTS ===\n")
	fmt.Fprintf(&b, "%s\n\n", opponentSummary(v))

	b.WriteString(memorySection(mem))
	b.WriteString("\n")

	b.WriteString("=== AVAILABLE ACTIONS ===\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Join(actions, ", "))

	b.WriteString("=== PLAYING STYLE ===\n")
	fmt.Fprintf(&b, "%s\n\n", trait)

	b.WriteString("=== DECISION REQUIRED ===\n")
	b.WriteString("Based on this comprehensive analysis, what action should you take? Consider:\n")
	b.WriteString("1. Hand strength and win probability\n")
	b.WriteString("2. Pot odds and stack size\n")
	b.WriteString("3. Position and opponent behavior\n")
	b.WriteString("4. Current betting phase and board texture\n")
	b.WriteString("5. Your playing style and image\n")
	b.WriteString("6. Your previous actions this hand and their outcomes\n\n")
	b.WriteString("Provide your decision with reasoning and confidence level.")

	if reminder, ok := personalityReminders[personality]; ok {
		b.WriteString("\n\n")
		b.WriteString(reminder)
	}
	return b.String()
}
