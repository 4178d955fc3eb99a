package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltlabs/holdemd/internal/engine"
)

// fakeGateway scripts both completion modes.
type fakeGateway struct {
	structuredJSON string
	structuredErr  error
	textContent    string
	textErr        error

	structuredCalls int
	textCalls       int
}

func (f *fakeGateway) CompleteStructured(_ context.Context, _, _, _ string, _ json.RawMessage) (json.RawMessage, error) {
	f.structuredCalls++
	if f.structuredErr != nil {
		return nil, f.structuredErr
	}
	return json.RawMessage(f.structuredJSON), nil
}

func (f *fakeGateway) CompleteText(_ context.Context, _, _, _ string) (string, error) {
	f.textCalls++
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textContent, nil
}

func pipelineLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func decisionView(toCall int) *engine.View {
	return &engine.View{
		Seat:  0,
		Phase: engine.Flop,
		Seats: []engine.SeatView{
			{Seat: 0, Chips: 1000, State: engine.SeatIn},
			{Seat: 1, Chips: 1000, State: engine.SeatIn},
		},
		PotTotal:    60,
		ChipsToCall: toCall,
		Moves: engine.Moves{
			Actions:  []engine.ActionKind{engine.Call, engine.Raise, engine.Fold},
			RaiseMin: 40,
			RaiseMax: 1000,
		},
		Button: 1,
		Buyin:  1000,
	}
}

func TestDecideStructured(t *testing.T) {
	gw := &fakeGateway{structuredJSON: `{"action":"RAISE","amount":120,"reasoning":"strong hand","confidence":0.9}`}
	a := NewAgent("openai/gpt-4.1-mini", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(20))
	require.NoError(t, err)
	assert.Equal(t, engine.RaiseTo(120), d.Action)
	assert.Equal(t, "strong hand", d.Reasoning)
	assert.InDelta(t, 0.9, d.Confidence, 1e-9)
	assert.Equal(t, 0, gw.textCalls)
}

func TestDecideRewritesDeltaAmount(t *testing.T) {
	// 15 is below chips_to_call, so the model must have meant a raise on
	// top of the call.
	gw := &fakeGateway{structuredJSON: `{"action":"RAISE","amount":15,"reasoning":"","confidence":0.5}`}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(20))
	require.NoError(t, err)
	assert.Equal(t, 35, d.Action.Amount)
}

func TestDecideRaiseWithoutAmountUsesMinimum(t *testing.T) {
	gw := &fakeGateway{structuredJSON: `{"action":"RAISE","reasoning":"","confidence":0.5}`}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(20))
	require.NoError(t, err)
	assert.Equal(t, 40, d.Action.Amount)
}

func TestDecideFallsBackToTextWhenUnsupported(t *testing.T) {
	gw := &fakeGateway{
		structuredErr: ErrStructuredUnsupported,
		textContent:   "ACTION: CALL\nAMOUNT: null\nREASONING: pot odds are fine\nCONFIDENCE: 0.7",
	}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(20))
	require.NoError(t, err)
	assert.Equal(t, engine.Call, d.Action.Kind)
	assert.Equal(t, "pot odds are fine", d.Reasoning)
	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
	assert.Equal(t, 1, gw.structuredCalls)
	assert.Equal(t, 1, gw.textCalls)
}

func TestDecideFallsBackToTextOnBadSchema(t *testing.T) {
	gw := &fakeGateway{
		structuredJSON: `{"action":"BET","amount":50}`,
		textContent:    "ACTION: CHECK\nCONFIDENCE: 0.6",
	}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(0))
	require.NoError(t, err)
	assert.Equal(t, engine.Check, d.Action.Kind)
	assert.Equal(t, 1, gw.textCalls)
}

func TestDecideGatewayFailureDoesNotRetry(t *testing.T) {
	boom := errors.New("connection refused")
	gw := &fakeGateway{structuredErr: boom}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	_, err := a.Decide(context.Background(), decisionView(20))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, gw.textCalls)
}

func TestDecideTextParseFailure(t *testing.T) {
	gw := &fakeGateway{
		structuredErr: ErrStructuredUnsupported,
		textContent:   "I think I should probably bet here.",
	}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	_, err := a.Decide(context.Background(), decisionView(20))
	assert.Error(t, err)
}

func TestDecideClampsConfidence(t *testing.T) {
	gw := &fakeGateway{structuredJSON: `{"action":"CALL","amount":0,"reasoning":"","confidence":3.5}`}
	a := NewAgent("m", "balanced", gw, pipelineLogger())
	a.BeginHand()

	d, err := a.Decide(context.Background(), decisionView(20))
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Confidence)
}

func TestParseTextResponse(t *testing.T) {
	r, err := parseTextResponse("ACTION: raise\nAMOUNT: 80\nREASONING: semi-bluff\nCONFIDENCE: 0.65")
	require.NoError(t, err)
	assert.Equal(t, "RAISE", r.Action)
	require.NotNil(t, r.Amount)
	assert.Equal(t, 80, *r.Amount)
	assert.Equal(t, "semi-bluff", r.Reasoning)
	assert.InDelta(t, 0.65, r.Confidence, 1e-9)
}

func TestParseTextResponseDefaults(t *testing.T) {
	r, err := parseTextResponse("ACTION: FOLD\nAMOUNT: none\nCONFIDENCE: very sure")
	require.NoError(t, err)
	assert.Equal(t, "FOLD", r.Action)
	assert.Nil(t, r.Amount)
	assert.Equal(t, 0.5, r.Confidence)
}

func TestParseTextResponseUnknownToken(t *testing.T) {
	_, err := parseTextResponse("ACTION: SHOVE\nCONFIDENCE: 1.0")
	assert.Error(t, err)
}

func TestParseTextResponseMissingAction(t *testing.T) {
	_, err := parseTextResponse("REASONING: hmm\nCONFIDENCE: 0.4")
	assert.Error(t, err)
}

func TestMemoryLifecycle(t *testing.T) {
	a := NewAgent("m", "balanced", &fakeGateway{}, pipelineLogger())

	// Recording without a hand in progress is a no-op.
	a.RecordApplied(MemoryEntry{Phase: engine.PreFlop, Action: engine.CallAction()})
	a.BeginHand()
	assert.Equal(t, 0, a.mem.Len())

	a.RecordApplied(MemoryEntry{Phase: engine.PreFlop, Action: engine.CallAction(), Reasoning: "cheap", Confidence: 0.8})
	a.RecordApplied(MemoryEntry{Phase: engine.Flop, Action: engine.RaiseTo(60), Reasoning: "hit", Confidence: 0.9})
	assert.Equal(t, 2, a.mem.Len())

	a.EndHand()
	assert.Nil(t, a.mem)
}
