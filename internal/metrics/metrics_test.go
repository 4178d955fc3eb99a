package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	structuredErr error
}

func (g *fakeGateway) CompleteStructured(context.Context, string, string, string, json.RawMessage) (json.RawMessage, error) {
	if g.structuredErr != nil {
		return nil, g.structuredErr
	}
	return json.RawMessage(`{}`), nil
}

func (g *fakeGateway) CompleteText(context.Context, string, string, string) (string, error) {
	return "ok", nil
}

func TestCollectorsRegister(t *testing.T) {
	t.Parallel()

	m := New()
	m.GamesCreated.Inc()
	m.GamesActive.Set(3)
	m.HandsPlayed.Add(15)
	m.ActionsApplied.WithLabelValues("CALL").Inc()
	m.Diagnostics.WithLabelValues("LLMTimeout").Inc()

	families, err := m.Gather().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["holdemd_games_created_total"])
	assert.True(t, names["holdemd_games_active"])
	assert.True(t, names["holdemd_hands_played_total"])
	assert.True(t, names["holdemd_actions_applied_total"])
	assert.True(t, names["holdemd_diagnostics_total"])
}

func TestInstrumentGatewayObservesBothOutcomes(t *testing.T) {
	t.Parallel()

	m := New()
	gw := InstrumentGateway(&fakeGateway{}, m)
	_, err := gw.CompleteStructured(context.Background(), "model-a", "sys", "prompt", nil)
	require.NoError(t, err)
	_, err = gw.CompleteText(context.Background(), "model-a", "sys", "prompt")
	require.NoError(t, err)

	failing := InstrumentGateway(&fakeGateway{structuredErr: errors.New("boom")}, m)
	_, err = failing.CompleteStructured(context.Background(), "model-a", "sys", "prompt", nil)
	require.Error(t, err)

	families, err := m.Gather().Gather()
	require.NoError(t, err)
	samples := 0
	for _, f := range families {
		if f.GetName() == "holdemd_llm_request_seconds" {
			samples = len(f.GetMetric())
		}
	}
	assert.Equal(t, 3, samples, "structured/ok, text/ok and structured/error series")
}

func TestInstrumentGatewayKeepsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, InstrumentGateway(nil, New()))
}
