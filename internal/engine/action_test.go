package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	for in, want := range map[string]ActionKind{
		"FOLD":   Fold,
		"fold":   Fold,
		" Check": Check,
		"call":   Call,
		"RAISE ": Raise,
	} {
		got, err := ParseActionKind(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseActionKind("bet")
	assert.Error(t, err)
	_, err = ParseActionKind("")
	assert.Error(t, err)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "FOLD", FoldAction().String())
	assert.Equal(t, "CHECK", CheckAction().String())
	assert.Equal(t, "CALL", CallAction().String())
	assert.Equal(t, "RAISE(60)", RaiseTo(60).String())
}

func TestPhaseIsBetting(t *testing.T) {
	assert.False(t, PreHand.IsBetting())
	assert.True(t, PreFlop.IsBetting())
	assert.True(t, Flop.IsBetting())
	assert.True(t, Turn.IsBetting())
	assert.True(t, River.IsBetting())
	assert.False(t, Settle.IsBetting())
}

func TestMovesContains(t *testing.T) {
	m := Moves{Actions: []ActionKind{Check, Raise}, RaiseMin: 20, RaiseMax: 100}
	assert.True(t, m.Contains(Check))
	assert.True(t, m.Contains(Raise))
	assert.False(t, m.Contains(Call))
	assert.False(t, m.Empty())
	assert.True(t, Moves{}.Empty())
}
