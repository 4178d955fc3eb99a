package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", NewCard(Ace, Spades).String())
	assert.Equal(t, "T♥", NewCard(Ten, Hearts).String())
	assert.Equal(t, "2♣", NewCard(Two, Clubs).String())
	assert.Equal(t, "9♦", NewCard(Nine, Diamonds).String())
}

func TestCardIDRoundTrip(t *testing.T) {
	seen := make(map[int]bool)
	for r := Two; r <= Ace; r++ {
		for s := Spades; s <= Clubs; s++ {
			c := NewCard(r, s)
			id := c.ID()
			require.GreaterOrEqual(t, id, 0)
			require.Less(t, id, 52)
			require.False(t, seen[id], "duplicate id %d for %s", id, c)
			seen[id] = true

			back, err := CardFromID(id)
			require.NoError(t, err)
			assert.Equal(t, c, back)
		}
	}
}

func TestCardFromIDOutOfRange(t *testing.T) {
	_, err := CardFromID(-1)
	assert.Error(t, err)
	_, err = CardFromID(52)
	assert.Error(t, err)
}

func TestNewCardPanics(t *testing.T) {
	assert.Panics(t, func() { NewCard(Rank(1), Spades) })
	assert.Panics(t, func() { NewCard(Ace, Suit(4)) })
}

func TestFormatCards(t *testing.T) {
	assert.Equal(t, "None", FormatCards(nil))
	cards := []Card{NewCard(Ace, Spades), NewCard(King, Hearts)}
	assert.Equal(t, "A♠, K♥", FormatCards(cards))
}
