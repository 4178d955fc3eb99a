package engine

import "fmt"

// Rank of a playing card, ordered two-low.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-character display rank.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + int(r)))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Suit of a playing card.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the suit symbol.
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Card is an immutable playing card. The zero value is not a valid card;
// use NewCard.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard constructs a card, panicking on out-of-range components. Cards
// originate from the rules engine or from test fixtures, so a bad card is
// a programming error rather than input to validate.
func NewCard(r Rank, s Suit) Card {
	if r < Two || r > Ace {
		panic(fmt.Sprintf("engine: invalid rank %d", r))
	}
	if s < Spades || s > Clubs {
		panic(fmt.Sprintf("engine: invalid suit %d", s))
	}
	return Card{Rank: r, Suit: s}
}

// String renders the display pair, e.g. "A♠".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ID returns a dense numeric identifier in [0,52) suitable for handing to
// the rules engine.
func (c Card) ID() int {
	return int(c.Rank-Two)*4 + int(c.Suit)
}

// CardFromID is the inverse of Card.ID.
func CardFromID(id int) (Card, error) {
	if id < 0 || id >= 52 {
		return Card{}, fmt.Errorf("engine: card id %d out of range", id)
	}
	return Card{Rank: Rank(id/4) + Two, Suit: Suit(id % 4)}, nil
}

// FormatCards renders a board or hand as a comma-separated display string.
func FormatCards(cards []Card) string {
	if len(cards) == 0 {
		return "None"
	}
	out := ""
	for i, c := range cards {
		if i > 0 {
			out += ", "
		}
		out += c.String()
	}
	return out
}
