package engine

// Phase of a hand. PreHand precedes dealing; Settle distributes pots.
type Phase int

const (
	PreHand Phase = iota
	PreFlop
	Flop
	Turn
	River
	Settle
)

// String returns the symbolic wire name.
func (p Phase) String() string {
	switch p {
	case PreHand:
		return "PREHAND"
	case PreFlop:
		return "PREFLOP"
	case Flop:
		return "FLOP"
	case Turn:
		return "TURN"
	case River:
		return "RIVER"
	case Settle:
		return "SETTLE"
	default:
		return "UNKNOWN"
	}
}

// IsBetting reports whether the phase solicits decisions.
func (p Phase) IsBetting() bool {
	return p >= PreFlop && p <= River
}

// SeatState is the cached projection of a seat's standing in the current
// hand, mirroring the rules engine's player states.
type SeatState int

const (
	SeatIn SeatState = iota
	SeatToCall
	SeatAllIn
	SeatFolded
	SeatSkip
	SeatOut
)

// String returns the symbolic wire name.
func (s SeatState) String() string {
	switch s {
	case SeatIn:
		return "IN"
	case SeatToCall:
		return "TO_CALL"
	case SeatAllIn:
		return "ALL_IN"
	case SeatFolded:
		return "FOLDED"
	case SeatSkip:
		return "SKIP"
	case SeatOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}
