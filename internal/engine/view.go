package engine

// SeatView is the per-seat slice of a View.
type SeatView struct {
	Seat  int
	Name  string
	Chips int
	State SeatState
}

// View is the immutable decision context handed to agents for one turn.
// It is assembled by the session under its lock and contains everything a
// decision needs, so agents never touch the Engine directly.
type View struct {
	Seat        int // the seat deciding
	Phase       Phase
	HoleCards   []Card
	Board       []Card
	Seats       []SeatView
	PotTotal    int
	ChipsToCall int
	Moves       Moves
	Button      int
	SmallBlind  int
	BigBlind    int
	Buyin       int

	// HandRank is the engine-reported rank of the deciding seat's best
	// hand; RankKnown is false while fewer than five cards are visible.
	HandRank  int
	RankKnown bool
}

// Chips returns the deciding seat's stack.
func (v *View) Chips() int {
	return v.Seats[v.Seat].Chips
}

// Opponents returns the live seats other than the deciding one.
func (v *View) Opponents() []SeatView {
	out := make([]SeatView, 0, len(v.Seats)-1)
	for _, s := range v.Seats {
		if s.Seat == v.Seat {
			continue
		}
		if s.State == SeatFolded || s.State == SeatOut || s.State == SeatSkip {
			continue
		}
		out = append(out, s)
	}
	return out
}

func liveSeat(s SeatView) bool {
	switch s.State {
	case SeatFolded, SeatOut, SeatSkip:
		return false
	}
	return true
}

// NumLiveSeats counts the seats still contesting the hand.
func (v *View) NumLiveSeats() int {
	n := 0
	for _, s := range v.Seats {
		if liveSeat(s) {
			n++
		}
	}
	return n
}

// ButtonDistance returns the deciding seat's index in the action order
// that starts left of the button, counting live seats only. The button
// acts last and has the largest distance.
func (v *View) ButtonDistance() int {
	n := len(v.Seats)
	dist := 0
	for i := 1; i <= n; i++ {
		s := (v.Button + i) % n
		if s == v.Seat {
			return dist
		}
		if liveSeat(v.Seats[s]) {
			dist++
		}
	}
	return dist
}

// Snapshot builds a View for the given seat from the engine. name lookup
// is supplied by the caller since display names live outside the engine.
func Snapshot(eng Engine, seat int, names func(int) string, smallBlind, bigBlind, buyin int) *View {
	n := eng.NumSeats()
	seats := make([]SeatView, n)
	for i := 0; i < n; i++ {
		seats[i] = SeatView{
			Seat:  i,
			Name:  names(i),
			Chips: eng.Chips(i),
			State: eng.SeatState(i),
		}
	}

	total := 0
	for _, p := range eng.Pots() {
		total += p.Total
	}

	v := &View{
		Seat:        seat,
		Phase:       eng.HandPhase(),
		HoleCards:   append([]Card(nil), eng.HandOf(seat)...),
		Board:       append([]Card(nil), eng.Board()...),
		Seats:       seats,
		PotTotal:    total,
		ChipsToCall: eng.ChipsToCall(seat),
		Moves:       eng.AvailableMoves(),
		Button:      eng.ButtonSeat(),
		SmallBlind:  smallBlind,
		BigBlind:    bigBlind,
		Buyin:       buyin,
	}
	v.HandRank, v.RankKnown = eng.HandRank(seat)
	return v
}
