package session

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/feltlabs/holdemd/internal/engine"
)

// reconcile is the phantom-chip correction. The rules engine is known to
// leave a settled pot's total in place when a hand ends by fold, so the
// apparent total exceeds the real chips in play on the next observation.
// When no hand is running and pots still report a positive total, the
// pots are zeroed. Afterwards conservation is asserted: a mismatch means
// a defect this correction cannot explain, fatal to the session.
func reconcile(eng engine.Engine, expectedTotal int, logger *log.Logger) error {
	potTotal := 0
	for _, p := range eng.Pots() {
		potTotal += p.Total
	}

	if !eng.IsHandRunning() && potTotal > 0 {
		logger.Warn("clearing phantom pot after settled hand", "phantom", potTotal)
		eng.ClearPots()
		potTotal = 0
	}

	chips := 0
	for i := 0; i < eng.NumSeats(); i++ {
		chips += eng.Chips(i)
	}
	if got := potTotal + chips; got != expectedTotal {
		return fmt.Errorf("chip conservation violated: pots %d + chips %d = %d, want %d",
			potTotal, chips, got, expectedTotal)
	}
	return nil
}
