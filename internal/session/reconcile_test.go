package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feltlabs/holdemd/internal/engine"
	"github.com/feltlabs/holdemd/internal/enginetest"
)

func TestReconcileClearsPhantomPot(t *testing.T) {
	t.Parallel()

	// Fold-settled hand: the winner was already paid but the pot total
	// was left behind, so the naive sum double-counts 30 chips.
	stub := &enginetest.Stub{
		HandRunning: false,
		Seats:       2,
		Stacks:      map[int]int{0: 990, 1: 1010},
		PotList:     []engine.Pot{{ID: 0, Total: 30, Eligible: []int{1}}},
	}
	require.NoError(t, reconcile(stub, 2000, testLogger()))
	assert.True(t, stub.PotsCleared)
}

func TestReconcileLeavesLivePotsAlone(t *testing.T) {
	t.Parallel()

	stub := &enginetest.Stub{
		HandRunning: true,
		Seats:       2,
		Stacks:      map[int]int{0: 990, 1: 980},
		PotList:     []engine.Pot{{ID: 0, Total: 30, Eligible: []int{0, 1}}},
	}
	require.NoError(t, reconcile(stub, 2000, testLogger()))
	assert.False(t, stub.PotsCleared)
}

func TestReconcileDetectsLeak(t *testing.T) {
	t.Parallel()

	stub := &enginetest.Stub{
		HandRunning: true,
		Seats:       2,
		Stacks:      map[int]int{0: 900, 1: 980},
		PotList:     []engine.Pot{{ID: 0, Total: 30, Eligible: []int{0, 1}}},
	}
	err := reconcile(stub, 2000, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conservation")
}

func TestReconcileDetectsSurplusAfterClear(t *testing.T) {
	t.Parallel()

	// Clearing the pot cannot explain stacks that already exceed the
	// chips in play.
	stub := &enginetest.Stub{
		HandRunning: false,
		Seats:       2,
		Stacks:      map[int]int{0: 1010, 1: 1010},
		PotList:     []engine.Pot{{ID: 0, Total: 30, Eligible: []int{1}}},
	}
	err := reconcile(stub, 2000, testLogger())
	require.Error(t, err)
	assert.True(t, stub.PotsCleared)
}
