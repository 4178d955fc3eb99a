package llm

import (
	"github.com/feltlabs/holdemd/internal/engine"
)

// MemoryEntry is one applied action remembered within the current hand.
type MemoryEntry struct {
	Phase      engine.Phase
	Action     engine.Action
	Reasoning  string
	Confidence float64
}

// Memory is a seat's record of its own applied actions for one hand.
// It is created at hand start, discarded at settle, and never shared
// across seats or hands. Entries are appended only after the action has
// been applied, so the memory never contains speculative decisions.
type Memory struct {
	entries []MemoryEntry
}

func (m *Memory) Append(e MemoryEntry) {
	m.entries = append(m.entries, e)
}

func (m *Memory) Entries() []MemoryEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}
