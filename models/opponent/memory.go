// Package opponent picks the computer player's shots.
//
// Every picker takes the board it fires at plus a Memory value and returns
// the chosen coordinates with an updated copy of that memory. The input
// memory is never modified, so callers thread the returned value into the
// next call.
package opponent

import (
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

// Memory persists across the opponent's turns within one match.
type Memory struct {
	// Targeted holds coordinates keys of every shot already picked.
	Targeted map[string]struct{} `json:"-"`

	// Queue is the ordered list of follow-up candidates while a ship is
	// being pursued.
	Queue []mb.Coordinates `json:"queue"`

	// LastHits are the hits of the current pursuit, oldest first.
	LastHits []mb.Coordinates `json:"last_hits"`

	// Heatmap is the last probability field computed by the hard picker,
	// indexed [y][x]. Only used for display.
	Heatmap [][]int `json:"heatmap,omitempty"`
}

func NewMemory() Memory {
	return Memory{
		Targeted: make(map[string]struct{}),
		Queue:    []mb.Coordinates{},
		LastHits: []mb.Coordinates{},
	}
}

func (m Memory) HasTargeted(c mb.Coordinates) bool {
	_, ok := m.Targeted[c.Key()]
	return ok
}

// TargetedCount is the number of shots picked so far.
func (m Memory) TargetedCount() int {
	return len(m.Targeted)
}

func (m Memory) Clone() Memory {
	out := Memory{
		Targeted: make(map[string]struct{}, len(m.Targeted)+1),
		Queue:    append([]mb.Coordinates{}, m.Queue...),
		LastHits: append([]mb.Coordinates{}, m.LastHits...),
	}
	for k := range m.Targeted {
		out.Targeted[k] = struct{}{}
	}
	if m.Heatmap != nil {
		out.Heatmap = make([][]int, len(m.Heatmap))
		for y := range m.Heatmap {
			out.Heatmap[y] = append([]int{}, m.Heatmap[y]...)
		}
	}
	return out
}

func (m *Memory) markTargeted(c mb.Coordinates) {
	if m.Targeted == nil {
		m.Targeted = make(map[string]struct{})
	}
	m.Targeted[c.Key()] = struct{}{}
}
