package opponent

import (
	"sort"

	mb "github.com/coltonsurfer/battleship/models/battleship"
)

// OnHit records a hit at c. Sinking ends the pursuit; otherwise the
// untargeted neighbours of c join the follow-up queue.
func OnHit(mem Memory, c mb.Coordinates, sunk bool, gridSize int) Memory {
	out := mem.Clone()
	out.LastHits = append(out.LastHits, c)

	if sunk {
		out.Queue = []mb.Coordinates{}
		out.LastHits = []mb.Coordinates{}
		return out
	}

	seen := make(map[mb.Coordinates]struct{}, len(out.Queue)+4)
	queue := make([]mb.Coordinates, 0, len(out.Queue)+4)
	for _, q := range out.Queue {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queue = append(queue, q)
	}
	for _, n := range c.Neighbours(gridSize) {
		if out.HasTargeted(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		queue = append(queue, n)
	}

	out.Queue = sortTargets(queue, out.LastHits)
	return out
}

// OnMiss leaves the pursuit as it is.
func OnMiss(mem Memory) Memory {
	return mem.Clone()
}

// OnShot applies the feedback matching outcome.
func OnShot(mem Memory, c mb.Coordinates, outcome mb.ShotOutcome, gridSize int) Memory {
	if outcome.IsHit() {
		return OnHit(mem, c, outcome.Sunk, gridSize)
	}
	return OnMiss(mem)
}

// sortTargets orders the queue along the axis of the last two hits, closest
// to the most recent hit first. Without a shared axis the order is kept.
func sortTargets(queue, hits []mb.Coordinates) []mb.Coordinates {
	if len(hits) < 2 {
		return queue
	}

	prev, last := hits[len(hits)-2], hits[len(hits)-1]
	switch {
	case prev.X == last.X:
		sort.SliceStable(queue, func(i, j int) bool {
			return abs(queue[i].Y-last.Y) < abs(queue[j].Y-last.Y)
		})
	case prev.Y == last.Y:
		sort.SliceStable(queue, func(i, j int) bool {
			return abs(queue[i].X-last.X) < abs(queue[j].X-last.X)
		})
	}
	return queue
}
