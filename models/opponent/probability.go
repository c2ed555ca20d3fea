package opponent

import (
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

const (
	adjacentHitBonus = 50
	inlineHitBonus   = 30
	inlineReach      = 2
	maxCenterBonus   = 10
	parityBonus      = 5
)

type heatCandidate struct {
	c            mb.Coordinates
	score        int
	adjacentHits int
	aligned      bool
	centerDist   int
}

// better orders candidates by score, then adjacent hits, then alignment
// with a known hit, then closeness to the center.
func (hc heatCandidate) better(other heatCandidate) bool {
	if hc.score != other.score {
		return hc.score > other.score
	}
	if hc.adjacentHits != other.adjacentHits {
		return hc.adjacentHits > other.adjacentHits
	}
	if hc.aligned != other.aligned {
		return hc.aligned
	}
	return hc.centerDist < other.centerDist
}

// PickHardShot counts, for every remaining kind, each placement that is
// still consistent with the known hits and misses and weights the cells it
// covers. It falls back to PickMediumShot when no placement fits.
func PickHardShot(board mb.Board, mem Memory, rng Rand) (mb.Coordinates, Memory, error) {
	out := mem.Clone()
	hits := board.CellsWithStatus(mb.CellHit)
	heat := placementHeat(board, out, hits)

	var (
		best  heatCandidate
		found bool
	)
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			if heat[y][x] == 0 {
				continue
			}

			c := mb.NewCoordinates(x, y)
			adjacent := adjacentHits(board, c)
			center := centerDistance(c, board.Size)
			score := heat[y][x] + adjacent*adjacentHitBonus + inlineHits(board, c)*inlineHitBonus
			score += max(0, maxCenterBonus-center/2)
			if (x+y)%2 == 0 {
				score += parityBonus
			}
			heat[y][x] = score

			candidate := heatCandidate{
				c:            c,
				score:        score,
				adjacentHits: adjacent,
				aligned:      alignedWithHit(c, hits),
				centerDist:   center,
			}
			if !found || candidate.better(best) {
				best = candidate
				found = true
			}
		}
	}

	if !found {
		out.Heatmap = nil
		return PickMediumShot(board, out, rng)
	}

	out.markTargeted(best.c)
	out.Heatmap = heat
	return best.c, out, nil
}

// placementHeat adds the ship length to every untargeted cell of each
// consistent placement. A placement must avoid misses and sunk ships and,
// once any hit is known, cover at least one hit.
func placementHeat(board mb.Board, mem Memory, hits []mb.Coordinates) [][]int {
	heat := make([][]int, board.Size)
	for y := range heat {
		heat[y] = make([]int, board.Size)
	}

	for _, kind := range board.Remaining {
		def, err := mb.ShipDef(kind)
		if err != nil {
			continue
		}

		for y := 0; y < board.Size; y++ {
			for x := 0; x < board.Size; x++ {
				for _, o := range [...]mb.Orientation{mb.Horizontal, mb.Vertical} {
					placement := mb.ShipPlacement{Origin: mb.NewCoordinates(x, y), Orientation: o, Length: def.Length}
					cells, ok := consistentCells(board, placement, len(hits) > 0)
					if !ok {
						continue
					}
					for _, c := range cells {
						if isUntargeted(board, mem, c) {
							heat[c.Y][c.X] += def.Length
						}
					}
				}
			}
		}
	}
	return heat
}

func consistentCells(board mb.Board, placement mb.ShipPlacement, mustCoverHit bool) ([]mb.Coordinates, bool) {
	cells := placement.Cells()
	coversHit := false
	for _, c := range cells {
		if !board.InBounds(c) {
			return nil, false
		}
		switch board.Cell(c).Status {
		case mb.CellMiss, mb.CellSunk:
			return nil, false
		case mb.CellHit:
			coversHit = true
		case mb.CellEmpty, mb.CellShip:
		}
	}
	if mustCoverHit && !coversHit {
		return nil, false
	}
	return cells, true
}

func adjacentHits(board mb.Board, c mb.Coordinates) int {
	n := 0
	for _, nb := range c.Neighbours(board.Size) {
		if board.Cell(nb).Status == mb.CellHit {
			n++
		}
	}
	return n
}

// inlineHits counts hits up to inlineReach cells away along the row and
// column, stopping at the first miss or sunk cell in each direction.
func inlineHits(board mb.Board, c mb.Coordinates) int {
	n := 0
	for _, dir := range [...]mb.Coordinates{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		for d := 1; d <= inlineReach; d++ {
			p := mb.NewCoordinates(c.X+dir.X*d, c.Y+dir.Y*d)
			if !board.InBounds(p) {
				break
			}
			status := board.Cell(p).Status
			if status == mb.CellHit {
				n++
				continue
			}
			if status == mb.CellMiss || status == mb.CellSunk {
				break
			}
		}
	}
	return n
}

func alignedWithHit(c mb.Coordinates, hits []mb.Coordinates) bool {
	for _, h := range hits {
		if h.X == c.X || h.Y == c.Y {
			return true
		}
	}
	return false
}

// centerDistance is the Manhattan distance to the board center measured in
// half cells, so even sized boards stay in integers.
func centerDistance(c mb.Coordinates, size int) int {
	return abs(2*c.X-(size-1)) + abs(2*c.Y-(size-1))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
