package opponent

import (
	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

// Rand is the randomness a picker needs; *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Picker chooses the next shot against board.
type Picker func(board mb.Board, mem Memory, rng Rand) (mb.Coordinates, Memory, error)

// PickerFor maps a difficulty to its picker. Unknown values play easy.
func PickerFor(d mb.Difficulty) Picker {
	switch d {
	case mb.DifficultyMedium:
		return PickMediumShot
	case mb.DifficultyHard:
		return PickHardShot
	default:
		return PickEasyShot
	}
}

func PickShot(d mb.Difficulty, board mb.Board, mem Memory, rng Rand) (mb.Coordinates, Memory, error) {
	return PickerFor(d)(board, mem, rng)
}

// PickEasyShot fires uniformly at random.
func PickEasyShot(board mb.Board, mem Memory, rng Rand) (mb.Coordinates, Memory, error) {
	out := mem.Clone()
	cells := untargetedCells(board, out)
	if len(cells) == 0 {
		return mb.Coordinates{}, out, cerr.ErrBoardExhausted(board.Size)
	}

	c := cells[rng.Intn(len(cells))]
	out.markTargeted(c)
	return c, out, nil
}

// PickMediumShot drains the follow-up queue first and otherwise hunts on
// the even checkerboard.
func PickMediumShot(board mb.Board, mem Memory, rng Rand) (mb.Coordinates, Memory, error) {
	out := mem.Clone()

	for len(out.Queue) > 0 {
		c := out.Queue[0]
		out.Queue = out.Queue[1:]
		if !isUntargeted(board, out, c) {
			continue
		}
		out.markTargeted(c)
		return c, out, nil
	}

	cells := untargetedCells(board, out)
	pool := make([]mb.Coordinates, 0, len(cells)/2+1)
	for _, c := range cells {
		if (c.X+c.Y)%2 == 0 {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = cells
	}
	if len(pool) == 0 {
		return mb.Coordinates{}, out, cerr.ErrBoardExhausted(board.Size)
	}

	c := pool[rng.Intn(len(pool))]
	out.markTargeted(c)
	return c, out, nil
}

func isUntargeted(board mb.Board, mem Memory, c mb.Coordinates) bool {
	return board.CanTarget(c) && !mem.HasTargeted(c)
}

// untargetedCells scans row by row so results are reproducible for a
// given rng.
func untargetedCells(board mb.Board, mem Memory) []mb.Coordinates {
	resolved := board.TargetedCells()
	cells := make([]mb.Coordinates, 0, board.Size*board.Size-len(resolved))
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			c := mb.NewCoordinates(x, y)
			if _, ok := resolved[c.Key()]; ok || mem.HasTargeted(c) {
				continue
			}
			cells = append(cells, c)
		}
	}
	return cells
}
