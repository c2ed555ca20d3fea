package battleship

import (
	"math/rand"

	cerr "github.com/coltonsurfer/battleship/internal/error"
)

const maxPlacementAttempts = 500

// RandomizeFleet places the whole catalog on a default sized board. The
// same seed always yields the same board.
func RandomizeFleet(seed int64) (Board, error) {
	return RandomizeFleetOnGrid(DefaultGridSize, seed)
}

func RandomizeFleetOnGrid(gridSize int, seed int64) (Board, error) {
	rng := rand.New(rand.NewSource(seed))
	board := NewBoard(gridSize)

	for _, def := range Fleet {
		placed := false

		for attempts := 0; attempts < maxPlacementAttempts && !placed; attempts++ {
			orientation := Horizontal
			if rng.Float64() >= 0.5 {
				orientation = Vertical
			}

			maxX, maxY := board.Size-1, board.Size-1
			if orientation == Horizontal {
				maxX = board.Size - def.Length
			} else {
				maxY = board.Size - def.Length
			}
			if maxX < 0 || maxY < 0 {
				continue
			}

			origin := Coordinates{X: rng.Intn(maxX + 1), Y: rng.Intn(maxY + 1)}
			if !board.CanPlace(def, origin, orientation) {
				continue
			}

			next, err := board.PlaceShip(def, origin, orientation)
			if err != nil {
				return Board{}, err
			}
			board = next
			placed = true
		}

		if !placed {
			return Board{}, cerr.ErrRandomPlacementFailed(string(def.Kind), maxPlacementAttempts)
		}
	}

	return board, nil
}
