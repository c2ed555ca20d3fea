package battleship

import (
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/coltonsurfer/battleship/internal/error"
)

const DefaultGridSize = 10

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

// Key is the serialized form used in targeted sets, e.g. "3,7".
func (c Coordinates) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Coordinates) String() string {
	return "(" + c.Key() + ")"
}

// Neighbours returns the in-bound orthogonal neighbours in the order
// right, left, down, up.
func (c Coordinates) Neighbours(gridSize int) []Coordinates {
	candidates := [4]Coordinates{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}

	out := make([]Coordinates, 0, len(candidates))
	for _, n := range candidates {
		if InBounds(n, gridSize) {
			out = append(out, n)
		}
	}
	return out
}

func InBounds(c Coordinates, gridSize int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < gridSize && c.Y < gridSize
}

type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "orientation(" + strconv.Itoa(int(o)) + ")"
	}
}

func (o Orientation) step() Coordinates {
	if o == Vertical {
		return Coordinates{X: 0, Y: 1}
	}
	return Coordinates{X: 1, Y: 0}
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, cerr.ErrInvalidOrientation(s)
}

type CellStatus uint8

const (
	CellEmpty CellStatus = iota
	CellShip
	CellMiss
	CellHit
	CellSunk
)

var cellStatusNames = [...]string{
	CellEmpty: "empty",
	CellShip:  "ship",
	CellMiss:  "miss",
	CellHit:   "hit",
	CellSunk:  "sunk",
}

func (s CellStatus) String() string {
	if int(s) < len(cellStatusNames) {
		return cellStatusNames[s]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

func (s CellStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CellStatus) UnmarshalText(text []byte) error {
	for i, name := range cellStatusNames {
		if name == string(text) {
			*s = CellStatus(i)
			return nil
		}
	}
	return fmt.Errorf("invalid cell status: %q", text)
}

// Cell is one grid position. Kind is only meaningful for the ship, hit
// and sunk statuses and is the zero value otherwise.
type Cell struct {
	Status CellStatus `json:"status"`
	Kind   ShipKind   `json:"kind,omitempty"`
}

func EmptyCell() Cell { return Cell{Status: CellEmpty} }

func MissCell() Cell { return Cell{Status: CellMiss} }

func ShipCell(kind ShipKind) Cell { return Cell{Status: CellShip, Kind: kind} }

func HitCell(kind ShipKind) Cell { return Cell{Status: CellHit, Kind: kind} }

func SunkCell(kind ShipKind) Cell { return Cell{Status: CellSunk, Kind: kind} }

// Targeted reports whether the cell was already fired at.
func (c Cell) Targeted() bool {
	switch c.Status {
	case CellMiss, CellHit, CellSunk:
		return true
	case CellEmpty, CellShip:
		return false
	default:
		panic("unknown cell status: " + c.Status.String())
	}
}

// Occupied reports whether a ship sits on the cell, hit or not.
func (c Cell) Occupied() bool {
	switch c.Status {
	case CellShip, CellHit, CellSunk:
		return true
	case CellEmpty, CellMiss:
		return false
	default:
		panic("unknown cell status: " + c.Status.String())
	}
}

// Grid is indexed as grid[y][x].
type Grid [][]Cell

// Creates a new default grid
// All positions are empty
func NewGrid(gridSize int) Grid {
	grid := make(Grid, gridSize)
	for i := 0; i < gridSize; i++ {
		grid[i] = make([]Cell, gridSize)
	}
	return grid
}

func (g Grid) clone() Grid {
	out := make(Grid, len(g))
	for y := range g {
		out[y] = make([]Cell, len(g[y]))
		copy(out[y], g[y])
	}
	return out
}
