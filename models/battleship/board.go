package battleship

import (
	"strconv"

	cerr "github.com/coltonsurfer/battleship/internal/error"
)

type ShotResult uint8

const (
	ShotMiss ShotResult = iota
	ShotHit
)

func (r ShotResult) String() string {
	switch r {
	case ShotMiss:
		return "miss"
	case ShotHit:
		return "hit"
	default:
		return "result(" + strconv.Itoa(int(r)) + ")"
	}
}

func (r ShotResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ShotResult) UnmarshalText(text []byte) error {
	switch string(text) {
	case "miss":
		*r = ShotMiss
	case "hit":
		*r = ShotHit
	default:
		return cerr.ErrInvalidShotResult(string(text))
	}
	return nil
}

// ShotOutcome is what the shooter learns from one shot. Kind and Sunk are
// only set on hits.
type ShotOutcome struct {
	Result ShotResult `json:"result"`
	Kind   ShipKind   `json:"kind,omitempty"`
	Sunk   bool       `json:"sunk,omitempty"`
}

func (o ShotOutcome) IsHit() bool {
	return o.Result == ShotHit
}

// Board is one side's grid with the ships placed on it. Remaining holds the
// placed kinds that are not sunk yet.
//
// Every method leaves the receiver untouched; operations that change the
// board return a new, independent Board.
type Board struct {
	Size      int             `json:"size"`
	Grid      Grid            `json:"grid"`
	Ships     []ShipPlacement `json:"ships"`
	Remaining []ShipKind      `json:"remaining"`
}

func NewBoard(gridSize int) Board {
	return Board{
		Size:      gridSize,
		Grid:      NewGrid(gridSize),
		Ships:     make([]ShipPlacement, 0, FleetSize),
		Remaining: make([]ShipKind, 0, FleetSize),
	}
}

func NewDefaultBoard() Board {
	return NewBoard(DefaultGridSize)
}

func (b Board) InBounds(c Coordinates) bool {
	return InBounds(c, b.Size)
}

// Cell panics when c is out of bounds, like indexing the grid directly.
func (b Board) Cell(c Coordinates) Cell {
	return b.Grid[c.Y][c.X]
}

// CanTarget reports whether a shot at c would be accepted by FireAt.
func (b Board) CanTarget(c Coordinates) bool {
	return b.InBounds(c) && !b.Cell(c).Targeted()
}

func (b Board) Placement(kind ShipKind) (ShipPlacement, bool) {
	idx := b.placementIndex(kind)
	if idx < 0 {
		return ShipPlacement{}, false
	}
	return b.Ships[idx].clone(), true
}

func (b Board) placementIndex(kind ShipKind) int {
	for i := range b.Ships {
		if b.Ships[i].Kind == kind {
			return i
		}
	}
	return -1
}

// CanPlace accepts cells that are empty or already hold the same kind, so a
// ship can be moved over its own previous footprint.
func (b Board) CanPlace(def ShipDefinition, origin Coordinates, orientation Orientation) bool {
	for _, c := range shipCells(origin, def.Length, orientation) {
		if !b.InBounds(c) {
			return false
		}
		cell := b.Cell(c)
		if cell.Status == CellEmpty {
			continue
		}
		if cell.Status == CellShip && cell.Kind == def.Kind {
			continue
		}
		return false
	}
	return true
}

func (b Board) PlaceShip(def ShipDefinition, origin Coordinates, orientation Orientation) (Board, error) {
	if !b.CanPlace(def, origin, orientation) {
		return b, cerr.ErrShipPlacement(string(def.Kind), origin.X, origin.Y)
	}

	out := b.Clone()
	placement := ShipPlacement{
		Kind:        def.Kind,
		Origin:      origin,
		Orientation: orientation,
		Length:      def.Length,
		Hits:        make([]Coordinates, 0, def.Length),
	}

	idx := out.placementIndex(def.Kind)
	if idx >= 0 {
		previous := out.Ships[idx]
		for _, c := range previous.Cells() {
			out.Grid[c.Y][c.X] = EmptyCell()
		}
		for _, h := range previous.Hits {
			if placement.Covers(h) {
				placement.Hits = append(placement.Hits, h)
			}
		}
		out.Ships[idx] = placement
	} else {
		out.Ships = append(out.Ships, placement)
	}

	for _, c := range placement.Cells() {
		if placement.isHitAt(c) {
			out.Grid[c.Y][c.X] = HitCell(def.Kind)
			continue
		}
		out.Grid[c.Y][c.X] = ShipCell(def.Kind)
	}

	if !containsKind(out.Remaining, def.Kind) {
		out.Remaining = append(out.Remaining, def.Kind)
	}
	return out, nil
}

// RemoveShip returns b itself when kind was never placed.
func (b Board) RemoveShip(kind ShipKind) Board {
	idx := b.placementIndex(kind)
	if idx < 0 {
		return b
	}

	out := b.Clone()
	for _, c := range out.Ships[idx].Cells() {
		out.Grid[c.Y][c.X] = EmptyCell()
	}
	out.Ships = append(out.Ships[:idx], out.Ships[idx+1:]...)
	out.Remaining = withoutKind(out.Remaining, kind)
	return out
}

func (b Board) FireAt(c Coordinates) (Board, ShotOutcome, error) {
	if !b.InBounds(c) {
		return b, ShotOutcome{}, cerr.ErrXorYOutOfGridBound(c.X, c.Y)
	}

	cell := b.Cell(c)
	if cell.Targeted() {
		return b, ShotOutcome{}, cerr.ErrAttackPositionAlreadyFilled(c.X, c.Y)
	}

	out := b.Clone()
	if cell.Status == CellEmpty {
		out.Grid[c.Y][c.X] = MissCell()
		return out, ShotOutcome{Result: ShotMiss}, nil
	}

	kind := cell.Kind
	out.Grid[c.Y][c.X] = HitCell(kind)
	outcome := ShotOutcome{Result: ShotHit, Kind: kind}

	idx := out.placementIndex(kind)
	if idx < 0 {
		return out, outcome, nil
	}

	ship := &out.Ships[idx]
	if !ship.isHitAt(c) {
		ship.Hits = append(ship.Hits, c)
	}
	if ship.Sunk() {
		for _, sc := range ship.Cells() {
			out.Grid[sc.Y][sc.X] = SunkCell(kind)
		}
		out.Remaining = withoutKind(out.Remaining, kind)
		outcome.Sunk = true
	}
	return out, outcome, nil
}

func (b Board) IsFleetComplete() bool {
	placed := make(map[ShipKind]struct{}, len(b.Ships))
	for _, s := range b.Ships {
		placed[s.Kind] = struct{}{}
	}
	return len(placed) == FleetSize
}

func (b Board) IsVictory() bool {
	return len(b.Remaining) == 0
}

// UnplacedKinds lists the catalog kinds missing from the board, in
// placement order.
func (b Board) UnplacedKinds() []ShipKind {
	out := make([]ShipKind, 0, FleetSize)
	for _, def := range Fleet {
		if b.placementIndex(def.Kind) < 0 {
			out = append(out, def.Kind)
		}
	}
	return out
}

// CellsWithStatus scans row by row.
func (b Board) CellsWithStatus(status CellStatus) []Coordinates {
	var out []Coordinates
	for y := range b.Grid {
		for x := range b.Grid[y] {
			if b.Grid[y][x].Status == status {
				out = append(out, Coordinates{X: x, Y: y})
			}
		}
	}
	return out
}

// TargetedCells returns the keys of every position already fired at.
func (b Board) TargetedCells() map[string]struct{} {
	out := make(map[string]struct{})
	for y := range b.Grid {
		for x := range b.Grid[y] {
			if b.Grid[y][x].Targeted() {
				out[Coordinates{X: x, Y: y}.Key()] = struct{}{}
			}
		}
	}
	return out
}

// Fogged is the board as the opposing shooter sees it: untouched ship
// cells read as empty and only sunk placements are listed.
func (b Board) Fogged() Board {
	out := b.Clone()
	for y := range out.Grid {
		for x := range out.Grid[y] {
			if out.Grid[y][x].Status == CellShip {
				out.Grid[y][x] = EmptyCell()
			}
		}
	}

	ships := make([]ShipPlacement, 0, len(out.Ships))
	for _, s := range out.Ships {
		if s.Sunk() {
			ships = append(ships, s)
		}
	}
	out.Ships = ships
	return out
}

func (b Board) Clone() Board {
	out := Board{
		Size:      b.Size,
		Grid:      b.Grid.clone(),
		Ships:     make([]ShipPlacement, len(b.Ships), max(len(b.Ships), FleetSize)),
		Remaining: make([]ShipKind, len(b.Remaining), max(len(b.Remaining), FleetSize)),
	}
	for i := range b.Ships {
		out.Ships[i] = b.Ships[i].clone()
	}
	copy(out.Remaining, b.Remaining)
	return out
}

func containsKind(kinds []ShipKind, kind ShipKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func withoutKind(kinds []ShipKind, kind ShipKind) []ShipKind {
	out := make([]ShipKind, 0, len(kinds))
	for _, k := range kinds {
		if k != kind {
			out = append(out, k)
		}
	}
	return out
}
