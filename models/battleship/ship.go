package battleship

import (
	cerr "github.com/coltonsurfer/battleship/internal/error"
)

type ShipKind string

const (
	Carrier    ShipKind = "carrier"
	Battleship ShipKind = "battleship"
	Cruiser    ShipKind = "cruiser"
	Submarine  ShipKind = "submarine"
	Destroyer  ShipKind = "destroyer"
)

type ShipDefinition struct {
	Kind        ShipKind `json:"kind"`
	Length      int      `json:"length"`
	DisplayName string   `json:"display_name"`
}

// Fleet is the catalog in placement order. Every side places each kind
// exactly once.
var Fleet = [...]ShipDefinition{
	{Kind: Carrier, Length: 5, DisplayName: "Cattle Carrier (5)"},
	{Kind: Battleship, Length: 4, DisplayName: "Bronco Battleship (4)"},
	{Kind: Cruiser, Length: 3, DisplayName: "Cowboy Cruiser (3)"},
	{Kind: Submarine, Length: 3, DisplayName: "Stampede Sub (3)"},
	{Kind: Destroyer, Length: 2, DisplayName: "Lasso Destroyer (2)"},
}

// FleetSize is the number of distinct kinds a complete fleet holds.
const FleetSize = len(Fleet)

func ShipDef(kind ShipKind) (ShipDefinition, error) {
	for _, def := range Fleet {
		if def.Kind == kind {
			return def, nil
		}
	}
	return ShipDefinition{}, cerr.ErrInvalidShipKind(string(kind))
}

// MustShipDef panics on unknown kinds; only use it with the constants above.
func MustShipDef(kind ShipKind) ShipDefinition {
	def, err := ShipDef(kind)
	if err != nil {
		panic(err)
	}
	return def
}

type ShipPlacement struct {
	Kind        ShipKind      `json:"kind"`
	Origin      Coordinates   `json:"origin"`
	Orientation Orientation   `json:"orientation"`
	Length      int           `json:"length"`
	Hits        []Coordinates `json:"hits"`
}

func (sp ShipPlacement) Sunk() bool {
	return len(sp.Hits) >= sp.Length
}

// Cells returns the occupied positions starting at the origin.
func (sp ShipPlacement) Cells() []Coordinates {
	return shipCells(sp.Origin, sp.Length, sp.Orientation)
}

func (sp ShipPlacement) Covers(c Coordinates) bool {
	step := sp.Orientation.step()
	for i := 0; i < sp.Length; i++ {
		if sp.Origin.X+step.X*i == c.X && sp.Origin.Y+step.Y*i == c.Y {
			return true
		}
	}
	return false
}

func (sp ShipPlacement) isHitAt(c Coordinates) bool {
	for _, h := range sp.Hits {
		if h == c {
			return true
		}
	}
	return false
}

func (sp ShipPlacement) clone() ShipPlacement {
	out := sp
	out.Hits = make([]Coordinates, len(sp.Hits), max(len(sp.Hits), sp.Length))
	copy(out.Hits, sp.Hits)
	return out
}

func shipCells(origin Coordinates, length int, orientation Orientation) []Coordinates {
	step := orientation.step()
	cells := make([]Coordinates, length)
	for i := 0; i < length; i++ {
		cells[i] = Coordinates{X: origin.X + step.X*i, Y: origin.Y + step.Y*i}
	}
	return cells
}
