package connection

import (
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

type ReqSetDifficulty struct {
	Difficulty mb.Difficulty `json:"difficulty"`
}

// ReqRandomizeFleet leaves the seed to the server when it is omitted. It only
// shapes the client's own fleet.
type ReqRandomizeFleet struct {
	Seed *int64 `json:"seed,omitempty"`
}

type ReqPlaceShip struct {
	Kind        mb.ShipKind    `json:"kind"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Orientation mb.Orientation `json:"orientation"`
}

type ReqRemoveShip struct {
	Kind mb.ShipKind `json:"kind"`
}

type ReqFire struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ReqSetHistoryCursor goes back to the live boards when Turn is null.
type ReqSetHistoryCursor struct {
	Turn *int `json:"turn"`
}
