package api

import (
	"encoding/json"
	"fmt"

	mb "github.com/coltonsurfer/battleship/models/battleship"
	mc "github.com/coltonsurfer/battleship/models/connection"
	"github.com/coltonsurfer/battleship/models/match"
)

type Request struct {
	payload []byte
}

func NewRequest(payload []byte) Request {
	return Request{payload: payload}
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, err
	}
	return msg.Payload, nil
}

// Command turns a client message into the controller command for code. The
// bool is false for codes clients may not send.
func (r Request) Command(code uint8) (match.Command, bool, error) {
	switch code {
	case mc.CodeReset:
		return match.ResetCommand{}, true, nil

	case mc.CodeSetDifficulty:
		req, err := decodePayload[mc.ReqSetDifficulty](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.SetDifficultyCommand{Difficulty: req.Difficulty}, true, nil

	case mc.CodeRandomizeFleet:
		req, err := decodePayload[mc.ReqRandomizeFleet](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.RandomizeFleetCommand{Seed: req.Seed}, true, nil

	case mc.CodePlaceShip:
		req, err := decodePayload[mc.ReqPlaceShip](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.PlaceShipCommand{
			Kind:        req.Kind,
			Origin:      mb.NewCoordinates(req.X, req.Y),
			Orientation: req.Orientation,
		}, true, nil

	case mc.CodeRemoveShip:
		req, err := decodePayload[mc.ReqRemoveShip](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.RemoveShipCommand{Kind: req.Kind}, true, nil

	// The opponent fleet is always dealt from a server seed
	case mc.CodeStartGame:
		return match.StartCommand{}, true, nil

	case mc.CodeFire:
		req, err := decodePayload[mc.ReqFire](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.FireCommand{Coordinates: mb.NewCoordinates(req.X, req.Y)}, true, nil

	case mc.CodeSetHistoryCursor:
		req, err := decodePayload[mc.ReqSetHistoryCursor](r.payload)
		if err != nil {
			return nil, true, err
		}
		return match.SetHistoryCursorCommand{Turn: req.Turn}, true, nil

	case mc.CodeToggleHistory:
		return match.ToggleHistoryCommand{}, true, nil

	default:
		return nil, false, fmt.Errorf("invalid code in the incoming payload: %d", code)
	}
}
