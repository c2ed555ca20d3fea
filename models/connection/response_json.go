package connection

import (
	mb "github.com/coltonsurfer/battleship/models/battleship"
	"github.com/coltonsurfer/battleship/models/match"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
	MatchId   string `json:"match_id"`
}

// RespState is everything the UI needs to draw a match. The opponent board
// never shows ships the player has not hit yet.
type RespState struct {
	MatchId        string              `json:"match_id"`
	Phase          match.Phase         `json:"phase"`
	Difficulty     mb.Difficulty       `json:"difficulty"`
	Turn           int                 `json:"turn"`
	Winner         match.Shooter       `json:"winner,omitempty"`
	Thinking       bool                `json:"thinking"`
	Catalog        []mb.ShipDefinition `json:"catalog"`
	PlacementOrder []mb.ShipKind       `json:"placement_order"`

	PlayerBoard   mb.Board `json:"player_board"`
	OpponentBoard mb.Board `json:"opponent_board"`

	OpponentQueue []mb.Coordinates `json:"opponent_queue"`
	Heatmap       [][]int          `json:"heatmap,omitempty"`

	History       []match.TurnRecord `json:"history"`
	HistoryOpen   bool               `json:"history_open"`
	HistoryCursor *int               `json:"history_cursor,omitempty"`

	// Boards at the history cursor; absent while viewing live play.
	CursorPlayerBoard   *mb.Board `json:"cursor_player_board,omitempty"`
	CursorOpponentBoard *mb.Board `json:"cursor_opponent_board,omitempty"`
}

func NewRespState(matchId string, s match.State) RespState {
	mem := s.Memory()
	resp := RespState{
		MatchId:        matchId,
		Phase:          s.Phase(),
		Difficulty:     s.Difficulty(),
		Turn:           s.Turn(),
		Winner:         s.Winner(),
		Thinking:       s.Thinking(),
		Catalog:        append([]mb.ShipDefinition{}, mb.Fleet[:]...),
		PlacementOrder: s.PlacementOrder(),
		PlayerBoard:    s.PlayerBoard(),
		OpponentBoard:  s.OpponentBoard().Fogged(),
		OpponentQueue:  mem.Queue,
		Heatmap:        mem.Heatmap,
		History:        s.History(),
		HistoryOpen:    s.HistoryOpen(),
		HistoryCursor:  s.HistoryCursor(),
	}

	if resp.HistoryCursor != nil {
		player, opponent := match.HistoryAtTurn(s, resp.HistoryCursor)
		opponent = opponent.Fogged()
		resp.CursorPlayerBoard = &player
		resp.CursorOpponentBoard = &opponent
	}
	return resp
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
