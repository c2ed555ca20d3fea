package match

import (
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

// Snapshot is the position right after Record was resolved. The first
// snapshot of a replay has Turn 0 and no record.
type Snapshot struct {
	Turn          int         `json:"turn"`
	PlayerBoard   mb.Board    `json:"player_board"`
	OpponentBoard mb.Board    `json:"opponent_board"`
	Record        *TurnRecord `json:"record,omitempty"`
}

// HistoryAtTurn rebuilds both boards as they stood right after turn was
// resolved. The live boards come back unchanged when turn is nil, nothing has
// been fired yet or the match is still in setup.
//
// The replay always starts from the initial snapshots. Starting from the live
// boards would apply hits and sinks a second time.
func HistoryAtTurn(s State, turn *int) (mb.Board, mb.Board) {
	if turn == nil || len(s.history) == 0 || s.phase == PhaseSetup {
		return s.PlayerBoard(), s.OpponentBoard()
	}

	player, opponent := s.InitialPlayerBoard(), s.InitialOpponentBoard()
	for _, record := range s.history {
		if record.Turn > *turn {
			break
		}
		player, opponent = applyRecord(player, opponent, record)
	}
	return player, opponent
}

// Replay lists the position after every turn, starting with the initial
// boards. It is empty during setup.
func Replay(s State) []Snapshot {
	if s.phase == PhaseSetup {
		return []Snapshot{}
	}

	player, opponent := s.InitialPlayerBoard(), s.InitialOpponentBoard()
	snapshots := make([]Snapshot, 0, len(s.history)+1)
	snapshots = append(snapshots, Snapshot{PlayerBoard: player, OpponentBoard: opponent})

	for i := range s.history {
		record := s.history[i]
		player, opponent = applyRecord(player, opponent, record)
		snapshots = append(snapshots, Snapshot{
			Turn:          record.Turn,
			PlayerBoard:   player,
			OpponentBoard: opponent,
			Record:        &record,
		})
	}
	return snapshots
}

// applyRecord fires the recorded shot at the board of the other side. A
// record that no longer applies leaves both boards as they are.
func applyRecord(player, opponent mb.Board, record TurnRecord) (mb.Board, mb.Board) {
	switch record.Shooter {
	case ShooterPlayer:
		if next, _, err := opponent.FireAt(record.Target); err == nil {
			opponent = next
		}
	case ShooterOpponent:
		if next, _, err := player.FireAt(record.Target); err == nil {
			player = next
		}
	case ShooterNone:
	}
	return player, opponent
}
