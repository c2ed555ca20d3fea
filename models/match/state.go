// Package match sequences a solo battleship match between the player and the
// computer opponent.
//
// State is an immutable value. Every transition returns a new State and leaves
// the receiver untouched, which is what lets HistoryAtTurn and Replay rebuild
// any earlier position from the initial boards and the turn log.
package match

import (
	"fmt"
	"time"

	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
	"github.com/coltonsurfer/battleship/models/opponent"
)

type Phase uint8

const (
	PhaseSetup Phase = iota
	PhasePlayerTurn
	PhaseOpponentTurn
	PhaseFinished
)

var phaseNames = [...]string{"setup", "player_turn", "opponent_turn", "finished"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", text)
}

type Shooter uint8

const (
	ShooterNone Shooter = iota
	ShooterPlayer
	ShooterOpponent
)

func (s Shooter) String() string {
	switch s {
	case ShooterPlayer:
		return "player"
	case ShooterOpponent:
		return "opponent"
	default:
		return ""
	}
}

func (s Shooter) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shooter) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*s = ShooterNone
	case "player":
		*s = ShooterPlayer
	case "opponent":
		*s = ShooterOpponent
	default:
		return fmt.Errorf("unknown shooter: %q", text)
	}
	return nil
}

// TurnRecord is one resolved shot. Records are never modified once appended.
type TurnRecord struct {
	Turn    int            `json:"turn"`
	Shooter Shooter        `json:"shooter"`
	Target  mb.Coordinates `json:"target"`
	Result  mb.ShotResult  `json:"result"`
	Kind    mb.ShipKind    `json:"kind,omitempty"`
	Sunk    bool           `json:"sunk,omitempty"`
	At      time.Time      `json:"at"`
}

// OpponentShot is a resolved opponent move waiting to be applied with
// ResolveOpponentShot.
type OpponentShot struct {
	Coordinates mb.Coordinates
	Board       mb.Board
	Outcome     mb.ShotOutcome
	Memory      opponent.Memory
}

type State struct {
	phase      Phase
	difficulty mb.Difficulty

	playerBoard   mb.Board
	opponentBoard mb.Board

	initialPlayerBoard   mb.Board
	initialOpponentBoard mb.Board

	memory  opponent.Memory
	turn    int
	history []TurnRecord

	historyCursor *int
	historyOpen   bool

	winner   Shooter
	thinking bool
}

func NewState(difficulty mb.Difficulty) State {
	return State{
		phase:         PhaseSetup,
		difficulty:    difficulty,
		playerBoard:   mb.NewDefaultBoard(),
		opponentBoard: mb.NewDefaultBoard(),
		memory:        opponent.NewMemory(),
		history:       []TurnRecord{},
	}
}

func (s State) Phase() Phase { return s.phase }
func (s State) Difficulty() mb.Difficulty { return s.difficulty }
func (s State) PlayerBoard() mb.Board { return s.playerBoard.Clone() }
func (s State) OpponentBoard() mb.Board { return s.opponentBoard.Clone() }
func (s State) Memory() opponent.Memory { return s.memory.Clone() }
func (s State) Turn() int { return s.turn }
func (s State) Winner() Shooter { return s.winner }
func (s State) Thinking() bool { return s.thinking }
func (s State) HistoryOpen() bool { return s.historyOpen }
func (s State) InitialPlayerBoard() mb.Board { return s.initialPlayerBoard.Clone() }
func (s State) InitialOpponentBoard() mb.Board { return s.initialOpponentBoard.Clone() }

func (s State) History() []TurnRecord {
	return append([]TurnRecord{}, s.history...)
}

func (s State) HistoryCursor() *int {
	return copyTurn(s.historyCursor)
}

// PlacementOrder lists the catalog kinds the player still has to place.
func (s State) PlacementOrder() []mb.ShipKind {
	return s.playerBoard.UnplacedKinds()
}

// Reset discards both boards, the log and the opponent memory. The difficulty
// survives.
func (s State) Reset() State {
	next := NewState(s.difficulty)
	next.historyOpen = s.historyOpen
	return next
}

// SetDifficulty starts over during setup and otherwise only records the new
// value for the next match.
func (s State) SetDifficulty(d mb.Difficulty) (State, error) {
	if !d.IsValid() {
		return s, cerr.ErrInvalidGameDifficulty(d.String())
	}
	if s.phase == PhaseSetup {
		next := NewState(d)
		next.historyOpen = s.historyOpen
		return next, nil
	}

	next := s.withoutCursor()
	next.difficulty = d
	return next, nil
}

func (s State) RandomizeFleet(seed int64) (State, error) {
	if s.phase != PhaseSetup {
		return s, cerr.ErrIllegalCommand("randomize fleet", s.phase.String())
	}

	board, err := mb.RandomizeFleetOnGrid(s.playerBoard.Size, seed)
	if err != nil {
		return s, err
	}
	next := s.withoutCursor()
	next.playerBoard = board
	return next, nil
}

func (s State) SetPlayerBoard(board mb.Board) (State, error) {
	if s.phase != PhaseSetup {
		return s, cerr.ErrIllegalCommand("set board", s.phase.String())
	}
	if board.Size != s.playerBoard.Size {
		return s, cerr.ErrIllegalCommand("set board", s.phase.String())
	}

	next := s.withoutCursor()
	next.playerBoard = board.Clone()
	return next, nil
}

func (s State) PlaceShip(kind mb.ShipKind, origin mb.Coordinates, orientation mb.Orientation) (State, error) {
	if s.phase != PhaseSetup {
		return s, cerr.ErrIllegalCommand("place ship", s.phase.String())
	}

	def, err := mb.ShipDef(kind)
	if err != nil {
		return s, err
	}
	board, err := s.playerBoard.PlaceShip(def, origin, orientation)
	if err != nil {
		return s, err
	}
	next := s.withoutCursor()
	next.playerBoard = board
	return next, nil
}

func (s State) RemoveShip(kind mb.ShipKind) (State, error) {
	if s.phase != PhaseSetup {
		return s, cerr.ErrIllegalCommand("remove ship", s.phase.String())
	}

	next := s.withoutCursor()
	next.playerBoard = s.playerBoard.RemoveShip(kind)
	return next, nil
}

// Start deals the opponent a fleet from seed and hands the first shot to the
// player. The player fleet must be complete.
func (s State) Start(seed int64) (State, error) {
	if s.phase != PhaseSetup || !s.playerBoard.IsFleetComplete() {
		return s, cerr.ErrIllegalCommand("start", s.phase.String())
	}

	opponentBoard, err := mb.RandomizeFleetOnGrid(s.playerBoard.Size, seed)
	if err != nil {
		return s, err
	}

	return State{
		phase:                PhasePlayerTurn,
		difficulty:           s.difficulty,
		playerBoard:          s.playerBoard.Clone(),
		opponentBoard:        opponentBoard,
		initialPlayerBoard:   s.playerBoard.Clone(),
		initialOpponentBoard: opponentBoard.Clone(),
		memory:               opponent.NewMemory(),
		turn:                 1,
		history:              []TurnRecord{},
		historyOpen:          s.historyOpen,
	}, nil
}

// PlayerFire resolves the player's shot at c against the opponent fleet.
func (s State) PlayerFire(c mb.Coordinates) (State, error) {
	if s.phase != PhasePlayerTurn || !s.opponentBoard.CanTarget(c) {
		return s, cerr.ErrIllegalCommand("fire", s.phase.String())
	}

	board, outcome, err := s.opponentBoard.FireAt(c)
	if err != nil {
		return s, err
	}

	next := s.withoutCursor()
	next.opponentBoard = board
	next.history = s.appendRecord(ShooterPlayer, c, outcome)
	next.turn = s.turn + 1

	if board.IsVictory() {
		next.phase = PhaseFinished
		next.winner = ShooterPlayer
		next.thinking = false
		return next, nil
	}
	next.phase = PhaseOpponentTurn
	next.thinking = true
	return next, nil
}

// NextOpponentShot picks and resolves the opponent's move without touching s.
func (s State) NextOpponentShot(rng opponent.Rand) (OpponentShot, error) {
	if s.phase != PhaseOpponentTurn {
		return OpponentShot{}, cerr.ErrIllegalCommand("opponent shot", s.phase.String())
	}

	c, mem, err := opponent.PickShot(s.difficulty, s.playerBoard, s.memory, rng)
	if err != nil {
		return OpponentShot{}, err
	}
	board, outcome, err := s.playerBoard.FireAt(c)
	if err != nil {
		return OpponentShot{}, err
	}

	return OpponentShot{
		Coordinates: c,
		Board:       board,
		Outcome:     outcome,
		Memory:      opponent.OnShot(mem, c, outcome, board.Size),
	}, nil
}

func (s State) ResolveOpponentShot(shot OpponentShot) (State, error) {
	if s.phase != PhaseOpponentTurn || !s.playerBoard.CanTarget(shot.Coordinates) {
		return s, cerr.ErrIllegalCommand("resolve opponent shot", s.phase.String())
	}

	next := s.withoutCursor()
	next.playerBoard = shot.Board.Clone()
	next.memory = shot.Memory.Clone()
	next.history = s.appendRecord(ShooterOpponent, shot.Coordinates, shot.Outcome)
	next.turn = s.turn + 1
	next.thinking = false

	if next.playerBoard.IsVictory() {
		next.phase = PhaseFinished
		next.winner = ShooterOpponent
		return next, nil
	}
	next.phase = PhasePlayerTurn
	return next, nil
}

// ForfeitOpponentTurn ends the match in the player's favour. It is used when
// the opponent has no shot it can make.
func (s State) ForfeitOpponentTurn() State {
	if s.phase != PhaseOpponentTurn {
		return s
	}

	next := s.withoutCursor()
	next.phase = PhaseFinished
	next.winner = ShooterPlayer
	next.thinking = false
	return next
}

// SetHistoryCursor selects the turn to view. nil returns to the live boards.
func (s State) SetHistoryCursor(turn *int) (State, error) {
	if turn != nil && (*turn < 1 || *turn > len(s.history)) {
		return s, cerr.ErrIllegalCommand("set history cursor", s.phase.String())
	}

	next := s
	next.historyCursor = copyTurn(turn)
	return next, nil
}

// ToggleHistory opens or closes the history panel. Closing it also drops the
// cursor.
func (s State) ToggleHistory() State {
	next := s
	next.historyOpen = !s.historyOpen
	if !next.historyOpen {
		next.historyCursor = nil
	}
	return next
}

func (s State) withoutCursor() State {
	next := s
	next.historyCursor = nil
	return next
}

// appendRecord copies the log so states never share a backing array.
func (s State) appendRecord(shooter Shooter, c mb.Coordinates, outcome mb.ShotOutcome) []TurnRecord {
	history := make([]TurnRecord, len(s.history), len(s.history)+1)
	copy(history, s.history)
	return append(history, TurnRecord{
		Turn:    s.turn,
		Shooter: shooter,
		Target:  c,
		Result:  outcome.Result,
		Kind:    outcome.Kind,
		Sunk:    outcome.Sunk,
		At:      time.Now().UTC(),
	})
}

func copyTurn(turn *int) *int {
	if turn == nil {
		return nil
	}
	t := *turn
	return &t
}
