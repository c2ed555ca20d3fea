package match

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

func startedState(t *testing.T, d mb.Difficulty) State {
	t.Helper()

	s, err := NewState(d).RandomizeFleet(11)
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.Start(12)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// firstOpenCell returns the first cell of board that can still be fired at.
func firstOpenCell(t *testing.T, board mb.Board) mb.Coordinates {
	t.Helper()

	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			c := mb.NewCoordinates(x, y)
			if board.CanTarget(c) {
				return c
			}
		}
	}
	t.Fatal("no open cell left")
	return mb.Coordinates{}
}

func TestNewState(t *testing.T) {
	s := NewState(mb.DifficultyHard)

	if s.Phase() != PhaseSetup {
		t.Fatalf("expected phase: %s\t got: %s", PhaseSetup, s.Phase())
	}
	if s.Difficulty() != mb.DifficultyHard {
		t.Fatalf("expected difficulty: %s\t got: %s", mb.DifficultyHard, s.Difficulty())
	}
	if len(s.PlacementOrder()) != mb.FleetSize {
		t.Fatalf("expected %d kinds to place, got %v", mb.FleetSize, s.PlacementOrder())
	}
	if s.Turn() != 0 || len(s.History()) != 0 || s.Winner() != ShooterNone {
		t.Fatal("fresh state should have no turns, history or winner")
	}
}

func TestStartRequiresCompleteFleet(t *testing.T) {
	s, err := NewState(mb.DifficultyEasy).PlaceShip(mb.Destroyer, mb.NewCoordinates(0, 0), mb.Horizontal)
	if err != nil {
		t.Fatal(err)
	}

	next, err := s.Start(1)
	if !errors.Is(err, cerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if next.Phase() != PhaseSetup {
		t.Fatalf("expected phase to stay %s, got %s", PhaseSetup, next.Phase())
	}
}

func TestStart(t *testing.T) {
	s := startedState(t, mb.DifficultyEasy)

	if s.Phase() != PhasePlayerTurn {
		t.Fatalf("expected phase: %s\t got: %s", PhasePlayerTurn, s.Phase())
	}
	if s.Turn() != 1 {
		t.Fatalf("expected turn: 1\t got: %d", s.Turn())
	}
	if !s.OpponentBoard().IsFleetComplete() {
		t.Fatal("opponent fleet not dealt")
	}
	if !reflect.DeepEqual(s.OpponentBoard(), s.InitialOpponentBoard()) {
		t.Fatal("initial opponent snapshot differs from the live board")
	}
	if !reflect.DeepEqual(s.PlayerBoard(), s.InitialPlayerBoard()) {
		t.Fatal("initial player snapshot differs from the live board")
	}
	if len(s.PlacementOrder()) != 0 {
		t.Fatalf("expected nothing left to place, got %v", s.PlacementOrder())
	}
}

func TestSetupCommandsRejectedDuringPlay(t *testing.T) {
	s := startedState(t, mb.DifficultyEasy)

	tests := []struct {
		name  string
		apply func(State) (State, error)
	}{
		{"randomize", func(s State) (State, error) { return s.RandomizeFleet(3) }},
		{"set board", func(s State) (State, error) { return s.SetPlayerBoard(mb.NewDefaultBoard()) }},
		{"remove ship", func(s State) (State, error) { return s.RemoveShip(mb.Carrier) }},
		{"start", func(s State) (State, error) { return s.Start(3) }},
		{"resolve opponent shot", func(s State) (State, error) { return s.ResolveOpponentShot(OpponentShot{}) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next, err := test.apply(s)
			if !errors.Is(err, cerr.ErrIllegalTransition) {
				t.Fatalf("expected ErrIllegalTransition, got %v", err)
			}
			if !reflect.DeepEqual(next, s) {
				t.Fatal("state changed on an illegal command")
			}
		})
	}
}

func TestPlayerFire(t *testing.T) {
	s := startedState(t, mb.DifficultyEasy)
	target := mb.NewCoordinates(0, 0)

	next, err := s.PlayerFire(target)
	if err != nil {
		t.Fatal(err)
	}
	if next.Phase() != PhaseOpponentTurn || !next.Thinking() {
		t.Fatalf("expected opponent to be thinking, got phase %s", next.Phase())
	}
	if next.Turn() != 2 {
		t.Fatalf("expected turn: 2\t got: %d", next.Turn())
	}

	history := next.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	if history[0].Turn != 1 || history[0].Shooter != ShooterPlayer || history[0].Target != target {
		t.Fatalf("unexpected record %+v", history[0])
	}
	if !next.OpponentBoard().Cell(target).Targeted() {
		t.Fatal("shot not applied to the opponent board")
	}
	if s.OpponentBoard().Cell(target).Targeted() || len(s.History()) != 0 {
		t.Fatal("input state was modified")
	}

	// the opponent is on turn now, so the player cannot fire again
	again, err := next.PlayerFire(mb.NewCoordinates(1, 0))
	if !errors.Is(err, cerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if again.Turn() != next.Turn() {
		t.Fatal("illegal fire changed the turn")
	}
}

func TestPlayerFireAtTargetedCellIsIgnored(t *testing.T) {
	s := startedState(t, mb.DifficultyEasy)
	s, err := s.PlayerFire(mb.NewCoordinates(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	shot, err := s.NextOpponentShot(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if s, err = s.ResolveOpponentShot(shot); err != nil {
		t.Fatal(err)
	}

	next, err := s.PlayerFire(mb.NewCoordinates(3, 3))
	if !errors.Is(err, cerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if len(next.History()) != 2 {
		t.Fatalf("expected history to stay at 2, got %d", len(next.History()))
	}
}

func TestOpponentShot(t *testing.T) {
	s := startedState(t, mb.DifficultyMedium)
	s, err := s.PlayerFire(mb.NewCoordinates(9, 9))
	if err != nil {
		t.Fatal(err)
	}

	shot, err := s.NextOpponentShot(rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatal(err)
	}
	if s.PlayerBoard().Cell(shot.Coordinates).Targeted() {
		t.Fatal("computing the shot modified the live board")
	}
	if !shot.Board.Cell(shot.Coordinates).Targeted() {
		t.Fatal("shot board misses the resolved shot")
	}

	next, err := s.ResolveOpponentShot(shot)
	if err != nil {
		t.Fatal(err)
	}
	if next.Phase() != PhasePlayerTurn || next.Thinking() {
		t.Fatalf("expected player turn, got %s", next.Phase())
	}
	if next.Turn() != 3 {
		t.Fatalf("expected turn: 3\t got: %d", next.Turn())
	}
	last := next.History()[1]
	if last.Shooter != ShooterOpponent || last.Target != shot.Coordinates || last.Turn != 2 {
		t.Fatalf("unexpected record %+v", last)
	}
	if !next.Memory().HasTargeted(shot.Coordinates) {
		t.Fatal("opponent memory not carried over")
	}

	// a stale payload for an already resolved shot is refused
	if _, err := next.ResolveOpponentShot(shot); !errors.Is(err, cerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestResetKeepsDifficulty(t *testing.T) {
	s := startedState(t, mb.DifficultyHard)
	s, err := s.PlayerFire(mb.NewCoordinates(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	next := s.Reset()
	if next.Phase() != PhaseSetup {
		t.Fatalf("expected phase: %s\t got: %s", PhaseSetup, next.Phase())
	}
	if next.Difficulty() != mb.DifficultyHard {
		t.Fatalf("expected difficulty: %s\t got: %s", mb.DifficultyHard, next.Difficulty())
	}
	if len(next.History()) != 0 || next.Turn() != 0 || next.Memory().TargetedCount() != 0 {
		t.Fatal("reset kept match progress")
	}
	if len(next.PlayerBoard().Ships) != 0 {
		t.Fatal("reset kept the player fleet")
	}
}

func TestSetDifficulty(t *testing.T) {
	setup, err := NewState(mb.DifficultyEasy).RandomizeFleet(5)
	if err != nil {
		t.Fatal(err)
	}
	next, err := setup.SetDifficulty(mb.DifficultyHard)
	if err != nil {
		t.Fatal(err)
	}
	if next.Difficulty() != mb.DifficultyHard || len(next.PlayerBoard().Ships) != 0 {
		t.Fatal("difficulty change during setup should start over")
	}

	playing := startedState(t, mb.DifficultyEasy)
	next, err = playing.SetDifficulty(mb.DifficultyMedium)
	if err != nil {
		t.Fatal(err)
	}
	if next.Difficulty() != mb.DifficultyMedium {
		t.Fatalf("expected difficulty: %s\t got: %s", mb.DifficultyMedium, next.Difficulty())
	}
	if next.Phase() != PhasePlayerTurn || !reflect.DeepEqual(next.PlayerBoard(), playing.PlayerBoard()) {
		t.Fatal("difficulty change rewound the match")
	}

	if _, err := playing.SetDifficulty(mb.Difficulty(9)); err == nil {
		t.Fatal("expected invalid difficulty to fail")
	}
}

func TestHistoryCursor(t *testing.T) {
	s := startedState(t, mb.DifficultyEasy)
	s, err := s.PlayerFire(mb.NewCoordinates(0, 0))
	if err != nil {
		t.Fatal(err)
	}

	turn := 1
	viewing, err := s.SetHistoryCursor(&turn)
	if err != nil {
		t.Fatal(err)
	}
	if viewing.HistoryCursor() == nil || *viewing.HistoryCursor() != 1 {
		t.Fatalf("expected cursor at 1, got %v", viewing.HistoryCursor())
	}

	outOfRange := 5
	if _, err := s.SetHistoryCursor(&outOfRange); !errors.Is(err, cerr.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	// live play takes precedence over a paused view
	shot, err := viewing.NextOpponentShot(rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	live, err := viewing.ResolveOpponentShot(shot)
	if err != nil {
		t.Fatal(err)
	}
	if live.HistoryCursor() != nil {
		t.Fatal("expected cursor to be cleared by play")
	}

	opened := live.ToggleHistory()
	if !opened.HistoryOpen() {
		t.Fatal("expected history to be open")
	}
	opened, err = opened.SetHistoryCursor(&turn)
	if err != nil {
		t.Fatal(err)
	}
	closed := opened.ToggleHistory()
	if closed.HistoryOpen() || closed.HistoryCursor() != nil {
		t.Fatal("closing history should drop the cursor")
	}
}

func TestFullMatchAndHistoryProjection(t *testing.T) {
	for _, d := range []mb.Difficulty{mb.DifficultyEasy, mb.DifficultyMedium, mb.DifficultyHard} {
		t.Run(d.String(), func(t *testing.T) {
			s := startedState(t, d)
			rng := rand.New(rand.NewSource(8))

			type boards struct{ player, opponent mb.Board }
			live := map[int]boards{}

			for s.Phase() != PhaseFinished {
				var err error
				switch s.Phase() {
				case PhasePlayerTurn:
					s, err = s.PlayerFire(firstOpenCell(t, s.OpponentBoard()))
				case PhaseOpponentTurn:
					var shot OpponentShot
					if shot, err = s.NextOpponentShot(rng); err == nil {
						s, err = s.ResolveOpponentShot(shot)
					}
				default:
					t.Fatalf("unexpected phase %s", s.Phase())
				}
				if err != nil {
					t.Fatal(err)
				}
				live[s.Turn()-1] = boards{s.PlayerBoard(), s.OpponentBoard()}

				if s.Turn() > 2*mb.DefaultGridSize*mb.DefaultGridSize+1 {
					t.Fatal("match did not finish")
				}
			}

			if s.Winner() == ShooterNone {
				t.Fatal("finished without a winner")
			}
			if len(s.History()) != s.Turn()-1 {
				t.Fatalf("expected %d records, got %d", s.Turn()-1, len(s.History()))
			}

			for turn, want := range live {
				turn := turn
				player, opponent := HistoryAtTurn(s, &turn)
				if !reflect.DeepEqual(player, want.player) {
					t.Fatalf("player board differs at turn %d", turn)
				}
				if !reflect.DeepEqual(opponent, want.opponent) {
					t.Fatalf("opponent board differs at turn %d", turn)
				}
			}

			snapshots := Replay(s)
			if len(snapshots) != len(s.History())+1 {
				t.Fatalf("expected %d snapshots, got %d", len(s.History())+1, len(snapshots))
			}
			lastSnap := snapshots[len(snapshots)-1]
			if !reflect.DeepEqual(lastSnap.PlayerBoard, s.PlayerBoard()) || !reflect.DeepEqual(lastSnap.OpponentBoard, s.OpponentBoard()) {
				t.Fatal("last snapshot differs from the live boards")
			}
			if snapshots[0].Record != nil || snapshots[0].Turn != 0 {
				t.Fatal("first snapshot should be the initial position")
			}
		})
	}
}

func TestHistoryAtTurnReturnsLiveBoards(t *testing.T) {
	setup, err := NewState(mb.DifficultyEasy).RandomizeFleet(1)
	if err != nil {
		t.Fatal(err)
	}
	turn := 1

	tests := []struct {
		name string
		s    State
		turn *int
	}{
		{"setup", setup, &turn},
		{"no shots fired", startedState(t, mb.DifficultyEasy), &turn},
		{"no cursor", startedState(t, mb.DifficultyEasy), nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			player, opponent := HistoryAtTurn(test.s, test.turn)
			if !reflect.DeepEqual(player, test.s.PlayerBoard()) || !reflect.DeepEqual(opponent, test.s.OpponentBoard()) {
				t.Fatal("expected the live boards")
			}
		})
	}

	if len(Replay(setup)) != 0 {
		t.Fatal("expected no snapshots during setup")
	}
}
