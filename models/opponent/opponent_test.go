package opponent

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

// firstRand always picks the first candidate.
type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

func TestMediumPrefersQueue(t *testing.T) {
	board := mb.NewDefaultBoard()
	mem := NewMemory()
	mem.Queue = []mb.Coordinates{mb.NewCoordinates(4, 4)}

	c, next, err := PickMediumShot(board, mem, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if c != mb.NewCoordinates(4, 4) {
		t.Fatalf("expected: (4,4)\t got: %v", c)
	}
	if len(next.Queue) != 0 {
		t.Fatalf("expected empty queue, got %v", next.Queue)
	}
	if !next.HasTargeted(c) {
		t.Fatal("picked coordinates not remembered")
	}
	if len(mem.Queue) != 1 || mem.TargetedCount() != 0 {
		t.Fatal("input memory was modified")
	}
}

func TestMediumSkipsStaleQueueEntries(t *testing.T) {
	board := mb.NewDefaultBoard()
	mem := NewMemory()
	mem.markTargeted(mb.NewCoordinates(2, 2))
	mem.Queue = []mb.Coordinates{mb.NewCoordinates(2, 2), mb.NewCoordinates(-1, 0), mb.NewCoordinates(2, 3)}

	c, _, err := PickMediumShot(board, mem, firstRand{})
	if err != nil {
		t.Fatal(err)
	}
	if c != mb.NewCoordinates(2, 3) {
		t.Fatalf("expected: (2,3)\t got: %v", c)
	}
}

func TestMediumHuntsOnParity(t *testing.T) {
	board := mb.NewDefaultBoard()
	mem := NewMemory()
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 50; i++ {
		c, next, err := PickMediumShot(board, mem, rng)
		if err != nil {
			t.Fatal(err)
		}
		if (c.X+c.Y)%2 != 0 {
			t.Fatalf("shot %d off parity: %v", i, c)
		}
		mem = next
	}

	// parity cells are exhausted, the rest of the board is still open
	c, _, err := PickMediumShot(board, mem, rng)
	if err != nil {
		t.Fatal(err)
	}
	if (c.X+c.Y)%2 != 1 {
		t.Fatalf("expected an odd cell after parity ran out, got %v", c)
	}
}

func TestHardPicksOnlyViableNeighbour(t *testing.T) {
	board, err := mb.NewDefaultBoard().PlaceShip(mb.MustShipDef(mb.Destroyer), mb.NewCoordinates(4, 4), mb.Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []mb.Coordinates{{X: 4, Y: 4}, {X: 4, Y: 3}, {X: 4, Y: 5}, {X: 3, Y: 4}} {
		if board, _, err = board.FireAt(c); err != nil {
			t.Fatal(err)
		}
	}

	c, next, err := PickHardShot(board, NewMemory(), firstRand{})
	if err != nil {
		t.Fatal(err)
	}
	if c != mb.NewCoordinates(5, 4) {
		t.Fatalf("expected: (5,4)\t got: %v", c)
	}
	if next.Heatmap == nil {
		t.Fatal("expected heatmap to be stored")
	}
	if next.Heatmap[4][5] == 0 {
		t.Fatal("expected heat on the picked cell")
	}
}

func TestHardFallsBackToMedium(t *testing.T) {
	// nothing placed, so nothing remains to search for
	board := mb.NewDefaultBoard()
	mem := NewMemory()
	mem.Queue = []mb.Coordinates{mb.NewCoordinates(7, 1)}

	c, next, err := PickHardShot(board, mem, firstRand{})
	if err != nil {
		t.Fatal(err)
	}
	if c != mb.NewCoordinates(7, 1) {
		t.Fatalf("expected medium fallback to use the queue, got %v", c)
	}
	if next.Heatmap != nil {
		t.Fatal("fallback should not keep a heatmap")
	}
}

func TestHardPrefersCenterOnOpenBoard(t *testing.T) {
	board, err := mb.RandomizeFleet(3)
	if err != nil {
		t.Fatal(err)
	}

	c, _, err := PickHardShot(board, NewMemory(), firstRand{})
	if err != nil {
		t.Fatal(err)
	}
	if centerDistance(c, board.Size) > 4 {
		t.Fatalf("expected an opening shot near the center, got %v", c)
	}
}

func TestPickShotUnknownDifficultyPlaysEasy(t *testing.T) {
	board := mb.NewDefaultBoard()
	mem := NewMemory()
	mem.Queue = []mb.Coordinates{mb.NewCoordinates(4, 4)}

	c, _, err := PickShot(mb.Difficulty(42), board, mem, firstRand{})
	if err != nil {
		t.Fatal(err)
	}
	if c != mb.NewCoordinates(0, 0) {
		t.Fatalf("expected easy pick (0,0), got %v", c)
	}

	c, _, _ = PickShot(mb.DifficultyMedium, board, mem, firstRand{})
	if c != mb.NewCoordinates(4, 4) {
		t.Fatalf("expected medium pick (4,4), got %v", c)
	}
}

func TestNoRepeatsUntilBoardExhausted(t *testing.T) {
	difficulties := []mb.Difficulty{mb.DifficultyEasy, mb.DifficultyMedium, mb.DifficultyHard}

	for _, d := range difficulties {
		t.Run(d.String(), func(t *testing.T) {
			board, err := mb.RandomizeFleet(2024)
			if err != nil {
				t.Fatal(err)
			}
			rng := rand.New(rand.NewSource(7))
			mem := NewMemory()
			seen := make(map[mb.Coordinates]bool)

			for shot := 0; !board.IsVictory(); shot++ {
				if shot >= board.Size*board.Size {
					t.Fatal("fleet not sunk after firing at every cell")
				}

				c, next, err := PickShot(d, board, mem, rng)
				if err != nil {
					t.Fatalf("shot %d: %v", shot, err)
				}
				if seen[c] {
					t.Fatalf("shot %d repeats %v", shot, c)
				}
				seen[c] = true

				var outcome mb.ShotOutcome
				board, outcome, err = board.FireAt(c)
				if err != nil {
					t.Fatalf("shot %d at %v: %v", shot, c, err)
				}
				mem = OnShot(next, c, outcome, board.Size)
			}
		})
	}
}

func TestUntargetedCellsSkipsResolvedAndRemembered(t *testing.T) {
	board := buildBoard(t, 3,
		[]shipAt{{mb.Destroyer, mb.NewCoordinates(0, 0), mb.Horizontal}},
		[]mb.Coordinates{{X: 0, Y: 0}, {X: 2, Y: 2}},
	)
	mem := NewMemory()
	mem.markTargeted(mb.NewCoordinates(1, 1))

	expected := []mb.Coordinates{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}}
	if got := untargetedCells(board, mem); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected: %v\t got: %v", expected, got)
	}
}

func TestEasyExhaustsBoard(t *testing.T) {
	board := mb.NewBoard(3)
	mem := NewMemory()
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 9; i++ {
		var err error
		_, mem, err = PickEasyShot(board, mem, rng)
		if err != nil {
			t.Fatalf("shot %d: %v", i, err)
		}
	}
	if _, _, err := PickEasyShot(board, mem, rng); !errors.Is(err, cerr.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestOnHit(t *testing.T) {
	tests := []struct {
		name          string
		mem           func() Memory
		hit           mb.Coordinates
		sunk          bool
		expectedQueue []mb.Coordinates
		expectedHits  []mb.Coordinates
	}{
		{
			name:          "first hit enqueues neighbours",
			mem:           NewMemory,
			hit:           mb.NewCoordinates(4, 4),
			expectedQueue: []mb.Coordinates{{X: 5, Y: 4}, {X: 3, Y: 4}, {X: 4, Y: 5}, {X: 4, Y: 3}},
			expectedHits:  []mb.Coordinates{{X: 4, Y: 4}},
		},
		{
			name:          "corner hit stays in bounds",
			mem:           NewMemory,
			hit:           mb.NewCoordinates(0, 0),
			expectedQueue: []mb.Coordinates{{X: 1, Y: 0}, {X: 0, Y: 1}},
			expectedHits:  []mb.Coordinates{{X: 0, Y: 0}},
		},
		{
			name: "second hit on a row sorts by column distance",
			mem: func() Memory {
				m := NewMemory()
				for _, c := range []mb.Coordinates{{X: 4, Y: 4}, {X: 5, Y: 4}} {
					m.markTargeted(c)
				}
				m.LastHits = []mb.Coordinates{{X: 4, Y: 4}}
				m.Queue = []mb.Coordinates{{X: 3, Y: 4}, {X: 4, Y: 5}, {X: 4, Y: 3}}
				return m
			},
			hit:           mb.NewCoordinates(5, 4),
			expectedQueue: []mb.Coordinates{{X: 5, Y: 5}, {X: 5, Y: 3}, {X: 4, Y: 5}, {X: 4, Y: 3}, {X: 6, Y: 4}, {X: 3, Y: 4}},
			expectedHits:  []mb.Coordinates{{X: 4, Y: 4}, {X: 5, Y: 4}},
		},
		{
			name: "sinking clears the pursuit",
			mem: func() Memory {
				m := NewMemory()
				m.LastHits = []mb.Coordinates{{X: 1, Y: 1}}
				m.Queue = []mb.Coordinates{{X: 1, Y: 2}}
				return m
			},
			hit:           mb.NewCoordinates(2, 1),
			sunk:          true,
			expectedQueue: []mb.Coordinates{},
			expectedHits:  []mb.Coordinates{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := OnHit(test.mem(), test.hit, test.sunk, mb.DefaultGridSize)
			if !reflect.DeepEqual(got.Queue, test.expectedQueue) {
				t.Fatalf("expected queue: %v\t got: %v", test.expectedQueue, got.Queue)
			}
			if !reflect.DeepEqual(got.LastHits, test.expectedHits) {
				t.Fatalf("expected hits: %v\t got: %v", test.expectedHits, got.LastHits)
			}
		})
	}
}

type shipAt struct {
	kind        mb.ShipKind
	origin      mb.Coordinates
	orientation mb.Orientation
}

func buildBoard(t *testing.T, size int, ships []shipAt, shots []mb.Coordinates) mb.Board {
	t.Helper()

	board := mb.NewBoard(size)
	for _, s := range ships {
		var err error
		if board, err = board.PlaceShip(mb.MustShipDef(s.kind), s.origin, s.orientation); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range shots {
		var err error
		if board, _, err = board.FireAt(c); err != nil {
			t.Fatal(err)
		}
	}
	return board
}

// scoringBoard has a battleship with two hits and a miss past its tail, a
// cruiser hit at both ends and a sunk destroyer next to a submarine hit.
func scoringBoard(t *testing.T) mb.Board {
	return buildBoard(t, mb.DefaultGridSize,
		[]shipAt{
			{mb.Battleship, mb.NewCoordinates(2, 5), mb.Horizontal},
			{mb.Cruiser, mb.NewCoordinates(8, 0), mb.Vertical},
			{mb.Destroyer, mb.NewCoordinates(6, 8), mb.Vertical},
			{mb.Submarine, mb.NewCoordinates(7, 9), mb.Horizontal},
		},
		[]mb.Coordinates{{X: 2, Y: 5}, {X: 3, Y: 5}, {X: 6, Y: 5}, {X: 8, Y: 0}, {X: 8, Y: 2}, {X: 6, Y: 8}, {X: 6, Y: 9}, {X: 7, Y: 9}},
	)
}

func TestInlineHits(t *testing.T) {
	board := scoringBoard(t)

	tests := []struct {
		name     string
		c        mb.Coordinates
		expected int
	}{
		{name: "two hits in a row", c: mb.NewCoordinates(4, 5), expected: 2},
		{name: "two hits from the other side", c: mb.NewCoordinates(1, 5), expected: 2},
		{name: "hit two cells away", c: mb.NewCoordinates(0, 5), expected: 1},
		{name: "miss stops the count", c: mb.NewCoordinates(7, 5), expected: 0},
		{name: "sunk cell stops the count", c: mb.NewCoordinates(5, 9), expected: 0},
		{name: "hit before a sunk cell", c: mb.NewCoordinates(8, 9), expected: 1},
		{name: "reach passes over an untouched ship cell", c: mb.NewCoordinates(5, 5), expected: 1},
		{name: "hit three cells away is out of reach", c: mb.NewCoordinates(8, 5), expected: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := inlineHits(board, test.c); got != test.expected {
				t.Fatalf("expected: %d\t got: %d", test.expected, got)
			}
		})
	}
}

func TestAdjacentHits(t *testing.T) {
	board := scoringBoard(t)

	tests := []struct {
		name     string
		c        mb.Coordinates
		expected int
	}{
		{name: "one hit", c: mb.NewCoordinates(4, 5), expected: 1},
		{name: "hits on both sides", c: mb.NewCoordinates(8, 1), expected: 2},
		{name: "top edge", c: mb.NewCoordinates(7, 0), expected: 1},
		{name: "sunk cells are not hits", c: mb.NewCoordinates(5, 8), expected: 0},
		{name: "diagonal hits do not count", c: mb.NewCoordinates(4, 4), expected: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := adjacentHits(board, test.c); got != test.expected {
				t.Fatalf("expected: %d\t got: %d", test.expected, got)
			}
		})
	}
}

func TestHeatCandidateOrder(t *testing.T) {
	base := heatCandidate{score: 90, adjacentHits: 1, aligned: true, centerDist: 4}

	tests := []struct {
		name     string
		other    heatCandidate
		expected bool
	}{
		{name: "higher score wins", other: heatCandidate{score: 91}, expected: true},
		{name: "lower score loses despite adjacency", other: heatCandidate{score: 89, adjacentHits: 2, aligned: true}, expected: false},
		{name: "more adjacent hits break a score tie", other: heatCandidate{score: 90, adjacentHits: 2, centerDist: 8}, expected: true},
		{name: "fewer adjacent hits lose a score tie", other: heatCandidate{score: 90, aligned: true}, expected: false},
		{name: "alignment breaks an adjacency tie", other: heatCandidate{score: 90, adjacentHits: 1, aligned: false, centerDist: 0}, expected: false},
		{name: "closer to the center breaks the last tie", other: heatCandidate{score: 90, adjacentHits: 1, aligned: true, centerDist: 2}, expected: true},
		{name: "a full tie keeps the earlier candidate", other: base, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.other.better(base); got != test.expected {
				t.Fatalf("expected: %t\t got: %t", test.expected, got)
			}
		})
	}

	unaligned := heatCandidate{score: 90, adjacentHits: 1, centerDist: 0}
	if !base.better(unaligned) {
		t.Fatal("expected the aligned candidate to win")
	}
}

func TestHardScoring(t *testing.T) {
	tests := []struct {
		name     string
		board    mb.Board
		expected mb.Coordinates
		heat     map[mb.Coordinates]int
	}{
		{
			// heat 2 on each neighbour, +50 adjacent, +30 inline, center 9 or 8
			name: "single hit",
			board: buildBoard(t, mb.DefaultGridSize,
				[]shipAt{{mb.Destroyer, mb.NewCoordinates(4, 4), mb.Horizontal}},
				[]mb.Coordinates{{X: 4, Y: 4}},
			),
			expected: mb.NewCoordinates(5, 4),
			heat: map[mb.Coordinates]int{
				{X: 5, Y: 4}: 91,
				{X: 4, Y: 5}: 91,
				{X: 3, Y: 4}: 90,
				{X: 4, Y: 3}: 90,
				{X: 4, Y: 4}: 0,
				{X: 6, Y: 4}: 0,
			},
		},
		{
			// every cell has heat 4; +5 parity lifts the corners over the
			// edges even though the edges sit closer to the center
			name: "parity decides",
			board: buildBoard(t, 3,
				[]shipAt{{mb.Destroyer, mb.NewCoordinates(0, 0), mb.Horizontal}},
				[]mb.Coordinates{{X: 1, Y: 1}},
			),
			expected: mb.NewCoordinates(0, 0),
			heat: map[mb.Coordinates]int{
				{X: 0, Y: 0}: 17,
				{X: 2, Y: 0}: 17,
				{X: 0, Y: 2}: 17,
				{X: 2, Y: 2}: 17,
				{X: 1, Y: 0}: 13,
				{X: 0, Y: 1}: 13,
				{X: 2, Y: 1}: 13,
				{X: 1, Y: 2}: 13,
				{X: 1, Y: 1}: 0,
			},
		},
		{
			// center 23 beats corners 17 and edges 15
			name: "open three by three",
			board: buildBoard(t, 3,
				[]shipAt{{mb.Destroyer, mb.NewCoordinates(0, 0), mb.Horizontal}},
				nil,
			),
			expected: mb.NewCoordinates(1, 1),
			heat: map[mb.Coordinates]int{
				{X: 1, Y: 1}: 23,
				{X: 0, Y: 0}: 17,
				{X: 1, Y: 0}: 15,
				{X: 0, Y: 1}: 15,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, next, err := PickHardShot(test.board, NewMemory(), firstRand{})
			if err != nil {
				t.Fatal(err)
			}
			if c != test.expected {
				t.Fatalf("expected: %v\t got: %v", test.expected, c)
			}
			for cell, expected := range test.heat {
				if got := next.Heatmap[cell.Y][cell.X]; got != expected {
					t.Fatalf("expected heat at %v: %d\t got: %d", cell, expected, got)
				}
			}
		})
	}
}
