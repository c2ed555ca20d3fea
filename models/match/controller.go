package match

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

const DefaultOpponentDelay = 600 * time.Millisecond

// Command is one action dispatched into a Controller.
type Command interface {
	command() string
}

type ResetCommand struct{}

type SetDifficultyCommand struct {
	Difficulty mb.Difficulty
}

// RandomizeFleetCommand draws a fresh seed when Seed is nil.
type RandomizeFleetCommand struct {
	Seed *int64
}

type SetBoardCommand struct {
	Board mb.Board
}

type PlaceShipCommand struct {
	Kind        mb.ShipKind
	Origin      mb.Coordinates
	Orientation mb.Orientation
}

type RemoveShipCommand struct {
	Kind mb.ShipKind
}

// StartCommand deals the opponent fleet from Seed, or from a fresh seed when
// it is nil. The opponent's own rng is always drawn separately.
type StartCommand struct {
	Seed *int64
}

type FireCommand struct {
	Coordinates mb.Coordinates
}

type SetHistoryCursorCommand struct {
	Turn *int
}

type ToggleHistoryCommand struct{}

// OpponentShotCommand applies a precomputed opponent move.
type OpponentShotCommand struct {
	Shot OpponentShot
}

func (ResetCommand) command() string { return "reset" }
func (SetDifficultyCommand) command() string { return "set difficulty" }
func (RandomizeFleetCommand) command() string { return "randomize fleet" }
func (SetBoardCommand) command() string { return "set board" }
func (PlaceShipCommand) command() string { return "place ship" }
func (RemoveShipCommand) command() string { return "remove ship" }
func (StartCommand) command() string { return "start" }
func (FireCommand) command() string { return "fire" }
func (SetHistoryCursorCommand) command() string { return "set history cursor" }
func (ToggleHistoryCommand) command() string { return "toggle history" }
func (OpponentShotCommand) command() string { return "opponent shot" }

// Listener receives the state after every applied or ignored command,
// including the opponent's moves. Calls happen outside the controller lock,
// one at a time and in dispatch order.
type Listener func(id string, s State)

type ControllerOption func(*Controller)

func WithOpponentDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.delay = d
	}
}

func WithListener(l Listener) ControllerOption {
	return func(c *Controller) {
		c.listener = l
	}
}

func WithDifficulty(d mb.Difficulty) ControllerOption {
	return func(c *Controller) {
		c.state = NewState(d)
	}
}

// WithSeedSource replaces the wall clock as the source of fleet and opponent
// seeds.
func WithSeedSource(seed func() int64) ControllerOption {
	return func(c *Controller) {
		c.seed = seed
	}
}

// Controller is the single entry point that mutates a match. Commands are
// serialized behind mu, and the opponent move runs on a timer that re-enters
// through the same path.
type Controller struct {
	id       string
	state    State
	delay    time.Duration
	listener Listener
	seed     func() int64
	rng      *rand.Rand

	// generation is bumped whenever a pending opponent move must be dropped.
	generation uint64
	timer      *time.Timer
	closed     bool

	// pending states wait here for the listener. Only one goroutine drains
	// them at a time.
	pending    []State
	delivering bool

	mu sync.Mutex
}

func NewController(id string, optFuncs ...ControllerOption) *Controller {
	c := &Controller{
		id:    id,
		state: NewState(mb.DefaultDifficulty),
		delay: DefaultOpponentDelay,
		seed:  func() int64 { return time.Now().UnixNano() },
	}
	for _, optFunc := range optFuncs {
		optFunc(c)
	}
	c.rng = rand.New(rand.NewSource(c.seed()))
	return c
}

func (c *Controller) Id() string {
	return c.id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies cmd and returns the resulting state. Commands that are not
// allowed in the current phase leave the state as it is and are not reported
// as errors. Rejected placements and failed randomizations are.
func (c *Controller) Dispatch(cmd Command) (State, error) {
	c.mu.Lock()
	if c.closed {
		s := c.state
		c.mu.Unlock()
		return s, cerr.ErrMatchNotExists(c.id)
	}
	s, err := c.dispatchLocked(cmd)
	c.mu.Unlock()

	c.deliver()
	return s, err
}

// Close drops any pending opponent move. Dispatch fails afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.cancelOpponentLocked()
}

func (c *Controller) dispatchLocked(cmd Command) (State, error) {
	prev := c.state
	next, err := c.reduce(prev, cmd)
	if err != nil {
		if errors.Is(err, cerr.ErrIllegalTransition) {
			log.Debug("ignored command", "match", c.id, "command", cmd.command(), "err", err)
			c.notifyLocked()
			return c.state, nil
		}
		log.Debug("rejected command", "match", c.id, "command", cmd.command(), "err", err)
		return c.state, err
	}

	c.state = next
	c.scheduleLocked(prev, next, cmd)

	if prev.phase != next.phase {
		log.Info("match phase", "match", c.id, "from", prev.phase, "to", next.phase, "turn", next.turn)
	}
	c.notifyLocked()
	return next, nil
}

func (c *Controller) notifyLocked() {
	if c.listener != nil {
		c.pending = append(c.pending, c.state)
	}
}

// deliver hands queued states to the listener. A caller that finds another
// goroutine delivering returns at once; that goroutine picks up its states.
func (c *Controller) deliver() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true

	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		c.mu.Unlock()

		for _, s := range batch {
			c.listener(c.id, s)
		}

		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}

func (c *Controller) reduce(s State, cmd Command) (State, error) {
	switch cmd := cmd.(type) {
	case ResetCommand:
		return s.Reset(), nil
	case SetDifficultyCommand:
		return s.SetDifficulty(cmd.Difficulty)
	case RandomizeFleetCommand:
		return s.RandomizeFleet(c.seedOrDraw(cmd.Seed))
	case SetBoardCommand:
		return s.SetPlayerBoard(cmd.Board)
	case PlaceShipCommand:
		return s.PlaceShip(cmd.Kind, cmd.Origin, cmd.Orientation)
	case RemoveShipCommand:
		return s.RemoveShip(cmd.Kind)
	case StartCommand:
		next, err := s.Start(c.seedOrDraw(cmd.Seed))
		if err == nil {
			c.rng = rand.New(rand.NewSource(c.seed()))
		}
		return next, err
	case FireCommand:
		return s.PlayerFire(cmd.Coordinates)
	case SetHistoryCursorCommand:
		return s.SetHistoryCursor(cmd.Turn)
	case ToggleHistoryCommand:
		return s.ToggleHistory(), nil
	case OpponentShotCommand:
		return s.ResolveOpponentShot(cmd.Shot)
	default:
		return s, cerr.ErrIllegalCommand(fmt.Sprintf("%T", cmd), s.phase.String())
	}
}

// scheduleLocked arms the opponent timer on entering the opponent turn and
// drops a pending move when the match leaves it any other way.
func (c *Controller) scheduleLocked(prev, next State, cmd Command) {
	_, isReset := cmd.(ResetCommand)
	if isReset || next.phase != PhaseOpponentTurn {
		c.cancelOpponentLocked()
		return
	}
	if prev.phase == PhaseOpponentTurn {
		return
	}

	c.generation++
	generation := c.generation
	c.timer = time.AfterFunc(c.delay, func() {
		c.playOpponent(generation)
	})
}

func (c *Controller) cancelOpponentLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) playOpponent(generation uint64) {
	c.mu.Lock()
	c.playOpponentLocked(generation)
	c.mu.Unlock()

	c.deliver()
}

// playOpponentLocked forfeits the match to the player when no shot can be
// made, so the match never stays stuck on the opponent's turn.
func (c *Controller) playOpponentLocked(generation uint64) {
	if c.closed || generation != c.generation || c.state.phase != PhaseOpponentTurn {
		return
	}
	c.timer = nil

	shot, err := c.state.NextOpponentShot(c.rng)
	if err == nil {
		_, err = c.dispatchLocked(OpponentShotCommand{Shot: shot})
	}
	if err == nil {
		return
	}

	log.Error("opponent could not move, forfeiting", "match", c.id, "err", err)
	prev := c.state
	c.state = prev.ForfeitOpponentTurn()
	log.Info("match phase", "match", c.id, "from", prev.phase, "to", c.state.phase, "turn", c.state.turn)
	c.notifyLocked()
}

func (c *Controller) seedOrDraw(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return c.seed()
}
