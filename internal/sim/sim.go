// Package sim plays headless matches between a scripted player and the
// computer opponent. Every match is reproducible from its seed.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	cerr "github.com/coltonsurfer/battleship/internal/error"
	mb "github.com/coltonsurfer/battleship/models/battleship"
	"github.com/coltonsurfer/battleship/models/match"
	"github.com/coltonsurfer/battleship/models/opponent"
)

var ErrMatchStalled = errors.New("match did not finish")

type Config struct {
	Games   int
	Workers int

	// Opponent is the difficulty of the computer opponent, Player the one the
	// scripted player shoots with.
	Opponent mb.Difficulty
	Player   mb.Difficulty

	Seed int64
}

type Result struct {
	GameID string
	Seed   int64
	State  match.State
}

type Summary struct {
	Games        int
	PlayerWins   int
	OpponentWins int
	Failed       int
	TotalTurns   int
}

func (s Summary) AvgTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.Games)
}

// PlayMatch plays one match to the end. seed decides both fleets and every
// shot.
func PlayMatch(seed int64, opponentDifficulty, playerDifficulty mb.Difficulty) (match.State, error) {
	s := match.NewState(opponentDifficulty)
	if !opponentDifficulty.IsValid() || !playerDifficulty.IsValid() {
		return s, cerr.ErrInvalidGameDifficulty(fmt.Sprintf("opponent %s, player %s", opponentDifficulty, playerDifficulty))
	}

	s, err := s.RandomizeFleet(seed)
	if err != nil {
		return s, err
	}
	if s, err = s.Start(seed + 1); err != nil {
		return s, err
	}

	rng := rand.New(rand.NewSource(seed))
	playerMemory := opponent.NewMemory()
	maxShots := 2 * s.PlayerBoard().Size * s.PlayerBoard().Size

	for shots := 0; shots <= maxShots; shots++ {
		switch s.Phase() {
		case match.PhaseFinished:
			return s, nil

		case match.PhasePlayerTurn:
			target := s.OpponentBoard().Fogged()
			c, mem, err := opponent.PickShot(playerDifficulty, target, playerMemory, rng)
			if err != nil {
				return s, err
			}
			if s, err = s.PlayerFire(c); err != nil {
				return s, err
			}
			history := s.History()
			last := history[len(history)-1]
			playerMemory = opponent.OnShot(mem, c, mb.ShotOutcome{Result: last.Result, Kind: last.Kind, Sunk: last.Sunk}, target.Size)

		case match.PhaseOpponentTurn:
			shot, err := s.NextOpponentShot(rng)
			if err != nil {
				return s, err
			}
			if s, err = s.ResolveOpponentShot(shot); err != nil {
				return s, err
			}

		default:
			return s, fmt.Errorf("%w: phase %s", ErrMatchStalled, s.Phase())
		}
	}

	if s.Phase() == match.PhaseFinished {
		return s, nil
	}
	return s, fmt.Errorf("%w after %d shots", ErrMatchStalled, maxShots)
}

// Run plays cfg.Games matches on cfg.Workers goroutines. onResult is called
// from a single goroutine in completion order. Cancelling ctx stops handing out
// new matches.
func Run(ctx context.Context, cfg Config, onResult func(Result)) (Summary, error) {
	if cfg.Games <= 0 {
		return Summary{}, nil
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if !cfg.Opponent.IsValid() || !cfg.Player.IsValid() {
		return Summary{}, cerr.ErrInvalidGameDifficulty(fmt.Sprintf("opponent %s, player %s", cfg.Opponent, cfg.Player))
	}

	jobs := make(chan int64)
	results := make(chan Result, cfg.Workers)

	var workerWG sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		workerWG.Add(1)
		go func(workerId int) {
			defer workerWG.Done()

			for seed := range jobs {
				s, err := PlayMatch(seed, cfg.Opponent, cfg.Player)
				if err != nil {
					log.Warn("simulated match failed", "worker", workerId, "seed", seed, "err", err)
				}
				results <- Result{GameID: uuid.NewString(), Seed: seed, State: s}
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Games; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- cfg.Seed + int64(i)*1000003:
			}
		}
	}()

	go func() {
		workerWG.Wait()
		close(results)
	}()

	var summary Summary
	for result := range results {
		summary.Games++
		summary.TotalTurns += len(result.State.History())
		switch result.State.Winner() {
		case match.ShooterPlayer:
			summary.PlayerWins++
		case match.ShooterOpponent:
			summary.OpponentWins++
		default:
			summary.Failed++
		}

		if onResult != nil {
			onResult(result)
		}
	}

	return summary, ctx.Err()
}
