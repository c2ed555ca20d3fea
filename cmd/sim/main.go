package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/coltonsurfer/battleship/internal/sim"
	"github.com/coltonsurfer/battleship/internal/store"
	mb "github.com/coltonsurfer/battleship/models/battleship"
)

func main() {
	games := flag.Int("games", 100, "Number of matches to simulate")
	workers := flag.Int("workers", 4, "Number of simulation workers")
	opponentFlag := flag.String("difficulty", "hard", "Opponent difficulty: easy, medium or hard")
	playerFlag := flag.String("player", "medium", "Difficulty the scripted player shoots with")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Base seed; match i uses a seed derived from it")
	outDir := flag.String("out", "", "If set, write the turn logs as a parquet batch into this directory")
	flag.Parse()

	opponentDifficulty, err := mb.ParseDifficulty(*opponentFlag)
	if err != nil {
		log.Fatal("bad -difficulty", "err", err)
	}
	playerDifficulty, err := mb.ParseDifficulty(*playerFlag)
	if err != nil {
		log.Fatal("bad -player", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := sim.Config{
		Games:    *games,
		Workers:  *workers,
		Opponent: opponentDifficulty,
		Player:   playerDifficulty,
		Seed:     *seed,
	}

	var rows []store.TurnRow
	start := time.Now()
	summary, err := sim.Run(ctx, cfg, func(r sim.Result) {
		if *outDir != "" {
			rows = append(rows, store.RowsFromState(r.GameID, r.Seed, r.State)...)
		}
	})
	if err != nil {
		log.Warn("simulation interrupted", "err", err)
	}

	log.Info("simulation done",
		"games", summary.Games,
		"player_wins", summary.PlayerWins,
		"opponent_wins", summary.OpponentWins,
		"failed", summary.Failed,
		"avg_turns", summary.AvgTurns(),
		"took", time.Since(start),
	)

	if *outDir == "" || len(rows) == 0 {
		return
	}
	outPath, err := store.WriteBatchParquetAtomic(*outDir, rows)
	if err != nil {
		log.Fatal("parquet flush failed", "rows", len(rows), "err", err)
	}
	log.Info("parquet flush ok", "path", outPath, "rows", len(rows))
}
