package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/coltonsurfer/battleship/api"
	"github.com/coltonsurfer/battleship/db"
)

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn("no .env file loaded", "err", err)
		}
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := log.ParseLevel(lvl)
		if err != nil {
			panic(err)
		}
		log.SetLevel(level)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = api.StageDev
	}

	opts := []api.Option{api.WithStage(stage)}

	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			panic(err)
		}
		opts = append(opts, api.WithPort(port))
	}

	if delayEnv := os.Getenv("OPPONENT_DELAY_MS"); delayEnv != "" {
		delayMs, err := strconv.Atoi(delayEnv)
		if err != nil {
			panic(err)
		}
		opts = append(opts, api.WithOpponentDelay(time.Duration(delayMs)*time.Millisecond))
	}

	// Analytics are optional; without a database url the server only plays
	var conn *sql.DB
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		conn = db.MustConnectToDb(psqlUrl, db.DefaultMigrationDir)
		defer conn.Close()
		opts = append(opts, api.WithDb(conn))
	} else {
		log.Warn("DATABASE_URL not set; analytics disabled")
	}

	server := api.NewServer(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", "err", err)
	}
	log.Info("server shut down")
}
