package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/coltonsurfer/battleship/db/sqlc"
	mc "github.com/coltonsurfer/battleship/models/connection"
	"github.com/coltonsurfer/battleship/models/match"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

var (
	defaultPort string = "8000"
)

type Server struct {
	port           string
	stage          string
	opponentDelay  time.Duration
	db             *sql.DB
	SessionManager *mc.BattleshipSessionManager
	MatchManager   *match.Manager
	DbManager      *sqlc.DbManager
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		stage:         StageDev,
		opponentDelay: match.DefaultOpponentDelay,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}
	if server.port == "" {
		server.port = defaultPort
	}

	server.SessionManager = mc.NewBattleshipSessionManager()
	server.MatchManager = match.NewManager(match.WithOpponentDelay(server.opponentDelay))
	if server.db != nil {
		server.DbManager = sqlc.NewDbManager(server.db)
	}

	return &server
}

func WithPort(port string) Option {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.db = db
		return nil
	}
}

func WithOpponentDelay(d time.Duration) Option {
	return func(s *Server) error {
		if d < 0 {
			return fmt.Errorf("opponent delay cannot be negative: %s", d)
		}
		s.opponentDelay = d
		return nil
	}
}

func (s *Server) Addr() string {
	return "0.0.0.0:" + s.port
}

func (s *Server) Handler() http.Handler {
	rp := NewRequestProcessor(s.SessionManager, s.MatchManager, s.DbManager)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	return mux
}

// Run serves until ctx is done, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	go s.SessionManager.CleanupPeriodically(ctx)

	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", httpServer.Addr, "stage", s.stage)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
