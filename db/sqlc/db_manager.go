package sqlc

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sqlc-dev/pqtype"
)

const (
	QuerierCtxTimeout = time.Second * 10
)

// DbManager groups the managers built on one connection pool. A nil
// *DbManager records nothing, which is how the server runs without a
// database.
type DbManager struct {
	Analytics *AnalyticsManager
}

func NewDbManager(db DBTX) *DbManager {
	return &DbManager{
		Analytics: NewAnalyticsManager(New(db)),
	}
}

// RecordMatchStarted bumps the started counter of serverIp. Failures are
// logged and otherwise ignored so analytics never interrupt a match.
func (dm *DbManager) RecordMatchStarted(serverIp pqtype.Inet) {
	if dm == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()
	if err := dm.Analytics.IncrementGamesStartedCount(ctx, serverIp); err != nil {
		log.Error("failed to record started match", "err", err)
	}
}

func (dm *DbManager) RecordMatchFinished(serverIp pqtype.Inet, playerWon bool) {
	if dm == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()
	if err := dm.Analytics.IncrementGamesFinishedCount(ctx, serverIp, playerWon); err != nil {
		log.Error("failed to record finished match", "err", err)
	}
}
