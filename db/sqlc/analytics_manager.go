package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) IncrementGamesStartedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.IncrementGamesStartedCount(ctx, serverIpNet)
}

// IncrementGamesFinishedCount also credits the win to the player or to the
// opponent.
func (a *AnalyticsManager) IncrementGamesFinishedCount(ctx context.Context, serverIpNet pqtype.Inet, playerWon bool) error {
	return a.queries.IncrementGamesFinishedCount(ctx, IncrementGamesFinishedCountParams{
		ServerIp:  serverIpNet,
		PlayerWon: playerWon,
	})
}

func (a *AnalyticsManager) GetGamesStartedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesStartedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesFinishedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesFinishedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetServerAnalytics(ctx context.Context, serverIpNet pqtype.Inet) (GameServerAnalytic, error) {
	return a.queries.GetServerAnalytics(ctx, serverIpNet)
}
