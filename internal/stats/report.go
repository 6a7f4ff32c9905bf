// Package stats contains cross-game statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Games          []model.GameAggregate
	WindowGameIDs  []int64
	CardAggsAll    []model.CardAggregate
	CardAggsWindow []model.CardAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	games, err := st.ListGames(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(games) > cfg.Last {
		games = games[len(games)-cfg.Last:]
	}

	allIDs := gameIDs(games)
	windowIDs := lastGameIDs(games, cfg.Window)
	cardAggsAll, err := st.ListCardAggregatesForGames(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	cardAggsWindow, err := st.ListCardAggregatesForGames(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Games:          games,
		WindowGameIDs:  windowIDs,
		CardAggsAll:    cardAggsAll,
		CardAggsWindow: cardAggsWindow,
	}, nil
}

func gameIDs(games []model.GameAggregate) []int64 {
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.GameID
	}
	return ids
}

func lastGameIDs(games []model.GameAggregate, window int) []int64 {
	if window <= 0 || len(games) <= window {
		return gameIDs(games)
	}
	return gameIDs(games[len(games)-window:])
}
