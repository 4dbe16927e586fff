package stats

import (
	"context"

	"github.com/verte-zerg/warmup/internal/model"
	"github.com/verte-zerg/warmup/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Levels          []model.LevelAggregate
	WindowLevelIDs  []int64
	DigitAggsAll    []model.DigitAggregate
	DigitAggsWindow []model.DigitAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	levels, err := st.ListLevels(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(levels) > cfg.Last {
		levels = levels[len(levels)-cfg.Last:]
	}

	allIDs := levelIDs(levels)
	windowIDs := lastLevelIDs(levels, cfg.CurveWindow)
	aggsAll, err := st.ListDigitAggregatesForLevels(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	aggsWindow, err := st.ListDigitAggregatesForLevels(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Levels:          levels,
		WindowLevelIDs:  windowIDs,
		DigitAggsAll:    aggsAll,
		DigitAggsWindow: aggsWindow,
	}, nil
}

func levelIDs(levels []model.LevelAggregate) []int64 {
	ids := make([]int64, len(levels))
	for i, l := range levels {
		ids[i] = l.LevelID
	}
	return ids
}

func lastLevelIDs(levels []model.LevelAggregate, window int) []int64 {
	if window <= 0 || len(levels) <= window {
		return levelIDs(levels)
	}
	return levelIDs(levels[len(levels)-window:])
}
