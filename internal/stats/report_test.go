package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/warmup/internal/model"
	"github.com/verte-zerg/warmup/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "warmup.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		level := model.LevelStats{
			StartedAt:  start,
			EndedAt:    end,
			Score:      7 + i,
			Difficulty: 1,
			Operation:  "subtract",
			TimeLimit:  5,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		challenges := []model.ChallengeStats{
			{Position: 0, Test: 3, Correct: true, CorrectAnswer: 2, LatencyMs: 900},
			{Position: 1, Test: 5, Correct: false, CorrectAnswer: 4, LatencyMs: 5000, TimedOut: true},
		}
		id, err := st.InsertLevel(ctx, level, challenges)
		if err != nil {
			t.Fatalf("insert level: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Operation:   "subtract",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(report.Levels))
	}
	if report.Levels[0].LevelID != ids[1] || report.Levels[1].LevelID != ids[2] {
		t.Fatalf("unexpected level ids: %+v", report.Levels)
	}
	if len(report.WindowLevelIDs) != 1 || report.WindowLevelIDs[0] != ids[2] {
		t.Fatalf("expected window of latest level, got %v", report.WindowLevelIDs)
	}
	if len(report.DigitAggsAll) != 2 {
		t.Fatalf("expected 2 digit aggregates, got %d", len(report.DigitAggsAll))
	}
	if report.DigitAggsAll[0].Correct != 2 {
		t.Fatalf("expected digit 3 correct twice across 2 levels, got %+v", report.DigitAggsAll[0])
	}
	if report.DigitAggsWindow[1].Timeouts != 1 {
		t.Fatalf("expected one timeout in window, got %+v", report.DigitAggsWindow[1])
	}
}
