package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/warmup/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "warmup.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertLevel(t *testing.T, st *Store, at time.Time, op string, tests []int, correct []bool) int64 {
	t.Helper()
	level := model.LevelStats{
		StartedAt:  at,
		EndedAt:    at.Add(20 * time.Second),
		Difficulty: 1,
		Operation:  op,
		TimeLimit:  5,
		DurationMs: 20000,
	}
	challenges := make([]model.ChallengeStats, 0, len(tests))
	for i, test := range tests {
		ch := model.ChallengeStats{
			Position:      i,
			Test:          test,
			Correct:       correct[i],
			CorrectAnswer: (test + 9) % 10,
			LatencyMs:     1000,
		}
		if correct[i] {
			level.Score++
			attempt := ch.CorrectAnswer
			ch.Attempt = &attempt
		} else {
			ch.TimedOut = true
			ch.LatencyMs = 5000
			level.Timeouts++
		}
		challenges = append(challenges, ch)
	}
	id, err := st.InsertLevel(context.Background(), level, challenges)
	if err != nil {
		t.Fatalf("insert level: %v", err)
	}
	return id
}

func TestInsertAndListLevels(t *testing.T) {
	st := openTestStore(t)
	base := time.Unix(0, 0).UTC()
	first := insertLevel(t, st, base, "subtract", []int{1, 2}, []bool{true, false})
	second := insertLevel(t, st, base.Add(time.Minute), "add", []int{3, 3}, []bool{true, true})

	ctx := context.Background()
	levels, err := st.ListLevels(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(levels))
	}
	if levels[0].LevelID != first || levels[1].LevelID != second {
		t.Fatalf("unexpected order: %+v", levels)
	}
	if levels[0].Score != 1 || levels[0].Timeouts != 1 || levels[0].Operation != "subtract" {
		t.Fatalf("unexpected first level: %+v", levels[0])
	}

	onlyAdd, err := st.ListLevels(ctx, model.StatsConfig{Operation: "add"})
	if err != nil {
		t.Fatalf("list add levels: %v", err)
	}
	if len(onlyAdd) != 1 || onlyAdd[0].LevelID != second {
		t.Fatalf("expected only add level, got %+v", onlyAdd)
	}

	since := base.Add(30 * time.Second)
	recent, err := st.ListLevels(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list recent levels: %v", err)
	}
	if len(recent) != 1 || recent[0].LevelID != second {
		t.Fatalf("expected only recent level, got %+v", recent)
	}
}

func TestListChallengesRoundTrip(t *testing.T) {
	st := openTestStore(t)
	id := insertLevel(t, st, time.Unix(0, 0).UTC(), "subtract", []int{4, 7}, []bool{false, true})

	challenges, err := st.ListChallenges(context.Background(), id)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 2 {
		t.Fatalf("expected 2 challenges, got %d", len(challenges))
	}
	if challenges[0].Attempt != nil || !challenges[0].TimedOut || challenges[0].Correct {
		t.Fatalf("unexpected timed out challenge: %+v", challenges[0])
	}
	if challenges[1].Attempt == nil || *challenges[1].Attempt != 6 || !challenges[1].Correct {
		t.Fatalf("unexpected answered challenge: %+v", challenges[1])
	}
}

func TestDigitAggregates(t *testing.T) {
	st := openTestStore(t)
	base := time.Unix(0, 0).UTC()
	a := insertLevel(t, st, base, "subtract", []int{1, 1, 2}, []bool{true, false, true})
	b := insertLevel(t, st, base.Add(time.Minute), "subtract", []int{1, 2}, []bool{true, false})

	ctx := context.Background()
	aggs, err := st.ListDigitAggregatesForLevels(ctx, []int64{a, b})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 digits, got %d", len(aggs))
	}
	one := aggs[0]
	if one.Digit != 1 || one.Correct != 2 || one.Incorrect != 1 || one.Timeouts != 1 {
		t.Fatalf("unexpected digit 1 aggregate: %+v", one)
	}
	if one.LatencyCount != 2 || one.LatencySumMs != 2000 {
		t.Fatalf("expected timeouts excluded from latency: %+v", one)
	}

	weak, err := st.GetWeakDigits(ctx, 1, "subtract")
	if err != nil {
		t.Fatalf("weak digits: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("expected digits of latest level only, got %+v", weak)
	}
	if weak[1].Digit != 2 || weak[1].Incorrect != 1 || weak[1].Correct != 0 {
		t.Fatalf("unexpected weak aggregate: %+v", weak[1])
	}

	none, err := st.GetWeakDigits(ctx, 5, "add")
	if err != nil {
		t.Fatalf("weak digits for add: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no add stats, got %+v", none)
	}
}
