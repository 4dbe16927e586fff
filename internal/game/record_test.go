package game

import (
	"testing"
	"time"
)

func TestCompletedLevelStats(t *testing.T) {
	e, clock := newTestEngine(9)
	e.Start()

	var done *CompletedLevel
	for i := 0; i < LevelSize; i++ {
		clock.Advance(500 * time.Millisecond)
		var out Outcome
		switch {
		case i == 0:
			out = e.Timeout(e.Epoch())
		case i%2 == 1:
			out = e.Submit(i, answerFor(e, i))
		default:
			out = e.Submit(i, (answerFor(e, i)+1)%10)
		}
		if out.Completed != nil {
			done = out.Completed
		}
	}
	if done == nil {
		t.Fatalf("expected completed level")
	}

	level, challenges := done.Stats()
	if level.Score != 5 {
		t.Fatalf("expected score 5, got %d", level.Score)
	}
	if level.Timeouts != 1 {
		t.Fatalf("expected 1 timeout, got %d", level.Timeouts)
	}
	if level.Operation != "subtract" || level.Difficulty != 1 || level.TimeLimit != 5 {
		t.Fatalf("unexpected settings: %+v", level)
	}
	if level.DurationMs != 5000 {
		t.Fatalf("expected 5000ms, got %d", level.DurationMs)
	}
	if len(challenges) != LevelSize {
		t.Fatalf("expected %d challenges, got %d", LevelSize, len(challenges))
	}
	first := challenges[0]
	if !first.TimedOut || first.Attempt != nil || first.Correct || first.CorrectAnswer != 8 {
		t.Fatalf("unexpected timed out row: %+v", first)
	}
	second := challenges[1]
	if second.Attempt == nil || *second.Attempt != 8 || !second.Correct || second.LatencyMs != 500 {
		t.Fatalf("unexpected answered row: %+v", second)
	}
	third := challenges[2]
	if third.Correct || third.TimedOut || third.Attempt == nil {
		t.Fatalf("unexpected wrong row: %+v", third)
	}
}
