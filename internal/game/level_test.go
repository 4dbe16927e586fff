package game

import (
	"math"
	"testing"
)

func TestNextSettingsProgression(t *testing.T) {
	cases := []struct {
		completed  int
		difficulty int
		op         Operation
	}{
		{0, 1, Subtract},
		{1, 1, Add},
		{2, 2, Subtract},
		{3, 2, Add},
		{16, 9, Subtract},
		{17, 9, Add},
	}
	for _, tc := range cases {
		got := NextSettings(tc.completed, 5)
		if got.Difficulty != tc.difficulty || got.Operation != tc.op {
			t.Fatalf("completed=%d: expected %d %v, got %d %v", tc.completed, tc.difficulty, tc.op, got.Difficulty, got.Operation)
		}
	}
}

// The progression formula wraps mod 10 and yields difficulty 0 after 18
// levels, below the 1-9 range users can pick. The value is kept, not
// clamped.
func TestNextSettingsDifficultyWrapsToZero(t *testing.T) {
	got := NextSettings(18, 5)
	if got.Difficulty != 0 {
		t.Fatalf("expected wrapped difficulty 0, got %d", got.Difficulty)
	}
	if got.Difficulty >= MinDifficulty {
		t.Fatalf("expected difficulty below user range")
	}
	if got := NextSettings(20, 5); got.Difficulty != 1 {
		t.Fatalf("expected difficulty 1 after wrap, got %d", got.Difficulty)
	}
	// Difficulty 0 leaves the digit unchanged.
	if got := CorrectAnswer(4, 0, Subtract); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestNextSettingsTimeLimitFloor(t *testing.T) {
	if got := NextSettings(1, 5).TimeLimit; math.Abs(got-4.8) > 1e-9 {
		t.Fatalf("expected 4.8, got %v", got)
	}
	if got := NextSettings(3, 5).TimeLimit; math.Abs(got-4.4) > 1e-9 {
		t.Fatalf("expected 4.4, got %v", got)
	}
	if got := NextSettings(30, 5).TimeLimit; got != 2 {
		t.Fatalf("expected floor 2, got %v", got)
	}
	if got := NextSettings(0, 1).TimeLimit; got != 2 {
		t.Fatalf("expected floor 2 for short limit, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	s := Settings{Difficulty: 12, Operation: Operation(7), TimeLimit: 0.2}.Clamp()
	if s.Difficulty != 9 || s.Operation != Subtract || s.TimeLimit != 1 {
		t.Fatalf("unexpected clamp result: %+v", s)
	}
	if got := ClampDifficulty(-3); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := ClampTimeLimit(42); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
	if got := ClampTimeLimit(math.NaN()); got != 5 {
		t.Fatalf("expected default 5, got %v", got)
	}
}

func TestNewLevelUnresolved(t *testing.T) {
	level := NewLevel(&fixedSource{digits: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 0}})
	if level.Current != 0 {
		t.Fatalf("expected current 0, got %d", level.Current)
	}
	for i, ch := range level.Challenges {
		if ch.Resolved() || ch.HasAttempt {
			t.Fatalf("challenge %d should be unresolved", i)
		}
		if !IsDigit(ch.Test) {
			t.Fatalf("challenge %d test out of range: %d", i, ch.Test)
		}
	}
}
