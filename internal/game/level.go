package game

import (
	"math"
	"time"
)

// LevelSize is the number of challenges in a level.
const LevelSize = 10

// Bounds and step for user edited settings.
const (
	MinDifficulty = 1
	MaxDifficulty = 9
	MinTimeLimit  = 1.0
	MaxTimeLimit  = 10.0
	TimeLimitStep = 0.5

	minAutoTimeLimit  = 2.0
	timeLimitDecrease = 0.2
)

// Settings are the parameters of a level.
type Settings struct {
	Difficulty int
	Operation  Operation
	// TimeLimit is the per-challenge limit in seconds.
	TimeLimit float64
}

// DefaultSettings returns the settings of a fresh game.
func DefaultSettings() Settings {
	return Settings{Difficulty: 1, Operation: Subtract, TimeLimit: 5}
}

// Clamp forces user-edited values into their documented ranges.
func (s Settings) Clamp() Settings {
	s.Difficulty = ClampDifficulty(s.Difficulty)
	s.TimeLimit = ClampTimeLimit(s.TimeLimit)
	if s.Operation != Add {
		s.Operation = Subtract
	}
	return s
}

// Duration converts TimeLimit to a time.Duration.
func (s Settings) Duration() time.Duration {
	return time.Duration(s.TimeLimit * float64(time.Second))
}

// ClampDifficulty bounds d to 1-9.
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// ClampTimeLimit bounds seconds to 1-10. NaN falls back to the default.
func ClampTimeLimit(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return DefaultSettings().TimeLimit
	}
	return math.Max(MinTimeLimit, math.Min(MaxTimeLimit, seconds))
}

// NextSettings computes the settings that follow completedLevels finished
// levels. Difficulty wraps mod 10 and reaches 0 at 18 completed levels;
// that value is kept as is. The time limit shrinks from baseTimeLimit, the
// limit the game started with, not from the previous level's limit.
func NextSettings(completedLevels int, baseTimeLimit float64) Settings {
	op := Add
	if completedLevels%2 == 0 {
		op = Subtract
	}
	return Settings{
		Difficulty: normalize(1 + completedLevels/2),
		Operation:  op,
		TimeLimit:  math.Max(baseTimeLimit-float64(completedLevels)*timeLimitDecrease, minAutoTimeLimit),
	}
}

// Result is the resolution state of a challenge.
type Result int

const (
	Unanswered Result = iota
	Right
	Wrong
)

func (r Result) String() string {
	switch r {
	case Right:
		return "right"
	case Wrong:
		return "wrong"
	default:
		return "unanswered"
	}
}

// Challenge is one problem in a level.
type Challenge struct {
	Test       int
	Attempt    int
	HasAttempt bool
	Result     Result
	// CorrectAnswer is set when the challenge is resolved.
	CorrectAnswer int
	// Elapsed is the time the challenge was current before resolving.
	Elapsed time.Duration
}

// Resolved reports whether the challenge has a result.
func (c Challenge) Resolved() bool {
	return c.Result != Unanswered
}

// TimedOut reports whether the challenge expired without an answer.
func (c Challenge) TimedOut() bool {
	return c.Result == Wrong && !c.HasAttempt
}

// Level is a batch of challenges and the index accepting input.
type Level struct {
	Challenges [LevelSize]Challenge
	Current    int
}

// DigitSource supplies the test digits of a level.
type DigitSource interface {
	Digits(count int) []int
}

// NewLevel builds an unresolved level from src.
func NewLevel(src DigitSource) Level {
	var level Level
	digits := src.Digits(LevelSize)
	for i := range level.Challenges {
		if i < len(digits) {
			level.Challenges[i].Test = normalize(digits[i])
		}
	}
	return level
}

// ScoreRecord is the frozen outcome of a completed level.
type ScoreRecord struct {
	Score    int
	Settings Settings
}
