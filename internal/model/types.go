// Package model defines shared data structures.
package model

import "time"

// Config defines drill settings resolved from flags and the config file.
type Config struct {
	Difficulty int
	Operation  string
	TimeLimit  float64
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	NoSave     bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Operation   string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// LevelStats captures a completed level.
type LevelStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Score      int
	Difficulty int
	Operation  string
	TimeLimit  float64
	Timeouts   int
	DurationMs int64
}

// ChallengeStats stores one resolved challenge of a level.
type ChallengeStats struct {
	Position      int
	Test          int
	Attempt       *int
	Correct       bool
	CorrectAnswer int
	LatencyMs     int64
	TimedOut      bool
}

// DigitAggregate aggregates challenge results per test digit.
type DigitAggregate struct {
	Digit        int
	Correct      int
	Incorrect    int
	Timeouts     int
	LatencySumMs int64
	LatencyCount int64
}

// LevelAggregate summarizes a stored level for reporting.
type LevelAggregate struct {
	LevelID    int64
	EndedAt    time.Time
	Score      int
	Difficulty int
	Operation  string
	TimeLimit  float64
	Timeouts   int
	DurationMs int64
}
