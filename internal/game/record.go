package game

import "github.com/verte-zerg/warmup/internal/model"

// Stats converts a completed level into rows for persistence.
func (c CompletedLevel) Stats() (model.LevelStats, []model.ChallengeStats) {
	level := model.LevelStats{
		StartedAt:  c.StartedAt,
		EndedAt:    c.EndedAt,
		Score:      c.Record.Score,
		Difficulty: c.Record.Settings.Difficulty,
		Operation:  c.Record.Settings.Operation.String(),
		TimeLimit:  c.Record.Settings.TimeLimit,
		DurationMs: c.EndedAt.Sub(c.StartedAt).Milliseconds(),
	}
	challenges := make([]model.ChallengeStats, 0, LevelSize)
	for i, ch := range c.Level.Challenges {
		row := model.ChallengeStats{
			Position:      i,
			Test:          ch.Test,
			Correct:       ch.Result == Right,
			CorrectAnswer: ch.CorrectAnswer,
			LatencyMs:     ch.Elapsed.Milliseconds(),
			TimedOut:      ch.TimedOut(),
		}
		if ch.HasAttempt {
			attempt := ch.Attempt
			row.Attempt = &attempt
		}
		if row.TimedOut {
			level.Timeouts++
		}
		challenges = append(challenges, row)
	}
	return level, challenges
}
