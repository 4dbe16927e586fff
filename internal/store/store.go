// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/warmup/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for completed levels.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS levels (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			score INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			operation TEXT NOT NULL,
			time_limit REAL NOT NULL,
			timeouts INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS level_challenges (
			level_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			test INTEGER NOT NULL,
			attempt INTEGER,
			correct INTEGER NOT NULL,
			correct_answer INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			PRIMARY KEY (level_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_levels_ended_at ON levels(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_level_challenges_test ON level_challenges(test);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertLevel stores a completed level and its challenges.
func (s *Store) InsertLevel(ctx context.Context, level model.LevelStats, challenges []model.ChallengeStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO levels (started_at, ended_at, score, difficulty, operation, time_limit, timeouts, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		level.StartedAt.Format(time.RFC3339Nano),
		level.EndedAt.Format(time.RFC3339Nano),
		level.Score,
		level.Difficulty,
		level.Operation,
		level.TimeLimit,
		level.Timeouts,
		level.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(challenges) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO level_challenges (level_id, position, test, attempt, correct, correct_answer, latency_ms, timed_out)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ch := range challenges {
			var attempt sql.NullInt64
			if ch.Attempt != nil {
				attempt = sql.NullInt64{Int64: int64(*ch.Attempt), Valid: true}
			}
			if _, err = stmt.ExecContext(ctx, id, ch.Position, ch.Test, attempt, boolInt(ch.Correct), ch.CorrectAnswer, ch.LatencyMs, boolInt(ch.TimedOut)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakDigits aggregates digit stats over the most recent levels of an
// operation. An empty operation matches all levels.
func (s *Store) GetWeakDigits(ctx context.Context, window int, operation string) ([]model.DigitAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_levels AS (
		SELECT id FROM levels
		WHERE (? = '' OR operation = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT lc.test, SUM(lc.correct), SUM(1 - lc.correct), SUM(lc.timed_out),
		SUM(CASE WHEN lc.timed_out = 0 THEN lc.latency_ms ELSE 0 END),
		SUM(CASE WHEN lc.timed_out = 0 THEN 1 ELSE 0 END)
	FROM level_challenges lc
	JOIN recent_levels r ON r.id = lc.level_id
	GROUP BY lc.test
	ORDER BY lc.test`

	rows, err := s.db.QueryContext(ctx, query, operation, operation, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanDigitAggregates(rows)
}

// ListLevels returns level aggregates filtered by stats config, oldest first.
func (s *Store) ListLevels(ctx context.Context, cfg model.StatsConfig) ([]model.LevelAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Operation != "" {
		clauses = append(clauses, "operation = ?")
		args = append(args, cfg.Operation)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, score, difficulty, operation, time_limit, timeouts, duration_ms
		FROM levels
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var levels []model.LevelAggregate
	for rows.Next() {
		var agg model.LevelAggregate
		var endedAt string
		if err := rows.Scan(&agg.LevelID, &endedAt, &agg.Score, &agg.Difficulty, &agg.Operation, &agg.TimeLimit, &agg.Timeouts, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		levels = append(levels, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}

// ListDigitAggregatesForLevels aggregates per-digit stats across levels.
func (s *Store) ListDigitAggregatesForLevels(ctx context.Context, levelIDs []int64) ([]model.DigitAggregate, error) {
	if len(levelIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(levelIDs))
	args := make([]any, len(levelIDs))
	for i, id := range levelIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT test, SUM(correct), SUM(1 - correct), SUM(timed_out),
		SUM(CASE WHEN timed_out = 0 THEN latency_ms ELSE 0 END),
		SUM(CASE WHEN timed_out = 0 THEN 1 ELSE 0 END)
		FROM level_challenges
		WHERE level_id IN (%s)
		GROUP BY test
		ORDER BY test`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanDigitAggregates(rows)
}

// ListChallenges returns the stored challenges of one level in order.
func (s *Store) ListChallenges(ctx context.Context, levelID int64) ([]model.ChallengeStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, test, attempt, correct, correct_answer, latency_ms, timed_out
		 FROM level_challenges
		 WHERE level_id = ?
		 ORDER BY position`, levelID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ChallengeStats
	for rows.Next() {
		var ch model.ChallengeStats
		var attempt sql.NullInt64
		var correct, timedOut int
		if err := rows.Scan(&ch.Position, &ch.Test, &attempt, &correct, &ch.CorrectAnswer, &ch.LatencyMs, &timedOut); err != nil {
			return nil, err
		}
		if attempt.Valid {
			v := int(attempt.Int64)
			ch.Attempt = &v
		}
		ch.Correct = correct != 0
		ch.TimedOut = timedOut != 0
		result = append(result, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanDigitAggregates(rows *sql.Rows) ([]model.DigitAggregate, error) {
	var result []model.DigitAggregate
	for rows.Next() {
		var agg model.DigitAggregate
		if err := rows.Scan(&agg.Digit, &agg.Correct, &agg.Incorrect, &agg.Timeouts, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
