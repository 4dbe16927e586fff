package game

import "time"

// CompletedLevel describes a level that was just finished.
type CompletedLevel struct {
	Record    ScoreRecord
	Level     Level
	StartedAt time.Time
	EndedAt   time.Time
}

// Outcome reports what a Submit or Timeout did. A zero Outcome means the
// input was ignored.
type Outcome struct {
	Applied   bool
	Index     int
	Correct   bool
	TimedOut  bool
	Completed *CompletedLevel
}

// Snapshot is a read-only copy of the engine state for rendering.
type Snapshot struct {
	Settings Settings
	Level    Level
	Score    int
	History  []ScoreRecord
	Running  bool
	Epoch    uint64
	// Deadline is when the current challenge times out. Zero when idle.
	Deadline time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine owns the state of one game. It is not safe for concurrent use:
// the owner must serialize input and timer events onto one goroutine.
//
// Every time the challenge timer is (re)armed the epoch increases. The
// owner schedules a timeout carrying Epoch() and passes it back to
// Timeout, which ignores stale epochs.
type Engine struct {
	baseline Settings
	settings Settings
	src      DigitSource
	now      func() time.Time

	level   Level
	score   int
	history []ScoreRecord
	running bool

	epoch            uint64
	levelStarted     time.Time
	challengeStarted time.Time
	deadline         time.Time
}

// New returns an idle engine with a fresh level.
func New(settings Settings, src DigitSource, opts ...Option) *Engine {
	e := &Engine{
		baseline: settings.Clamp(),
		src:      src,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.settings = e.baseline
	e.level = NewLevel(e.src)
	e.score = 0
	e.history = nil
	e.running = false
	e.levelStarted = time.Time{}
	e.challengeStarted = time.Time{}
	e.deadline = time.Time{}
}

// Start begins play and arms the timer. It returns false if already running.
func (e *Engine) Start() bool {
	if e.running {
		return false
	}
	now := e.now()
	e.running = true
	e.levelStarted = now
	e.arm(now)
	return true
}

// Stop cancels the timer and discards the game, returning to a fresh idle
// state. It returns false if not running.
func (e *Engine) Stop() bool {
	if !e.running {
		return false
	}
	e.epoch++
	e.reset()
	return true
}

// Submit answers the challenge at index. Submissions while idle, against
// a non-current challenge, or with a non-digit attempt are ignored.
func (e *Engine) Submit(index, attempt int) Outcome {
	if !e.running || index != e.level.Current || !IsDigit(attempt) {
		return Outcome{}
	}
	now := e.now()
	ok, correct := Validate(e.level.Challenges[index].Test, attempt, e.settings.Difficulty, e.settings.Operation)

	ch := &e.level.Challenges[index]
	ch.Attempt = attempt
	ch.HasAttempt = true
	ch.CorrectAnswer = correct
	ch.Elapsed = now.Sub(e.challengeStarted)
	if ok {
		ch.Result = Right
		e.score++
	} else {
		ch.Result = Wrong
	}

	out := Outcome{Applied: true, Index: index, Correct: ok}
	out.Completed = e.advance(now)
	return out
}

// Timeout resolves the current challenge as wrong if epoch still names the
// armed timer.
func (e *Engine) Timeout(epoch uint64) Outcome {
	if !e.running || epoch != e.epoch {
		return Outcome{}
	}
	now := e.now()
	index := e.level.Current

	ch := &e.level.Challenges[index]
	ch.Result = Wrong
	ch.CorrectAnswer = CorrectAnswer(ch.Test, e.settings.Difficulty, e.settings.Operation)
	ch.Elapsed = now.Sub(e.challengeStarted)

	out := Outcome{Applied: true, Index: index, TimedOut: true}
	out.Completed = e.advance(now)
	return out
}

func (e *Engine) advance(now time.Time) *CompletedLevel {
	next := (e.level.Current + 1) % LevelSize
	e.level.Current = next

	var done *CompletedLevel
	if next == 0 {
		record := ScoreRecord{Score: e.score, Settings: e.settings}
		done = &CompletedLevel{
			Record:    record,
			Level:     e.level,
			StartedAt: e.levelStarted,
			EndedAt:   now,
		}
		e.history = append([]ScoreRecord{record}, e.history...)
		e.score = 0
		e.level = NewLevel(e.src)
		e.settings = NextSettings(len(e.history), e.baseline.TimeLimit)
		e.levelStarted = now
	}
	e.arm(now)
	return done
}

func (e *Engine) arm(now time.Time) {
	e.epoch++
	e.challengeStarted = now
	e.deadline = now.Add(e.settings.Duration())
}

// SetDifficulty applies a clamped difficulty while idle.
func (e *Engine) SetDifficulty(d int) bool {
	if e.running {
		return false
	}
	e.settings.Difficulty = ClampDifficulty(d)
	e.baseline = e.settings
	return true
}

// SetOperation applies op while idle.
func (e *Engine) SetOperation(op Operation) bool {
	if e.running {
		return false
	}
	e.settings.Operation = op
	e.settings = e.settings.Clamp()
	e.baseline = e.settings
	return true
}

// SetTimeLimit applies a clamped time limit (seconds) while idle.
func (e *Engine) SetTimeLimit(seconds float64) bool {
	if e.running {
		return false
	}
	e.settings.TimeLimit = ClampTimeLimit(seconds)
	e.baseline = e.settings
	return true
}

// Running reports whether a game is in progress.
func (e *Engine) Running() bool {
	return e.running
}

// Epoch identifies the currently armed timer.
func (e *Engine) Epoch() uint64 {
	return e.epoch
}

// Settings returns the active settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	history := make([]ScoreRecord, len(e.history))
	copy(history, e.history)
	snap := Snapshot{
		Settings: e.settings,
		Level:    e.level,
		Score:    e.score,
		History:  history,
		Running:  e.running,
		Epoch:    e.epoch,
	}
	if e.running {
		snap.Deadline = e.deadline
	}
	return snap
}
