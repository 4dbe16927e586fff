// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/warmup/internal/game"
	"github.com/verte-zerg/warmup/internal/generator"
	"github.com/verte-zerg/warmup/internal/model"
	statsPkg "github.com/verte-zerg/warmup/internal/stats"
	"github.com/verte-zerg/warmup/internal/store"
)

const frameInterval = 100 * time.Millisecond

// timeoutMsg fires when the timer armed at epoch runs out.
type timeoutMsg struct {
	epoch uint64
}

// frameMsg redraws the countdown. Frames from an earlier run are dropped.
type frameMsg struct {
	run int
}

// Model implements the Bubble Tea drill UI. Key presses and timer ticks
// both arrive through Update, which is the only place the engine is
// touched.
type Model struct {
	config model.Config
	engine *game.Engine
	store  *store.Store
	focus  *generator.Focus
	styles styles
	now    func() time.Time

	weakNoticePrinted bool

	width  int
	height int
	bar    progress.Model
	run    int
	errMsg string

	hasLast   bool
	lastScore int
	allLevels int
	allScore  int
	bestScore int
}

// Option configures a Model.
type Option func(*Model)

// WithStore persists completed levels and loads footer stats from st.
func WithStore(st *store.Store) Option {
	return func(m *Model) {
		m.store = st
	}
}

// WithFocus refreshes the weak digits of focus after every level.
func WithFocus(focus *generator.Focus, weakNoticePrinted bool) Option {
	return func(m *Model) {
		m.focus = focus
		m.weakNoticePrinted = weakNoticePrinted
	}
}

// WithRenderer builds styles for a specific output, such as an SSH session.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) {
		m.styles = newStyles(r)
	}
}

// WithClock replaces time.Now for the countdown display.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// NewModel constructs a drill TUI model around engine.
func NewModel(cfg model.Config, engine *game.Engine, opts ...Option) *Model {
	m := &Model{
		config: cfg,
		engine: engine,
		styles: newStyles(lipgloss.DefaultRenderer()),
		now:    time.Now,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = barWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.engine.Running() {
			return m, m.handleRunningKey(msg)
		}
		return m.handleIdleKey(msg)
	case timeoutMsg:
		return m, m.handleOutcome(m.engine.Timeout(msg.epoch))
	case frameMsg:
		if msg.run != m.run || !m.engine.Running() {
			return m, nil
		}
		return m, frameTick(m.run)
	default:
		return m, nil
	}
}

func (m *Model) handleRunningKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", " ", "esc":
		m.stop()
		return nil
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return nil
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return nil
	}
	current := m.engine.Snapshot().Level.Current
	return m.handleOutcome(m.engine.Submit(current, int(r-'0')))
}

func (m *Model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	settings := m.engine.Settings()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", " ":
		return m, m.start()
	case "+", "=", "up", "k":
		m.engine.SetDifficulty(settings.Difficulty + 1)
	case "-", "down", "j":
		m.engine.SetDifficulty(settings.Difficulty - 1)
	case "a":
		m.engine.SetOperation(game.Add)
	case "s":
		m.engine.SetOperation(game.Subtract)
	case "tab":
		if settings.Operation == game.Add {
			m.engine.SetOperation(game.Subtract)
		} else {
			m.engine.SetOperation(game.Add)
		}
	case "]", "right", "l":
		m.engine.SetTimeLimit(settings.TimeLimit + game.TimeLimitStep)
	case "[", "left", "h":
		m.engine.SetTimeLimit(settings.TimeLimit - game.TimeLimitStep)
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	if !m.engine.Start() {
		return nil
	}
	m.errMsg = ""
	m.run++
	return tea.Batch(m.scheduleTimeout(), frameTick(m.run))
}

func (m *Model) stop() {
	if m.engine.Stop() {
		m.run++
	}
}

func (m *Model) handleOutcome(out game.Outcome) tea.Cmd {
	if !out.Applied {
		return nil
	}
	if out.Completed != nil {
		m.recordLevel(*out.Completed)
	}
	return m.scheduleTimeout()
}

func (m *Model) scheduleTimeout() tea.Cmd {
	if !m.engine.Running() {
		return nil
	}
	epoch := m.engine.Epoch()
	return tea.Tick(m.engine.Settings().Duration(), func(time.Time) tea.Msg {
		return timeoutMsg{epoch: epoch}
	})
}

func frameTick(run int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{run: run}
	})
}

func (m *Model) recordLevel(done game.CompletedLevel) {
	m.hasLast = true
	m.lastScore = done.Record.Score
	m.allLevels++
	m.allScore += done.Record.Score
	if done.Record.Score > m.bestScore {
		m.bestScore = done.Record.Score
	}

	if m.store != nil && !m.config.NoSave {
		level, challenges := done.Stats()
		if _, err := m.store.InsertLevel(context.Background(), level, challenges); err != nil {
			m.errMsg = fmt.Sprintf("failed to save level: %v", err)
		}
	}
	if m.focus != nil {
		m.refreshWeakSet(done.Record.Settings.Operation)
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	levels, err := m.store.ListLevels(context.Background(), model.StatsConfig{})
	if err != nil {
		logErrf("failed to load level stats: %v\n", err)
		return
	}
	if len(levels) == 0 {
		return
	}
	m.hasLast = true
	m.lastScore = levels[len(levels)-1].Score
	for _, l := range levels {
		m.allLevels++
		m.allScore += l.Score
		if l.Score > m.bestScore {
			m.bestScore = l.Score
		}
	}
}

func (m *Model) refreshWeakSet(op game.Operation) {
	if m.store == nil {
		return
	}
	aggs, err := m.store.GetWeakDigits(context.Background(), m.config.WeakWindow, op.String())
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load weak digits: %v", err)
		return
	}
	weak := statsPkg.SelectWeakDigits(aggs, m.config.WeakTop)
	if len(weak) == 0 && !m.weakNoticePrinted {
		m.errMsg = "no weak digits yet; drawing uniformly"
		m.weakNoticePrinted = true
	}
	m.focus.SetWeak(weak)
}

func barWidth(width int) int {
	w := width / 2
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
