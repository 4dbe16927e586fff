package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/warmup/internal/game"
)

const historyLimit = 8

type styles struct {
	title     lipgloss.Style
	test      lipgloss.Style
	pending   lipgloss.Style
	current   lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	muted     lipgloss.Style
	score     lipgloss.Style
	err       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Bold(true),
		test:      r.NewStyle().Bold(true),
		pending:   r.NewStyle().Foreground(lipgloss.Color("8")),
		current:   r.NewStyle().Foreground(lipgloss.Color("11")).Underline(true),
		correct:   r.NewStyle().Foreground(lipgloss.Color("10")),
		incorrect: r.NewStyle().Foreground(lipgloss.Color("9")),
		muted:     r.NewStyle().Foreground(lipgloss.Color("8")),
		score:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		err:       r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.engine.Snapshot()

	var b strings.Builder
	b.WriteString(m.styles.title.Render("warmup"))
	b.WriteString("  ")
	b.WriteString(m.renderSettings(snap.Settings, snap.Running))
	b.WriteString("\n\n")
	b.WriteString(m.renderChallenges(snap.Level, snap.Running))
	b.WriteString("\n\n")
	b.WriteString(m.renderCountdown(snap))
	b.WriteString("\n")
	b.WriteString(m.styles.score.Render(fmt.Sprintf("Score %d/%d", snap.Score, game.LevelSize)))
	b.WriteString("\n")
	if history := m.renderHistory(snap.History); history != "" {
		b.WriteString("\n")
		b.WriteString(history)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(helpLine(snap.Running)))
	if footer := m.renderFooter(); footer != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render(footer))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.err.Render(m.errMsg))
	}
	return b.String()
}

func (m *Model) renderSettings(s game.Settings, running bool) string {
	text := fmt.Sprintf("%s %d · %.1fs", s.Operation, s.Difficulty, s.TimeLimit)
	if running {
		return m.styles.muted.Render(text)
	}
	return text
}

// renderChallenges draws the test digits above the answer row.
func (m *Model) renderChallenges(level game.Level, running bool) string {
	tests := make([]string, 0, game.LevelSize)
	answers := make([]string, 0, game.LevelSize)
	for i, ch := range level.Challenges {
		tests = append(tests, m.styles.test.Render(fmt.Sprintf("%d", ch.Test)))
		answers = append(answers, m.renderAnswer(ch, running && i == level.Current))
	}
	return strings.Join(tests, "  ") + "\n" + strings.Join(answers, "  ")
}

func (m *Model) renderAnswer(ch game.Challenge, current bool) string {
	switch {
	case ch.Result == game.Right:
		return m.styles.correct.Render(fmt.Sprintf("%d", ch.Attempt))
	case ch.TimedOut():
		return m.styles.incorrect.Render("-")
	case ch.Result == game.Wrong:
		return m.styles.incorrect.Render("X")
	case current:
		return m.styles.current.Render("_")
	default:
		return m.styles.pending.Render("·")
	}
}

func (m *Model) renderCountdown(snap game.Snapshot) string {
	if !snap.Running {
		return m.bar.ViewAs(0)
	}
	total := snap.Settings.Duration()
	remaining := snap.Deadline.Sub(m.now())
	return m.bar.ViewAs(remainingFraction(remaining, total)) + " " +
		fmt.Sprintf("%.1fs", clampDuration(remaining, total).Seconds())
}

func remainingFraction(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(clampDuration(remaining, total)) / float64(total)
}

func clampDuration(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}

// renderHistory lists finished levels of this session, most recent first.
func (m *Model) renderHistory(history []game.ScoreRecord) string {
	if len(history) == 0 {
		return ""
	}
	limit := len(history)
	if limit > historyLimit {
		limit = historyLimit
	}
	lines := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		rec := history[i]
		lines = append(lines, fmt.Sprintf("%2d/%d  %s %d · %.1fs",
			rec.Score, game.LevelSize, rec.Settings.Operation, rec.Settings.Difficulty, rec.Settings.TimeLimit))
	}
	if len(history) > limit {
		lines = append(lines, m.styles.muted.Render(fmt.Sprintf("… %d more", len(history)-limit)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if !m.hasLast {
		return ""
	}
	avg := float64(m.allScore) / float64(m.allLevels)
	return fmt.Sprintf("Last %d/%d  Levels %d  Avg %.1f  Best %d",
		m.lastScore, game.LevelSize, m.allLevels, avg, m.bestScore)
}

func helpLine(running bool) string {
	if running {
		return "0-9 answer · enter/esc stop · ctrl+c quit"
	}
	return "enter start · +/- difficulty · a/s/tab operation · [/] time · q quit"
}
