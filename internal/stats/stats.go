// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/warmup/internal/model"
)

const sparkChars = " .:-=+*#%@"

// LevelSize is the number of challenges behind each stored score.
const LevelSize = 10

// LevelMetrics computes accuracy and answers per minute for a level.
func LevelMetrics(score, timeouts int, durationMs int64) (accuracy, perMinute float64) {
	accuracy = float64(score) / LevelSize
	if durationMs <= 0 {
		return accuracy, 0
	}
	minutes := float64(durationMs) / 60000.0
	answered := LevelSize - timeouts
	if answered < 0 {
		answered = 0
	}
	return accuracy, float64(answered) / minutes
}

// DigitAccuracy returns the share of correct answers for a digit.
func DigitAccuracy(agg model.DigitAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// AverageLatency returns the mean answer latency in milliseconds.
func AverageLatency(agg model.DigitAggregate) float64 {
	if agg.LatencyCount == 0 {
		return 0
	}
	return float64(agg.LatencySumMs) / float64(agg.LatencyCount)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Summary holds headline figures over a set of levels.
type Summary struct {
	Levels      int
	AvgScore    float64
	BestScore   int
	Perfect     int
	AvgAccuracy float64
	Timeouts    int
}

// Summarize computes headline figures for levels.
func Summarize(levels []model.LevelAggregate) Summary {
	var sum Summary
	if len(levels) == 0 {
		return sum
	}
	var totalScore, totalAcc float64
	for _, l := range levels {
		acc, _ := LevelMetrics(l.Score, l.Timeouts, l.DurationMs)
		totalScore += float64(l.Score)
		totalAcc += acc
		if l.Score > sum.BestScore {
			sum.BestScore = l.Score
		}
		if l.Score == LevelSize {
			sum.Perfect++
		}
		sum.Timeouts += l.Timeouts
	}
	count := float64(len(levels))
	sum.Levels = len(levels)
	sum.AvgScore = totalScore / count
	sum.AvgAccuracy = totalAcc / count
	return sum
}

// RenderSummary prints a summary block for levels.
func RenderSummary(w io.Writer, levels []model.LevelAggregate) error {
	if len(levels) == 0 {
		_, err := fmt.Fprintln(w, "No levels found.")
		return err
	}
	sum := Summarize(levels)
	lines := []string{
		"Summary",
		fmt.Sprintf("Levels: %d", sum.Levels),
		fmt.Sprintf("Avg score: %.2f", sum.AvgScore),
		fmt.Sprintf("Best score: %d", sum.BestScore),
		fmt.Sprintf("Perfect levels: %d", sum.Perfect),
		fmt.Sprintf("Avg accuracy: %.2f%%", sum.AvgAccuracy*100),
		fmt.Sprintf("Timeouts: %d", sum.Timeouts),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ScoreSeries returns level scores smoothed over window.
func ScoreSeries(levels []model.LevelAggregate, window int) []float64 {
	scores := make([]float64, len(levels))
	for i, l := range levels {
		scores[i] = float64(l.Score)
	}
	return MovingAverage(scores, window)
}

// RenderDigitTable prints per-digit aggregates, weakest first.
func RenderDigitTable(w io.Writer, aggs []model.DigitAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No digit stats found.")
		return err
	}
	sorted := SortByAccuracy(aggs)
	if _, err := fmt.Fprintln(w, "Per-Digit (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Digit", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect", "Timeouts"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Digit),
			fmt.Sprintf("%.2f%%", DigitAccuracy(agg)*100),
			fmt.Sprintf("%.1f", AverageLatency(agg)),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", agg.Timeouts),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SortByAccuracy orders aggregates by lowest accuracy, then digit.
func SortByAccuracy(aggs []model.DigitAggregate) []model.DigitAggregate {
	out := append([]model.DigitAggregate(nil), aggs...)
	sort.Slice(out, func(i, j int) bool {
		ai := DigitAccuracy(out[i])
		aj := DigitAccuracy(out[j])
		if ai == aj {
			return out[i].Digit < out[j].Digit
		}
		return ai < aj
	})
	return out
}
