package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/warmup/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("expected min/max glyphs, got %q", got)
	}
}

func TestLevelMetrics(t *testing.T) {
	acc, perMinute := LevelMetrics(8, 2, 30000)
	if acc != 0.8 {
		t.Fatalf("expected accuracy 0.8, got %v", acc)
	}
	if perMinute != 16 {
		t.Fatalf("expected 16 answers per minute, got %v", perMinute)
	}
	if _, perMinute := LevelMetrics(8, 0, 0); perMinute != 0 {
		t.Fatalf("expected zero rate without duration")
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]model.LevelAggregate{
		{Score: 10, DurationMs: 20000},
		{Score: 6, Timeouts: 3, DurationMs: 30000},
	})
	if sum.Levels != 2 || sum.BestScore != 10 || sum.Perfect != 1 || sum.Timeouts != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.AvgScore != 8 {
		t.Fatalf("expected avg score 8, got %v", sum.AvgScore)
	}
	if math.Abs(sum.AvgAccuracy-0.8) > 1e-9 {
		t.Fatalf("expected avg accuracy 0.8, got %v", sum.AvgAccuracy)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No levels found.") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
}

func TestRenderDigitTableWeakestFirst(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDigitTable(&buf, []model.DigitAggregate{
		{Digit: 1, Correct: 9, Incorrect: 1},
		{Digit: 8, Correct: 2, Incorrect: 8, Timeouts: 4},
	})
	if err != nil {
		t.Fatalf("render digit table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected table output, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[2], "8 ") {
		t.Fatalf("expected weakest digit first, got %q", lines[2])
	}
	if !strings.Contains(lines[2], "20.00%") {
		t.Fatalf("expected accuracy column, got %q", lines[2])
	}
}

func TestRenderScoreChart(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, []float64{10, 5, 0}, 40); err != nil {
		t.Fatalf("render chart: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	// title + 10 rows + axis + sparkline
	if len(lines) < 13 {
		t.Fatalf("expected at least 13 lines, got %d", len(lines))
	}
	if lines[1] != "10 │ █" {
		t.Fatalf("unexpected top row %q", lines[1])
	}
	if lines[6] != " 5 │ ██" {
		t.Fatalf("unexpected middle row %q", lines[6])
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
	if got := ChartWidthFor(0); got != minChartWidth {
		t.Fatalf("expected min width, got %d", got)
	}
}

func TestSelectWeakDigits(t *testing.T) {
	aggs := []model.DigitAggregate{
		{Digit: 2, Correct: 3, Incorrect: 1},
		{Digit: 5, Correct: 1, Incorrect: 3},
		{Digit: 7, Correct: 4, Incorrect: 0},
		{Digit: 9, Correct: 1, Incorrect: 3},
	}
	weak := SelectWeakDigits(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak digits, got %v", weak)
	}
	for _, d := range []int{5, 9} {
		if _, ok := weak[d]; !ok {
			t.Fatalf("expected %d to be weak, got %v", d, weak)
		}
	}
	all := SelectWeakDigits(aggs, 0)
	if _, ok := all[7]; ok {
		t.Fatalf("digit without mistakes must not be weak")
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 weak digits, got %v", all)
	}
}
