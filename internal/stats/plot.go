package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	chartHeight         = LevelSize
	chartAxisWidth      = 5 // "10 │ "
	minChartWidth       = 10
	terminalWidthBackup = 80
)

// ChartWidthFor computes how many columns fit after the axis.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	width := totalWidth - chartAxisWidth
	if width < minChartWidth {
		width = minChartWidth
	}
	return width
}

// TerminalWidth returns the width of stdout or a fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderScoreChart draws one column per level (most recent on the right)
// with the smoothed score as bar height. A totalWidth of 0 uses the
// terminal width.
func RenderScoreChart(w io.Writer, values []float64, totalWidth int) error {
	if len(values) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}
	width := ChartWidthFor(totalWidth)
	if len(values) > width {
		values = values[len(values)-width:]
	}

	if _, err := fmt.Fprintln(w, "Score"); err != nil {
		return err
	}
	for row := chartHeight; row >= 1; row-- {
		var b strings.Builder
		label := "  "
		if row == chartHeight || row == chartHeight/2 {
			label = fmt.Sprintf("%2d", row)
		}
		b.WriteString(label)
		b.WriteString(" │ ")
		for _, v := range values {
			b.WriteRune(barCell(v, row))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, " 0 └%s\n", strings.Repeat("─", len(values)+1)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "     %s\n\n", Sparkline(values))
	return err
}

func barCell(v float64, row int) rune {
	level := math.Round(v*2) / 2
	switch {
	case level >= float64(row):
		return '█'
	case level >= float64(row)-0.5:
		return '▄'
	default:
		return ' '
	}
}
