package stats

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
)

const (
	minTrendWidth       = 10
	terminalWidthBackup = 80
)

// RenderTrend prints a time-per-card trend across games as a sparkline,
// smoothed with a moving average. Width 0 sizes to the terminal.
func RenderTrend(w io.Writer, games []model.GameAggregate, window, width int) error {
	values := make([]float64, 0, len(games))
	for _, g := range games {
		_, sec := GameMetrics(g.Score, g.Miss, g.DurationMs)
		if sec > 0 {
			values = append(values, sec)
		}
	}
	if len(values) < 2 {
		return nil
	}
	values = MovingAverage(values, window)

	if width <= 0 {
		width = terminalWidth()
	}
	if width < minTrendWidth {
		width = minTrendWidth
	}
	if len(values) > width {
		values = resample(values, width)
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if _, err := fmt.Fprintln(w, "Time/Card Trend"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, Sparkline(values)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "min %.2fs  max %.2fs\n\n", minVal, maxVal); err != nil {
		return err
	}
	return nil
}

// resample shrinks a series to the given width by bucket averaging.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
