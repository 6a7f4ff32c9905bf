// Package stats contains cross-game statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
)

const sparkChars = " .:-=+*#%@"

// GameMetrics computes accuracy and seconds per card for a game.
func GameMetrics(score, miss int, durationMs int64) (accuracy, secPerCard float64) {
	den := float64(score + miss)
	if den > 0 {
		accuracy = float64(score) / den
	}
	if score > 0 && durationMs > 0 {
		secPerCard = float64(durationMs) / 1000.0 / float64(score)
	}
	return accuracy, secPerCard
}

// AverageDurationMs returns the mean measured take time for a card aggregate.
func AverageDurationMs(agg model.CardAggregate) float64 {
	if agg.DurationCount == 0 {
		return 0
	}
	return float64(agg.DurationSumMs) / float64(agg.DurationCount)
}

// SelectWeakCards picks the slowest cards from aggregates, ties broken by
// miss count and then verse text. Cards never measured sort last.
func SelectWeakCards(aggs []model.CardAggregate, top int) []model.CardAggregate {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.CardAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		di := AverageDurationMs(candidates[i])
		dj := AverageDurationMs(candidates[j])
		if di == dj {
			if candidates[i].Misses == candidates[j].Misses {
				return candidates[i].Kami < candidates[j].Kami
			}
			return candidates[i].Misses > candidates[j].Misses
		}
		return di > dj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
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
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
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

// RenderSummary prints a summary table for games.
func RenderSummary(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	var totalAcc, totalSec float64
	var totalMiss int
	bestSec := math.MaxFloat64
	measured := 0
	for _, g := range games {
		acc, sec := GameMetrics(g.Score, g.Miss, g.DurationMs)
		totalAcc += acc
		totalMiss += g.Miss
		if sec > 0 {
			totalSec += sec
			measured++
			if sec < bestSec {
				bestSec = sec
			}
		}
	}
	count := float64(len(games))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Games: %d\n", len(games)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.2f%%\n", (totalAcc/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total Misses: %d\n", totalMiss); err != nil {
		return err
	}
	if measured > 0 {
		if _, err := fmt.Fprintf(w, "Avg Time/Card: %.2fs\n", totalSec/float64(measured)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Best Time/Card: %.2fs\n", bestSec); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCardTable prints per-card aggregates, slowest first.
func RenderCardTable(w io.Writer, aggs []model.CardAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No card stats found.")
		return err
	}
	sorted := SelectWeakCards(aggs, 0)

	if _, err := fmt.Fprintln(w, "Per-Card (Windowed)"); err != nil {
		return err
	}

	headers := []string{"上の句", "下の句", "Avg Time (s)", "Misses", "Plays"}
	tableRows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		avg := "-"
		if agg.DurationCount > 0 {
			avg = fmt.Sprintf("%.2f", AverageDurationMs(agg)/1000.0)
		}
		tableRows = append(tableRows, []string{
			agg.Kami,
			agg.Shimo,
			avg,
			fmt.Sprintf("%d", agg.Misses),
			fmt.Sprintf("%d", agg.Plays),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	lines := formatTable(headers, tableRows, rightAlign)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
