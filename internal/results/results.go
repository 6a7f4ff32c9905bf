// Package results computes end-of-game analytics from timing and miss logs.
package results

import (
	"math"
	"sort"
	"time"
)

// CardDuration is a card with its reportable duration for the game.
type CardDuration struct {
	CardID   int
	Duration time.Duration
}

// CardMisses is a card with its miss count for the game.
type CardMisses struct {
	CardID int
	Misses int
}

// CardEntry is one row of the all-cards table. Unmeasured cards carry a zero
// duration and Measured=false.
type CardEntry struct {
	CardID   int
	Duration time.Duration
	Measured bool
}

// Summary holds the analytics for one completed game.
type Summary struct {
	// Weakest are the slowest ceil(10%) of the measured cards, slowest first.
	Weakest []CardDuration

	// Missed lists every card missed at least once, most-missed first.
	Missed []CardMisses

	// All covers every active card: measured cards first in descending
	// duration order, then unmeasured cards in their active order.
	All []CardEntry

	// Total is the sum of the latest duration of each measured card. This
	// is deliberately not wall-clock session time.
	Total time.Duration

	// Average is Total divided by the measured card count.
	Average time.Duration

	MeasuredCount int
}

// Build computes the summary for a game. For each card the reportable
// duration is the last entry of its duration log.
func Build(activeIDs []int, times map[int][]time.Duration, misses map[int]int) Summary {
	var measured []CardDuration
	for _, id := range activeIDs {
		log := times[id]
		if len(log) == 0 {
			continue
		}
		measured = append(measured, CardDuration{CardID: id, Duration: log[len(log)-1]})
	}
	sort.SliceStable(measured, func(i, j int) bool {
		return measured[i].Duration > measured[j].Duration
	})

	var total time.Duration
	for _, cd := range measured {
		total += cd.Duration
	}

	summary := Summary{
		Total:         total,
		MeasuredCount: len(measured),
	}
	if len(measured) > 0 {
		summary.Average = total / time.Duration(len(measured))
		k := int(math.Ceil(float64(len(measured)) * 0.10))
		if k < 1 {
			k = 1
		}
		if k > len(measured) {
			k = len(measured)
		}
		summary.Weakest = append([]CardDuration(nil), measured[:k]...)
	}

	for id, count := range misses {
		if count > 0 {
			summary.Missed = append(summary.Missed, CardMisses{CardID: id, Misses: count})
		}
	}
	sort.SliceStable(summary.Missed, func(i, j int) bool {
		if summary.Missed[i].Misses == summary.Missed[j].Misses {
			return summary.Missed[i].CardID < summary.Missed[j].CardID
		}
		return summary.Missed[i].Misses > summary.Missed[j].Misses
	})

	summary.All = make([]CardEntry, 0, len(activeIDs))
	for _, cd := range measured {
		summary.All = append(summary.All, CardEntry{CardID: cd.CardID, Duration: cd.Duration, Measured: true})
	}
	for _, id := range activeIDs {
		if len(times[id]) == 0 {
			summary.All = append(summary.All, CardEntry{CardID: id})
		}
	}

	return summary
}
