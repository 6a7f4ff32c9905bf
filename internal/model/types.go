// Package model defines shared data structures.
package model

import "time"

// Config defines game settings.
type Config struct {
	Mode    string
	Dataset string
	Samples int
	Rows    int
	Cols    int
	Muted   bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode   string
	Since  *time.Time
	Last   int
	Window int
}

// GameRecord captures a completed game.
type GameRecord struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	Rows       int
	Cols       int
	Cards      int
	Score      int
	Miss       int
	DurationMs int64
}

// CardResult stores per-card results for one game.
type CardResult struct {
	CardID     int
	Kami       string
	Shimo      string
	DurationMs int64
	Measured   bool
	Misses     int
}

// Aggregated per-card stats for selection or reporting.

// CardAggregate aggregates card results across games.
type CardAggregate struct {
	Kami          string
	Shimo         string
	Plays         int
	Misses        int
	DurationSumMs int64
	DurationCount int64
}

// GameAggregate summarizes a game for reporting.
type GameAggregate struct {
	GameID     int64
	EndedAt    time.Time
	Cards      int
	Score      int
	Miss       int
	DurationMs int64
}
