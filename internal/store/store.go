// Package store handles SQLite persistence of completed games.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			rows INTEGER NOT NULL,
			cols INTEGER NOT NULL,
			cards INTEGER NOT NULL,
			score INTEGER NOT NULL,
			miss INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_cards (
			game_id INTEGER NOT NULL,
			card_id INTEGER NOT NULL,
			kami TEXT NOT NULL,
			shimo TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			measured INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			PRIMARY KEY (game_id, card_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_game_cards_kami ON game_cards(kami);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a completed game and its per-card results.
func (s *Store) InsertGame(ctx context.Context, rec model.GameRecord, cards []model.CardResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (started_at, ended_at, mode, rows, cols, cards, score, miss, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Mode,
		rec.Rows,
		rec.Cols,
		rec.Cards,
		rec.Score,
		rec.Miss,
		rec.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(cards) > 0 {
		// Assignments keep the outer err live so the deferred rollback
		// fires on these paths too.
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO game_cards (game_id, card_id, kami, shimo, duration_ms, measured, misses)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, card := range cards {
			measured := 0
			if card.Measured {
				measured = 1
			}
			if _, err = stmt.ExecContext(ctx, id, card.CardID, card.Kami, card.Shimo, card.DurationMs, measured, card.Misses); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListGames returns game aggregates filtered by stats config.
func (s *Store) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, cards, score, miss, duration_ms
		FROM games
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameAggregate
	for rows.Next() {
		var agg model.GameAggregate
		var endedAt string
		if err := rows.Scan(&agg.GameID, &endedAt, &agg.Cards, &agg.Score, &agg.Miss, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		games = append(games, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// GetWeakCards aggregates card results over the most recent games.
func (s *Store) GetWeakCards(ctx context.Context, window int, mode string) ([]model.CardAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_games AS (
		SELECT id FROM games
		WHERE (? = '' OR mode = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT gc.kami, gc.shimo, COUNT(*) AS plays, SUM(gc.misses) AS misses,
		SUM(CASE WHEN gc.measured = 1 THEN gc.duration_ms ELSE 0 END) AS duration_sum_ms,
		SUM(gc.measured) AS duration_count
	FROM game_cards gc
	JOIN recent_games r ON r.id = gc.game_id
	GROUP BY gc.kami, gc.shimo`

	rows, err := s.db.QueryContext(ctx, query, mode, mode, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CardAggregate
	for rows.Next() {
		var agg model.CardAggregate
		if err := rows.Scan(&agg.Kami, &agg.Shimo, &agg.Plays, &agg.Misses, &agg.DurationSumMs, &agg.DurationCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCardAggregatesForGames aggregates per-card results across games.
func (s *Store) ListCardAggregatesForGames(ctx context.Context, gameIDs []int64) ([]model.CardAggregate, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(gameIDs))
	args := make([]any, len(gameIDs))
	for i, id := range gameIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT kami, shimo, COUNT(*) AS plays, SUM(misses) AS misses,
		SUM(CASE WHEN measured = 1 THEN duration_ms ELSE 0 END) AS duration_sum_ms,
		SUM(measured) AS duration_count
		FROM game_cards
		WHERE game_id IN (%s)
		GROUP BY kami, shimo`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CardAggregate
	for rows.Next() {
		var agg model.CardAggregate
		if err := rows.Scan(&agg.Kami, &agg.Shimo, &agg.Plays, &agg.Misses, &agg.DurationSumMs, &agg.DurationCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
