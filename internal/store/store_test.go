package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
)

func TestInsertGameRollsBackOnCardError(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "karuta.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Errorf("Close: %v", cerr)
		}
	})

	ctx := context.Background()
	now := time.Now()
	rec := model.GameRecord{
		StartedAt:  now.Add(-time.Minute),
		EndedAt:    now,
		Mode:       "kana",
		Rows:       2,
		Cols:       4,
		Cards:      2,
		Score:      2,
		Miss:       0,
		DurationMs: 4000,
	}
	// The duplicate card id violates the game_cards primary key mid-insert.
	cards := []model.CardResult{
		{CardID: 0, Kami: "あきのたの", Shimo: "わがころもでは", DurationMs: 2000, Measured: true},
		{CardID: 0, Kami: "あきのたの", Shimo: "わがころもでは", DurationMs: 2000, Measured: true},
	}

	if _, err := st.InsertGame(ctx, rec, cards); err == nil {
		t.Fatalf("expected insert error for duplicate card id")
	}

	games, err := st.ListGames(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected no games after rollback, got %d", len(games))
	}
}
