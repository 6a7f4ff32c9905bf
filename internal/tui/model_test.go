package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/game"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kimariji"
	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
)

func newTestModel(t *testing.T, rows, cols, n int) *Model {
	t.Helper()
	pairs := make([]dataset.Pair, 0, n)
	kamis := make([]string, 0, n)
	for i := 0; i < n; i++ {
		kami := fmt.Sprintf("かみ%d", i)
		pairs = append(pairs, dataset.Pair{ID: i, Kami: kami, Shimo: fmt.Sprintf("しも%d", i)})
		kamis = append(kamis, kami)
	}
	prefixes := make(map[int]kimariji.Record, n)
	for _, rec := range kimariji.ComputeRecords(kamis) {
		prefixes[rec.ID] = rec
	}
	session := game.NewSession(pairs, rows, cols, nil, nil)
	hints := dataset.NewHintTable()
	return NewModel(model.Config{Muted: true}, session, nil, nil, hints, prefixes)
}

func TestAdvanceRevealFollowsTarget(t *testing.T) {
	m := newTestModel(t, 1, 2, 4)
	m.session.SetMuted(true)
	m.session.Start()

	target, ok := m.session.Target()
	if !ok {
		t.Fatalf("expected a target after start")
	}

	m.advanceReveal()
	m.advanceReveal()
	if m.revealID != target.ID {
		t.Fatalf("reveal tracks card %d, want target %d", m.revealID, target.ID)
	}
	if m.revealCount != 2 {
		t.Fatalf("revealCount = %d after two ticks, want 2", m.revealCount)
	}

	runeCount := len([]rune(target.Kami))
	for i := 0; i < runeCount+5; i++ {
		m.advanceReveal()
	}
	if m.revealCount != runeCount {
		t.Fatalf("revealCount = %d, want capped at %d", m.revealCount, runeCount)
	}
}

func TestAdvanceRevealResetsOnTargetChange(t *testing.T) {
	m := newTestModel(t, 1, 2, 4)
	m.session.SetMuted(true)
	m.session.Start()

	m.advanceReveal()
	m.advanceReveal()

	targetID, _ := m.session.TargetID()
	r, c := findCell(t, m.session, targetID)
	m.session.HandleCellClick(r, c)

	m.advanceReveal()
	if got, _ := m.session.TargetID(); m.revealID != got {
		t.Fatalf("reveal tracks card %d after target change, want %d", m.revealID, got)
	}
	if m.revealCount != 1 {
		t.Fatalf("revealCount = %d after target change, want 1", m.revealCount)
	}
}

func TestAdvanceRevealClearsWhenUnmuted(t *testing.T) {
	m := newTestModel(t, 1, 2, 4)
	m.session.SetMuted(true)
	m.session.Start()
	m.advanceReveal()

	m.session.SetMuted(false)
	m.advanceReveal()
	if m.revealID != game.EmptyCell || m.revealCount != 0 {
		t.Fatalf("expected reveal cleared when unmuted, got id=%d count=%d", m.revealID, m.revealCount)
	}
}

func TestHighlightKamiMarksPrefix(t *testing.T) {
	m := newTestModel(t, 1, 2, 4)
	pair, ok := m.session.Pair(0)
	if !ok {
		t.Fatalf("pair 0 missing")
	}
	out := m.highlightKami(pair)
	if !strings.Contains(out, pair.Kami[len(pair.Kami)-1:]) {
		t.Fatalf("highlighted kami lost its tail: %q", out)
	}
	plain := stripANSI(out)
	if plain != pair.Kami {
		t.Fatalf("highlighted kami text = %q, want %q", plain, pair.Kami)
	}
}

func findCell(t *testing.T, s *game.Session, id int) (int, int) {
	t.Helper()
	for r, row := range s.Grid() {
		for c, cell := range row {
			if cell == id {
				return r, c
			}
		}
	}
	t.Fatalf("card %d not on grid", id)
	return 0, 0
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == 0x1b:
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
