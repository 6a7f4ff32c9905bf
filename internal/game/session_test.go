package game

import (
	"math/rand"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestSession(t *testing.T, cards, rows, cols int) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := NewSession(makePairs(cards), rows, cols, rand.New(rand.NewSource(1)), clock.now)
	return s, clock
}

// targetPos finds the grid position of the current target.
func targetPos(t *testing.T, s *Session) (int, int) {
	t.Helper()
	target, ok := s.TargetID()
	if !ok {
		t.Fatalf("no target set")
	}
	for r, row := range s.Grid() {
		for c, id := range row {
			if id == target {
				return r, c
			}
		}
	}
	t.Fatalf("target %d not on grid", target)
	return 0, 0
}

// missPos finds an occupied cell that is not the target.
func missPos(t *testing.T, s *Session) (int, int) {
	t.Helper()
	target, _ := s.TargetID()
	for r, row := range s.Grid() {
		for c, id := range row {
			if id != EmptyCell && id != target {
				return r, c
			}
		}
	}
	t.Fatalf("no non-target card on grid")
	return 0, 0
}

func checkConservation(t *testing.T, s *Session) {
	t.Helper()
	total := s.DeckLen() + s.Remaining() + s.Score()
	if total != len(s.ActiveIDs()) {
		t.Fatalf("conservation violated: deck=%d grid=%d score=%d active=%d",
			s.DeckLen(), s.Remaining(), s.Score(), len(s.ActiveIDs()))
	}
}

func TestMatchScoresAndRefills(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()
	target, _ := s.TargetID()
	deckBefore := s.DeckLen()
	r, c := targetPos(t, s)

	clock.advance(3 * time.Second)
	s.HandleCellClick(r, c)

	if s.Score() != 1 {
		t.Fatalf("expected score 1, got %d", s.Score())
	}
	if s.DeckLen() != deckBefore-1 {
		t.Fatalf("expected deck to shrink by 1: before=%d after=%d", deckBefore, s.DeckLen())
	}
	if s.Grid().Contains(target) {
		t.Fatalf("taken card must leave the grid")
	}
	times := s.CardTimes()[target]
	if len(times) != 1 || times[0] != 3*time.Second {
		t.Fatalf("unexpected duration log: %v", times)
	}
	checkConservation(t, s)
}

func TestMatchWithEmptyDeckLeavesCellEmpty(t *testing.T) {
	// 4 cards on a 2x4 board: the deck is empty from the start.
	s, _ := newTestSession(t, 4, 2, 4)
	s.Start()
	r, c := targetPos(t, s)
	s.HandleCellClick(r, c)
	if s.Grid()[r][c] != EmptyCell {
		t.Fatalf("cell must stay empty when the deck is exhausted")
	}
	if s.DeckLen() != 0 {
		t.Fatalf("deck must stay empty")
	}
	checkConservation(t, s)
}

func TestConsecutiveMisses(t *testing.T) {
	s, _ := newTestSession(t, 10, 2, 4)
	s.Start()
	target, _ := s.TargetID()
	r, c := missPos(t, s)

	s.HandleCellClick(r, c)
	s.HandleCellClick(r, c)

	if s.Miss() != 2 {
		t.Fatalf("expected 2 misses, got %d", s.Miss())
	}
	if s.CardMisses()[target] != 2 {
		t.Fatalf("expected 2 misses on target, got %d", s.CardMisses()[target])
	}
	if s.Score() != 0 {
		t.Fatalf("misses must not score")
	}
}

func TestClickEmptyCellIsIgnored(t *testing.T) {
	s, _ := newTestSession(t, 4, 2, 4)
	s.Start()
	var er, ec = -1, -1
	for r, row := range s.Grid() {
		for c, id := range row {
			if id == EmptyCell {
				er, ec = r, c
			}
		}
	}
	if er < 0 {
		t.Fatalf("expected an empty cell on a short board")
	}
	score, miss, deck := s.Score(), s.Miss(), s.DeckLen()
	s.HandleCellClick(er, ec)
	s.HandleCellClick(99, 99)
	if s.Score() != score || s.Miss() != miss || s.DeckLen() != deck {
		t.Fatalf("invalid clicks must not change state")
	}
}

func TestTargetAlwaysOnGrid(t *testing.T) {
	s, _ := newTestSession(t, 12, 2, 3)
	s.Start()
	for i := 0; i < 12; i++ {
		target, ok := s.TargetID()
		if !ok {
			break
		}
		if !s.Grid().Contains(target) {
			t.Fatalf("target %d not on grid", target)
		}
		r, c := targetPos(t, s)
		s.HandleCellClick(r, c)
		checkConservation(t, s)
	}
	if !s.Finished() {
		t.Fatalf("expected game to finish after taking all cards")
	}
	if s.Score() != 12 {
		t.Fatalf("expected all 12 cards taken, got %d", s.Score())
	}
}

func TestClickAfterGameOverIsIgnored(t *testing.T) {
	s, _ := newTestSession(t, 2, 1, 2)
	s.Start()
	for i := 0; i < 2; i++ {
		r, c := targetPos(t, s)
		s.HandleCellClick(r, c)
	}
	if !s.Finished() {
		t.Fatalf("expected finished game")
	}
	score := s.Score()
	s.HandleCellClick(0, 0)
	if s.Score() != score || s.Miss() != 0 {
		t.Fatalf("clicks after game over must be ignored")
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	s, _ := newTestSession(t, 10, 2, 4)
	s.Start()
	r, c := targetPos(t, s)
	s.HandleCellClick(r, c)
	mr, mc := missPos(t, s)
	s.HandleCellClick(mr, mc)

	s.Reset(nil, 0, 0)

	if s.Score() != 0 || s.Miss() != 0 {
		t.Fatalf("expected counters reset")
	}
	if s.TimingStarted() {
		t.Fatalf("expected timing cleared")
	}
	if len(s.CardTimes()) != 0 || len(s.CardMisses()) != 0 {
		t.Fatalf("expected timing logs cleared")
	}
	if _, ok := s.TargetID(); !ok {
		t.Fatalf("expected an initial target after reset")
	}
	checkConservation(t, s)
}

func TestResetWithSubset(t *testing.T) {
	s, _ := newTestSession(t, 10, 2, 4)
	subset := makePairs(6)
	s.Reset(subset, 2, 3)
	if len(s.ActiveIDs()) != 6 {
		t.Fatalf("expected 6 active cards, got %d", len(s.ActiveIDs()))
	}
	if s.Rows() != 2 || s.Cols() != 3 {
		t.Fatalf("expected 2x3 board, got %dx%d", s.Rows(), s.Cols())
	}
	if s.Remaining() != 6 || s.DeckLen() != 0 {
		t.Fatalf("expected all cards dealt: grid=%d deck=%d", s.Remaining(), s.DeckLen())
	}
}

func TestTargetTimingResetsBetweenMatches(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()

	clock.advance(2 * time.Second)
	first, _ := s.TargetID()
	r, c := targetPos(t, s)
	s.HandleCellClick(r, c)

	clock.advance(5 * time.Second)
	second, _ := s.TargetID()
	r, c = targetPos(t, s)
	s.HandleCellClick(r, c)

	if got := s.CardTimes()[first][0]; got != 2*time.Second {
		t.Fatalf("first duration: got %v", got)
	}
	if got := s.CardTimes()[second][0]; got != 5*time.Second {
		t.Fatalf("second duration: got %v", got)
	}
}

func TestScoreAndMissMonotonic(t *testing.T) {
	s, _ := newTestSession(t, 10, 2, 4)
	s.Start()
	prevScore, prevMiss := 0, 0
	for i := 0; i < 8; i++ {
		var r, c int
		if i%2 == 0 {
			r, c = targetPos(t, s)
		} else {
			r, c = missPos(t, s)
		}
		s.HandleCellClick(r, c)
		if s.Score() < prevScore || s.Miss() < prevMiss {
			t.Fatalf("counters must be non-decreasing")
		}
		prevScore, prevMiss = s.Score(), s.Miss()
	}
}
