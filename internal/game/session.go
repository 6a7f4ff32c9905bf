package game

import (
	"math/rand"
	"time"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
)

// Autoplay delays relative to the triggering event.
const (
	autoplayAfterMatch = 2 * time.Second
	autoplayAtStart    = 200 * time.Millisecond
	autoplayOnUnmute   = 100 * time.Millisecond
)

// Session holds all mutable state of one game. It is owned by a single
// caller; every mutation happens synchronously in response to one event at a
// time, so no locking is involved.
type Session struct {
	pairs []dataset.Pair
	byID  map[int]dataset.Pair

	rows int
	cols int

	deck Deck
	grid Grid

	targetID int
	score    int
	miss     int

	muted      bool
	autoplayAt time.Time

	timingStarted   bool
	gameStartedAt   time.Time
	targetStartedAt time.Time
	cardTimes       map[int][]time.Duration
	cardMisses      map[int]int
	activeIDs       []int

	now func() time.Time
	rng *rand.Rand
}

// NewSession builds a session for the given pairs and board size and deals
// the initial board. A nil rng or now falls back to real randomness and the
// wall clock; tests inject both.
func NewSession(pairs []dataset.Pair, rows, cols int, rng *rand.Rand, now func() time.Time) *Session {
	if rng == nil {
		rng = newRNG()
	}
	if now == nil {
		now = time.Now
	}
	s := &Session{
		rows: rows,
		cols: cols,
		now:  now,
		rng:  rng,
	}
	s.Reset(pairs, rows, cols)
	return s
}

// Reset rebuilds the deck and grid, optionally switching the pair subset or
// board size, and returns the session to its pre-game state. A nil subset
// keeps the current pairs; zero rows or cols keep the current dimensions.
func (s *Session) Reset(pairsSubset []dataset.Pair, rows, cols int) {
	if pairsSubset != nil {
		s.pairs = pairsSubset
		s.byID = dataset.IndexByID(pairsSubset)
	}
	if rows > 0 {
		s.rows = rows
	}
	if cols > 0 {
		s.cols = cols
	}

	s.deck = NewDeck(s.pairs, s.rng)
	s.grid = DealGrid(&s.deck, s.rows, s.cols)
	if target, ok := ChooseTarget(s.grid, s.rng); ok {
		s.targetID = target
	} else {
		s.targetID = EmptyCell
	}

	s.score = 0
	s.miss = 0
	s.autoplayAt = time.Time{}
	s.timingStarted = false
	s.gameStartedAt = time.Time{}
	s.targetStartedAt = time.Time{}
	s.cardTimes = map[int][]time.Duration{}
	s.cardMisses = map[int]int{}
	s.activeIDs = make([]int, 0, len(s.pairs))
	for _, p := range s.pairs {
		s.activeIDs = append(s.activeIDs, p.ID)
	}
}

// Start begins timing. The board must already be dealt (NewSession or Reset).
// An early autoplay is scheduled so that the first verse plays right away.
func (s *Session) Start() {
	now := s.now()
	s.timingStarted = true
	s.gameStartedAt = now
	s.targetStartedAt = now
	s.cardTimes = map[int][]time.Duration{}
	s.cardMisses = map[int]int{}
	s.autoplayAt = now.Add(autoplayAtStart)
}

// HandleCellClick resolves a player's selection of the cell at (r, c).
//
// A click on an empty cell, an out-of-range position, or with no active
// target is silently ignored. A match records the target's duration, scores,
// clears and refills the cell, and picks the next target; a wrong cell bumps
// the miss counters. Nothing here ever blocks or errors.
func (s *Session) HandleCellClick(r, c int) {
	cardID, ok := s.grid.Cell(r, c)
	if !ok || s.targetID == EmptyCell {
		return
	}

	if cardID != s.targetID {
		s.miss++
		s.cardMisses[s.targetID]++
		return
	}

	now := s.now()
	if s.timingStarted && !s.targetStartedAt.IsZero() {
		duration := now.Sub(s.targetStartedAt)
		if duration < 0 {
			duration = 0
		}
		s.cardTimes[s.targetID] = append(s.cardTimes[s.targetID], duration)
	}

	s.score++
	s.grid[r][c] = EmptyCell
	RefillCell(s.grid, r, c, &s.deck)

	if next, ok := ChooseTarget(s.grid, s.rng); ok {
		s.targetID = next
		if s.timingStarted {
			s.targetStartedAt = now
		}
	} else {
		// Board cleared: game over.
		s.targetID = EmptyCell
	}
	s.autoplayAt = now.Add(autoplayAfterMatch)
}

// SetMuted switches audio muting. Unmuting mid-game schedules a prompt
// replay of the current target.
func (s *Session) SetMuted(muted bool) {
	if s.muted == muted {
		return
	}
	s.muted = muted
	if !muted && s.timingStarted && s.targetID != EmptyCell {
		s.autoplayAt = s.now().Add(autoplayOnUnmute)
	}
}

// Finished reports whether every card has been taken.
func (s *Session) Finished() bool {
	return s.targetID == EmptyCell && s.grid.Remaining() == 0
}

// Target returns the pair currently being sought.
func (s *Session) Target() (dataset.Pair, bool) {
	if s.targetID == EmptyCell {
		return dataset.Pair{}, false
	}
	p, ok := s.byID[s.targetID]
	return p, ok
}

// TargetID returns the current target card id.
func (s *Session) TargetID() (int, bool) {
	if s.targetID == EmptyCell {
		return EmptyCell, false
	}
	return s.targetID, true
}

// Pair looks up a pair by card id.
func (s *Session) Pair(id int) (dataset.Pair, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Grid exposes the board for rendering. Callers must not mutate it.
func (s *Session) Grid() Grid { return s.grid }

// Rows returns the board row count.
func (s *Session) Rows() int { return s.rows }

// Cols returns the board column count.
func (s *Session) Cols() int { return s.cols }

// Score returns the number of cards taken.
func (s *Session) Score() int { return s.score }

// Miss returns the total miss count.
func (s *Session) Miss() int { return s.miss }

// Remaining counts the cards still on the grid.
func (s *Session) Remaining() int { return s.grid.Remaining() }

// DeckLen returns the number of cards left in the deck.
func (s *Session) DeckLen() int { return len(s.deck) }

// Muted reports the audio mute state.
func (s *Session) Muted() bool { return s.muted }

// TimingStarted reports whether Start has been called for this game.
func (s *Session) TimingStarted() bool { return s.timingStarted }

// StartedAt returns the game start time, zero before Start.
func (s *Session) StartedAt() time.Time { return s.gameStartedAt }

// ActiveIDs returns the card ids in play this game.
func (s *Session) ActiveIDs() []int { return s.activeIDs }

// CardTimes returns the per-card duration log. Callers must not mutate it.
func (s *Session) CardTimes() map[int][]time.Duration { return s.cardTimes }

// CardMisses returns the per-card miss counts. Callers must not mutate it.
func (s *Session) CardMisses() map[int]int { return s.cardMisses }
