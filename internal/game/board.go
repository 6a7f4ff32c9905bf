// Package game implements the karuta board and game session state machine.
package game

import (
	"math/rand"
	"time"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/dataset"
)

// EmptyCell marks a grid cell with no card on it.
const EmptyCell = -1

// Deck is the shuffled backlog of card ids not yet placed on the grid.
type Deck []int

// Pop removes and returns the top card of the deck.
func (d *Deck) Pop() (int, bool) {
	old := *d
	if len(old) == 0 {
		return EmptyCell, false
	}
	id := old[len(old)-1]
	*d = old[:len(old)-1]
	return id, true
}

// Grid is the rows×cols board of card ids, EmptyCell where no card sits.
type Grid [][]int

// NewDeck builds a uniformly shuffled deck from all pair ids.
func NewDeck(pairs []dataset.Pair, rng *rand.Rand) Deck {
	deck := make(Deck, len(pairs))
	for i, p := range pairs {
		deck[i] = p.ID
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// DealGrid pops cards off the deck into a rows×cols grid, row-major. Cells
// left over after the deck runs out stay empty.
func DealGrid(deck *Deck, rows, cols int) Grid {
	grid := make(Grid, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]int, cols)
		for c := 0; c < cols; c++ {
			if id, ok := deck.Pop(); ok {
				grid[r][c] = id
			} else {
				grid[r][c] = EmptyCell
			}
		}
	}
	return grid
}

// ChooseTarget picks a uniformly random card among the occupied cells.
// The second return is false when the grid is fully empty.
func ChooseTarget(grid Grid, rng *rand.Rand) (int, bool) {
	var choices []int
	for _, row := range grid {
		for _, id := range row {
			if id != EmptyCell {
				choices = append(choices, id)
			}
		}
	}
	if len(choices) == 0 {
		return EmptyCell, false
	}
	return choices[rng.Intn(len(choices))], true
}

// RefillCell fills an empty cell from the deck. Occupied cells and an empty
// deck are both no-ops.
func RefillCell(grid Grid, r, c int, deck *Deck) {
	if grid[r][c] != EmptyCell {
		return
	}
	if id, ok := deck.Pop(); ok {
		grid[r][c] = id
	}
}

// Remaining counts the occupied cells.
func (g Grid) Remaining() int {
	count := 0
	for _, row := range g {
		for _, id := range row {
			if id != EmptyCell {
				count++
			}
		}
	}
	return count
}

// Cell returns the card at (r, c), guarding against out-of-range positions.
func (g Grid) Cell(r, c int) (int, bool) {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return EmptyCell, false
	}
	if g[r][c] == EmptyCell {
		return EmptyCell, false
	}
	return g[r][c], true
}

// Contains reports whether the card id sits somewhere on the grid.
func (g Grid) Contains(id int) bool {
	for _, row := range g {
		for _, cell := range row {
			if cell == id {
				return true
			}
		}
	}
	return false
}

// newRNG seeds a game-grade randomness source.
func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
