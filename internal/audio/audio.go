// Package audio provides verse audio synthesis behind a per-game cache.
package audio

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable signals that no synthesizer backend can produce audio.
// Callers treat it as a degraded state, not a failure.
var ErrUnavailable = errors.New("audio synthesis unavailable")

// Synthesizer turns an opening verse into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Null is a synthesizer without a backend. Every request reports
// ErrUnavailable so the game degrades to silent play.
type Null struct{}

// Synthesize implements Synthesizer.
func (Null) Synthesize(context.Context, string) ([]byte, error) {
	return nil, ErrUnavailable
}

// Cache memoizes synthesized audio by card id for the duration of one game.
// The limit bounds growth across long sessions; Clear is called on reset.
// Fetch may be called from a background goroutine while the UI reads Get,
// hence the mutex.
type Cache struct {
	synth Synthesizer
	limit int

	mu      sync.Mutex
	entries map[int][]byte
}

// NewCache wraps a synthesizer with an id-keyed cache holding at most limit
// entries. A limit of 0 or less means unbounded.
func NewCache(synth Synthesizer, limit int) *Cache {
	return &Cache{
		synth:   synth,
		limit:   limit,
		entries: map[int][]byte{},
	}
}

// Get returns cached audio for a card without synthesizing.
func (c *Cache) Get(cardID int) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[cardID]
	return data, ok
}

// Fetch returns cached audio or synthesizes and caches it. Synthesis errors
// are returned as-is; nothing is cached for a failed card, so a later fetch
// retries.
func (c *Cache) Fetch(ctx context.Context, cardID int, text string) ([]byte, error) {
	if data, ok := c.Get(cardID); ok {
		return data, nil
	}
	data, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit <= 0 || len(c.entries) < c.limit {
		c.entries[cardID] = data
	}
	return data, nil
}

// Clear drops all cached audio.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[int][]byte{}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
