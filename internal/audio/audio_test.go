package audio

import (
	"context"
	"errors"
	"testing"
)

type fakeSynth struct {
	calls int
	fail  bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, ErrUnavailable
	}
	return []byte(text), nil
}

func TestCacheFetchMemoizes(t *testing.T) {
	synth := &fakeSynth{}
	cache := NewCache(synth, 8)
	ctx := context.Background()

	first, err := cache.Fetch(ctx, 1, "あきの")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := cache.Fetch(ctx, 1, "あきの")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(first) != "あきの" || string(second) != "あきの" {
		t.Fatalf("unexpected audio bytes")
	}
	if synth.calls != 1 {
		t.Fatalf("expected one synthesis, got %d", synth.calls)
	}
}

func TestCacheFailureNotCached(t *testing.T) {
	synth := &fakeSynth{fail: true}
	cache := NewCache(synth, 8)
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, 1, "あきの"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	synth.fail = false
	if _, err := cache.Fetch(ctx, 1, "あきの"); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if synth.calls != 2 {
		t.Fatalf("expected 2 synthesis calls, got %d", synth.calls)
	}
}

func TestCacheBounded(t *testing.T) {
	synth := &fakeSynth{}
	cache := NewCache(synth, 2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := cache.Fetch(ctx, i, "verse"); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("expected cache capped at 2, got %d", cache.Len())
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(&fakeSynth{}, 0)
	if _, err := cache.Fetch(context.Background(), 1, "verse"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
	if _, ok := cache.Get(1); ok {
		t.Fatalf("expected miss after clear")
	}
}

func TestNullSynthesizer(t *testing.T) {
	if _, err := (Null{}).Synthesize(context.Background(), "verse"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
