package game

import (
	"testing"
	"time"
)

func TestPollAutoplayConsumedOnce(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()
	clock.advance(time.Second)

	first := s.PollAutoplay()
	if !first.Attempted || !first.FetchAudio {
		t.Fatalf("expected first poll to attempt playback: %+v", first)
	}
	if first.DeferMs != 0 {
		t.Fatalf("due schedule must play immediately, got defer %dms", first.DeferMs)
	}

	second := s.PollAutoplay()
	if second.Attempted {
		t.Fatalf("second poll must be a no-op: %+v", second)
	}
}

func TestPollAutoplayBeforeDueReportsDefer(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()
	// Start schedules playback 200ms out; poll after 50ms.
	clock.advance(50 * time.Millisecond)

	result := s.PollAutoplay()
	if !result.Attempted || !result.FetchAudio {
		t.Fatalf("expected attempt with prefetch: %+v", result)
	}
	if result.DeferMs != 150 {
		t.Fatalf("expected 150ms defer, got %d", result.DeferMs)
	}
	if again := s.PollAutoplay(); again.Attempted {
		t.Fatalf("schedule must be consumed even when not yet due")
	}
}

func TestPollAutoplayPreconditions(t *testing.T) {
	s, _ := newTestSession(t, 10, 2, 4)
	// Not started: nothing to do.
	if got := s.PollAutoplay(); got.Attempted {
		t.Fatalf("expected no attempt before start: %+v", got)
	}

	s.Start()
	s.SetMuted(true)
	if got := s.PollAutoplay(); got.Attempted {
		t.Fatalf("expected no attempt while muted: %+v", got)
	}
}

func TestUnmuteSchedulesPrompt(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()
	s.SetMuted(true)
	// Muted polls drop nothing; the start schedule stays until unmute replaces it.
	clock.advance(time.Second)
	s.SetMuted(false)
	clock.advance(100 * time.Millisecond)

	result := s.PollAutoplay()
	if !result.Attempted || result.DeferMs != 0 {
		t.Fatalf("expected immediate playback after unmute: %+v", result)
	}
}

func TestMatchSchedulesAutoplay(t *testing.T) {
	s, clock := newTestSession(t, 10, 2, 4)
	s.Start()
	clock.advance(time.Second)
	if got := s.PollAutoplay(); !got.Attempted {
		t.Fatalf("expected start schedule: %+v", got)
	}

	r, c := targetPos(t, s)
	s.HandleCellClick(r, c)
	clock.advance(2 * time.Second)

	result := s.PollAutoplay()
	if !result.Attempted || result.DeferMs != 0 {
		t.Fatalf("expected playback for next target: %+v", result)
	}
}
