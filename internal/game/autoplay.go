package game

import "time"

// Autoplay is the outcome of polling the playback schedule.
type Autoplay struct {
	// Attempted is true when the preconditions held and the schedule was
	// consumed, whether or not the due time had passed.
	Attempted bool

	// FetchAudio signals that the target's audio should be fetched now.
	FetchAudio bool

	// DeferMs is how long the caller should delay playback, in
	// milliseconds. Zero means play immediately.
	DeferMs int
}

// PollAutoplay checks the playback schedule without blocking. It is meant to
// be called once per external poll cycle.
//
// When a schedule exists and the target, mute, and timing preconditions hold,
// the schedule is consumed in one poll: if the due time has not arrived yet
// the remaining delay is reported so the caller can defer playback on its
// side, otherwise playback is due immediately. A second poll in the same tick
// finds no schedule and reports Attempted=false.
func (s *Session) PollAutoplay() Autoplay {
	if s.targetID == EmptyCell || s.muted || !s.timingStarted || s.autoplayAt.IsZero() {
		return Autoplay{}
	}

	due := s.autoplayAt
	s.autoplayAt = time.Time{}

	now := s.now()
	if now.Before(due) {
		return Autoplay{
			Attempted:  true,
			FetchAudio: true,
			DeferMs:    int(due.Sub(now).Milliseconds()),
		}
	}
	return Autoplay{Attempted: true, FetchAudio: true}
}
