package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventGuessSubmitted EventType = "guess_submitted"
	EventScoreSubmitted EventType = "score_submitted"
)

// Event represents an immutable domain event.
type Event struct {
	Type  EventType `json:"type"`
	Time  time.Time `json:"time"`
	Guess *Guess    `json:"guess,omitempty"`
	Score *Score    `json:"score,omitempty"`
}

func NewGuessSubmitted(g Guess) Event {
	return Event{Type: EventGuessSubmitted, Time: time.Now().UTC(), Guess: &g}
}

func NewScoreSubmitted(s Score) Event {
	return Event{Type: EventScoreSubmitted, Time: time.Now().UTC(), Score: &s}
}
