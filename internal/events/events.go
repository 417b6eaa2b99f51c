// Package events defines the payloads recorded in the outbox and delivered
// to Kafka.
package events

import "time"

// HabitCheckedIn is emitted when a habit check-in commits.
type HabitCheckedIn struct {
	HabitID    string    `json:"habit_id"`
	Name       string    `json:"name"`
	Day        time.Time `json:"day"`
	Streak     int       `json:"streak"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TodoToggled is emitted when a todo's completion flag flips.
type TodoToggled struct {
	TodoID     string    `json:"todo_id"`
	Title      string    `json:"title"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}
