package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrTodoNotFound is returned when a todo cannot be located.
var ErrTodoNotFound = errors.New("todo not found")

// Priority orders todos in listings, most urgent first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank maps a priority to its sort position. Listings order by Rank
// ascending, so high-priority items come first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Todo is a single task record.
type Todo struct {
	ID        string
	Title     string
	Completed bool
	Priority  Priority
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the todo fields are acceptable for persistence.
func (t Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	if !t.Priority.Valid() {
		return errors.New("priority must be low, medium, or high")
	}
	return nil
}
