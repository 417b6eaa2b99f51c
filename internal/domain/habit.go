// Package domain defines the business logic for the tracker service.
package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	// ErrHabitNotFound is returned when a habit cannot be located.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrAlreadyCheckedIn signals a duplicate same-day check-in.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// Frequency describes how often a habit is intended to recur. It is stored
// metadata only; streak math is day-based for both values.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether the frequency is a known value.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Completion is a single check-in record for a habit.
type Completion struct {
	Date      time.Time
	Completed bool
}

// Habit is the aggregate mutated by check-ins. Streak is maintained
// incrementally, never recomputed by rescanning Completions.
type Habit struct {
	ID          string
	Name        string
	Description string
	Frequency   Frequency
	Streak      int
	Completions []Completion
	LastCheckIn *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate ensures the habit fields are acceptable for persistence.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("name is required")
	}
	if !h.Frequency.Valid() {
		return errors.New("frequency must be daily or weekly")
	}
	return nil
}

// DayStart truncates a timestamp to its local calendar-day boundary.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}

// AdvanceStreak computes the streak value a check-in on today produces.
// Callers must reject same-day duplicates before calling: by the time this
// runs, today is known to have no completion yet.
func AdvanceStreak(lastCheckIn *time.Time, streak int, today time.Time) int {
	if lastCheckIn == nil {
		return 1
	}
	yesterday := DayStart(today).AddDate(0, 0, -1)
	if DayStart(*lastCheckIn).Equal(yesterday) {
		return streak + 1
	}
	// Any other gap, including future-dated lastCheckIn from clock skew,
	// starts a fresh streak that already counts today.
	return 1
}

// CheckIn applies a check-in at now to the habit in place. It returns
// ErrAlreadyCheckedIn without mutating when a completion for now's calendar
// day already exists.
func (h *Habit) CheckIn(now time.Time) error {
	today := DayStart(now)
	for _, c := range h.Completions {
		if SameDay(c.Date, today) {
			return ErrAlreadyCheckedIn
		}
	}

	h.Streak = AdvanceStreak(h.LastCheckIn, h.Streak, today)
	h.Completions = append(h.Completions, Completion{Date: today, Completed: true})
	h.LastCheckIn = &today
	h.UpdatedAt = now
	return nil
}

// HabitStats is the derived statistics view for a habit.
type HabitStats struct {
	Name             string
	Streak           int
	TotalCompletions int
	CompletionRate   int
	LastCheckIn      *time.Time
}

// Stats derives aggregate completion statistics. CompletionRate counts the
// Completed flag generically rather than assuming every record is true.
func (h Habit) Stats() HabitStats {
	total := len(h.Completions)
	rate := 0
	if total > 0 {
		completed := 0
		for _, c := range h.Completions {
			if c.Completed {
				completed++
			}
		}
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return HabitStats{
		Name:             h.Name,
		Streak:           h.Streak,
		TotalCompletions: total,
		CompletionRate:   rate,
		LastCheckIn:      h.LastCheckIn,
	}
}
