package chat

import (
	"context"
	"fmt"
	"strings"
)

// LocalResponder answers with canned pattern-matched replies derived from the
// snapshot. It needs no external service and is fully deterministic: rotating
// replies are selected by snapshot counts, not randomness.
type LocalResponder struct{}

// NewLocalResponder constructs a LocalResponder.
func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

var motivations = []string{
	"You've completed %d tasks already! Keep that momentum going!",
	"%d day streak on your habits? That's dedication!",
	"Every task you complete is progress. You've got this!",
	"Small steps lead to big changes. Keep building those habits!",
}

var tips = []string{
	"Break large tasks into smaller ones - they're easier to complete!",
	"Try the Pomodoro technique: 25 min focused work, 5 min break.",
	"Tackle your hardest task first thing - you'll feel accomplished all day!",
	"Review your progress weekly to stay motivated and adjust goals.",
	"Build habits by linking them to existing routines (habit stacking).",
}

// Reply matches intent keywords in the message and renders a templated
// summary of the snapshot.
func (r *LocalResponder) Reply(_ context.Context, message string, snap Snapshot) (string, error) {
	msg := strings.ToLower(message)

	totalTodos := len(snap.Todos)
	completedTodos := 0
	highPriorityPending := 0
	var highPriorityTitles []string
	for _, t := range snap.Todos {
		if t.Completed {
			completedTodos++
		} else if t.Priority == "high" {
			highPriorityPending++
			highPriorityTitles = append(highPriorityTitles, t.Title)
		}
	}
	pendingTodos := totalTodos - completedTodos

	totalHabits := len(snap.Habits)
	activeStreaks := 0
	longestStreak := 0
	for _, h := range snap.Habits {
		if h.Streak > 0 {
			activeStreaks++
		}
		if h.Streak > longestStreak {
			longestStreak = h.Streak
		}
	}

	switch {
	case containsAny(msg, "hello", "hi", "hey"):
		return fmt.Sprintf("Hey! You have %d pending tasks and %d active habit streaks. How can I help you stay organized today?",
			pendingTodos, activeStreaks), nil

	case containsAny(msg, "summary", "overview", "status"):
		var b strings.Builder
		b.WriteString("Your Overview:\n\n")
		fmt.Fprintf(&b, "Tasks: %d/%d completed", completedTodos, totalTodos)
		if highPriorityPending > 0 {
			fmt.Fprintf(&b, " (%d high priority remaining)", highPriorityPending)
		}
		fmt.Fprintf(&b, "\nHabits: %d tracked, longest streak: %d days\n\n", totalHabits, longestStreak)
		if pendingTodos == 0 {
			b.WriteString("All tasks done! Great work!")
		} else {
			b.WriteString("Keep going!")
		}
		return b.String(), nil

	case containsAny(msg, "motivat", "encourage"):
		idx := (completedTodos + longestStreak) % len(motivations)
		switch idx {
		case 0:
			return fmt.Sprintf(motivations[0], completedTodos), nil
		case 1:
			return fmt.Sprintf(motivations[1], longestStreak), nil
		default:
			return motivations[idx], nil
		}

	case containsAny(msg, "priority", "important"):
		if highPriorityPending == 0 {
			return "No high-priority tasks right now! Great job staying on top of things!", nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "High Priority Tasks (%d):\n", highPriorityPending)
		for _, title := range highPriorityTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\nFocus on these first for maximum impact!")
		return b.String(), nil

	case containsAny(msg, "habit", "streak"):
		if totalHabits == 0 {
			return "No habits tracked yet! Start building positive habits - consistency is key!", nil
		}
		var b strings.Builder
		b.WriteString("Your Habits:\n")
		for _, h := range snap.Habits {
			fmt.Fprintf(&b, "- %s: %d day streak\n", h.Name, h.Streak)
		}
		b.WriteString("\nKeep showing up every day!")
		return b.String(), nil

	case containsAny(msg, "tip", "advice", "suggest"):
		return tips[(totalTodos+totalHabits)%len(tips)], nil

	case strings.Contains(msg, "help"):
		return "I can help you with:\n- Overview/summary of your tasks and habits\n- Motivation and encouragement\n- Tips for productivity\n- Priority task recommendations\n\nJust ask me anything!", nil
	}

	switch {
	case pendingTodos > 5:
		return fmt.Sprintf("I see you have %d pending tasks. Consider focusing on high-priority items first, or break large tasks into smaller steps. You've got this!", pendingTodos), nil
	case pendingTodos > 0:
		reply := fmt.Sprintf("You're doing great! %d tasks to go. ", pendingTodos)
		if highPriorityPending > 0 {
			return reply + "Focus on the high-priority ones first!", nil
		}
		return reply + "Keep that momentum going!", nil
	case totalHabits > 0:
		return "All tasks completed! Time to work on your habits or add new goals. Keep crushing it!", nil
	default:
		return "All tasks completed! Time to add new goals. Keep crushing it!", nil
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
