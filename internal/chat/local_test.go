package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSnapshot = Snapshot{
	Todos: []TodoSnapshot{
		{Title: "Ship release", Completed: false, Priority: "high"},
		{Title: "Write notes", Completed: true, Priority: "medium"},
		{Title: "Water plants", Completed: false, Priority: "low"},
	},
	Habits: []HabitSnapshot{
		{Name: "Reading", Streak: 7, Frequency: "daily"},
		{Name: "Stretching", Streak: 0, Frequency: "daily"},
	},
}

func TestLocalResponderGreeting(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "hello there", testSnapshot)
	require.NoError(t, err)
	require.Contains(t, reply, "2 pending tasks")
	require.Contains(t, reply, "1 active habit streaks")
}

func TestLocalResponderSummary(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "give me a status update", testSnapshot)
	require.NoError(t, err)
	require.Contains(t, reply, "Tasks: 1/3 completed")
	require.Contains(t, reply, "1 high priority remaining")
	require.Contains(t, reply, "longest streak: 7 days")
}

func TestLocalResponderPriorityListsPendingHighTasks(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "what's important?", testSnapshot)
	require.NoError(t, err)
	require.Contains(t, reply, "High Priority Tasks (1)")
	require.Contains(t, reply, "Ship release")
	require.NotContains(t, reply, "Water plants")
}

func TestLocalResponderPriorityAllClear(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "priority check", Snapshot{})
	require.NoError(t, err)
	require.Contains(t, reply, "No high-priority tasks")
}

func TestLocalResponderHabits(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "how are my streaks?", testSnapshot)
	require.NoError(t, err)
	require.Contains(t, reply, "Reading: 7 day streak")
	require.Contains(t, reply, "Stretching: 0 day streak")
}

func TestLocalResponderNoHabits(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "any habit advice?", Snapshot{})
	require.NoError(t, err)
	require.Contains(t, reply, "No habits tracked yet")
}

func TestLocalResponderTipIsDeterministic(t *testing.T) {
	r := NewLocalResponder()
	first, err := r.Reply(context.Background(), "give me a tip", testSnapshot)
	require.NoError(t, err)
	second, err := r.Reply(context.Background(), "give me a tip", testSnapshot)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestLocalResponderDefaultByPendingCount(t *testing.T) {
	r := NewLocalResponder()

	busy := Snapshot{Todos: make([]TodoSnapshot, 8)}
	reply, err := r.Reply(context.Background(), "hmm", busy)
	require.NoError(t, err)
	require.Contains(t, reply, "8 pending tasks")

	reply, err = r.Reply(context.Background(), "hmm", Snapshot{})
	require.NoError(t, err)
	require.True(t, strings.Contains(reply, "All tasks completed"))
}

func TestLocalResponderHelp(t *testing.T) {
	r := NewLocalResponder()
	reply, err := r.Reply(context.Background(), "help", testSnapshot)
	require.NoError(t, err)
	require.Contains(t, reply, "Overview/summary")
}
