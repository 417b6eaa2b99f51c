// Package chat implements the conversational assistant over tracker state.
package chat

import "context"

// FallbackReply is returned whenever a responder fails. Chat failures are
// never surfaced as errors to the caller.
const FallbackReply = "I'm here to help! Ask me about your tasks, habits, or productivity tips!"

// TodoSnapshot is the read-only todo projection embedded in prompts.
type TodoSnapshot struct {
	Title     string
	Completed bool
	Priority  string
}

// HabitSnapshot is the read-only habit projection embedded in prompts.
type HabitSnapshot struct {
	Name      string
	Streak    int
	Frequency string
}

// Snapshot is the tracker state a responder may reference.
type Snapshot struct {
	Todos  []TodoSnapshot
	Habits []HabitSnapshot
}

// Responder produces a reply to a user message given the current snapshot.
// Implementations are selected by configuration.
type Responder interface {
	Reply(ctx context.Context, message string, snap Snapshot) (string, error)
}
