package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"example.com/tracker/internal/chat"
	"example.com/tracker/internal/observability"
)

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Please provide a message")
		return
	}

	// Chat failures never surface as errors: any problem loading the
	// snapshot or reaching the responder degrades to the fallback reply.
	snap, err := h.snapshot(r.Context())
	if err == nil {
		var reply string
		reply, err = h.responder.Reply(r.Context(), req.Message, snap)
		if err == nil {
			writeJSON(w, http.StatusOK, ChatResponse{Success: true, Reply: reply})
			return
		}
	}

	log.Printf("chat fallback: %v", err)
	observability.RecordChatFallback()
	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Reply: chat.FallbackReply})
}

// snapshot projects current todos and habits into the read-only view a
// responder may reference.
func (h *Handler) snapshot(ctx context.Context) (chat.Snapshot, error) {
	todos, err := h.service.ListTodos(ctx)
	if err != nil {
		return chat.Snapshot{}, err
	}
	habits, err := h.service.ListHabits(ctx)
	if err != nil {
		return chat.Snapshot{}, err
	}

	snap := chat.Snapshot{
		Todos:  make([]chat.TodoSnapshot, 0, len(todos)),
		Habits: make([]chat.HabitSnapshot, 0, len(habits)),
	}
	for _, t := range todos {
		snap.Todos = append(snap.Todos, chat.TodoSnapshot{
			Title:     t.Title,
			Completed: t.Completed,
			Priority:  string(t.Priority),
		})
	}
	for _, habit := range habits {
		snap.Habits = append(snap.Habits, chat.HabitSnapshot{
			Name:      habit.Name,
			Streak:    habit.Streak,
			Frequency: string(habit.Frequency),
		})
	}
	return snap, nil
}
