package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/tracker/internal/domain"
)

// Envelope is the uniform response shape: success plus data or error, with
// count on list endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateHabitRequest is the payload for POST /api/habits.
type CreateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

// Validate ensures request correctness.
func (r CreateHabitRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("Please add a habit name")
	}
	if r.Frequency != "" && !domain.Frequency(r.Frequency).Valid() {
		return errors.New("frequency must be daily or weekly")
	}
	return nil
}

// UpdateHabitRequest is the payload for PUT /api/habits/{id}. Omitted fields
// are left unchanged.
type UpdateHabitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
}

// Validate ensures request correctness.
func (r UpdateHabitRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("Please add a habit name")
	}
	if r.Frequency != nil && !domain.Frequency(*r.Frequency).Valid() {
		return errors.New("frequency must be daily or weekly")
	}
	return nil
}

// CreateTodoRequest is the payload for POST /api/todos.
type CreateTodoRequest struct {
	Title    string     `json:"title"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
}

// Validate ensures request correctness.
func (r CreateTodoRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("Please add a todo title")
	}
	if r.Priority != "" && !domain.Priority(r.Priority).Valid() {
		return errors.New("priority must be low, medium, or high")
	}
	return nil
}

// UpdateTodoRequest is the payload for PUT /api/todos/{id}.
type UpdateTodoRequest struct {
	Title     *string    `json:"title"`
	Completed *bool      `json:"completed"`
	Priority  *string    `json:"priority"`
	DueDate   *time.Time `json:"dueDate"`
}

// Validate ensures request correctness.
func (r UpdateTodoRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("Please add a todo title")
	}
	if r.Priority != nil && !domain.Priority(*r.Priority).Valid() {
		return errors.New("priority must be low, medium, or high")
	}
	return nil
}

// CompletionView is one check-in record.
type CompletionView struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// HabitView exposes full habit details.
type HabitView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Frequency   string           `json:"frequency"`
	Streak      int              `json:"streak"`
	Completions []CompletionView `json:"completions"`
	LastCheckIn *time.Time       `json:"lastCheckIn,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// HabitStatsView is the response for GET /api/habits/{id}/stats.
type HabitStatsView struct {
	Name             string     `json:"name"`
	Streak           int        `json:"streak"`
	TotalCompletions int        `json:"totalCompletions"`
	CompletionRate   int        `json:"completionRate"`
	LastCheckIn      *time.Time `json:"lastCheckIn,omitempty"`
}

// TodoView exposes full todo details.
type TodoView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Priority  string     `json:"priority"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ChatRequest is the payload for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse wraps the assistant's reply.
type ChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

func toHabitView(habit domain.Habit) HabitView {
	completions := make([]CompletionView, 0, len(habit.Completions))
	for _, c := range habit.Completions {
		completions = append(completions, CompletionView{Date: c.Date, Completed: c.Completed})
	}
	return HabitView{
		ID:          habit.ID,
		Name:        habit.Name,
		Description: habit.Description,
		Frequency:   string(habit.Frequency),
		Streak:      habit.Streak,
		Completions: completions,
		LastCheckIn: habit.LastCheckIn,
		CreatedAt:   habit.CreatedAt,
		UpdatedAt:   habit.UpdatedAt,
	}
}

func toTodoView(todo domain.Todo) TodoView {
	return TodoView{
		ID:        todo.ID,
		Title:     todo.Title,
		Completed: todo.Completed,
		Priority:  string(todo.Priority),
		DueDate:   todo.DueDate,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
