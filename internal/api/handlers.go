// Package api exposes the HTTP handlers for the tracker service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"example.com/tracker/internal/chat"
	"example.com/tracker/internal/domain"
)

// Version is reported by the root banner endpoint.
const Version = "1.0.0"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service   *domain.Service
	responder chat.Responder
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, responder chat.Responder) *Handler {
	return &Handler{service: service, responder: responder}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/habits", h.habits)
	mux.HandleFunc("/api/habits/", h.habitByID)
	mux.HandleFunc("/api/todos", h.todos)
	mux.HandleFunc("/api/todos/", h.todoByID)
	mux.HandleFunc("/api/chat", h.chat)
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/", h.banner)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// banner describes the API surface on the root path.
func (h *Handler) banner(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tracker Backend API",
		"version": Version,
		"endpoints": map[string]string{
			"todos":  "/api/todos",
			"habits": "/api/habits",
			"chat":   "/api/chat",
		},
	})
}

func (h *Handler) habits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHabits(w, r)
	case http.MethodPost:
		h.createHabit(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) habitByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/habits/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing habit id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodPut:
		h.updateHabit(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.deleteHabit(w, r, id)
	case action == "checkin" && r.Method == http.MethodPost:
		h.checkIn(w, r, id)
	case action == "stats" && r.Method == http.MethodGet:
		h.habitStats(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.service.ListHabits(r.Context())
	if err != nil {
		serverError(w, "list habits", err)
		return
	}

	views := make([]HabitView, 0, len(habits))
	for _, habit := range habits {
		views = append(views, toHabitView(habit))
	}
	writeList(w, views, len(views))
}

func (h *Handler) createHabit(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	habit, err := h.service.CreateHabit(r.Context(), domain.CreateHabitInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Frequency:   domain.Frequency(req.Frequency),
	})
	if err != nil {
		serverError(w, "create habit", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toHabitView(*habit))
}

func (h *Handler) updateHabit(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := domain.UpdateHabitInput{Description: req.Description}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		input.Name = &trimmed
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		input.Frequency = &freq
	}

	habit, err := h.service.UpdateHabit(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		serverError(w, "update habit", err)
		return
	}
	writeSuccess(w, http.StatusOK, toHabitView(*habit))
}

func (h *Handler) deleteHabit(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteHabit(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		serverError(w, "delete habit", err)
		return
	}
	writeSuccess(w, http.StatusOK, struct{}{})
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request, id string) {
	habit, err := h.service.CheckInHabit(r.Context(), id, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyCheckedIn):
			writeError(w, http.StatusBadRequest, "Already checked in today")
		case errors.Is(err, domain.ErrHabitNotFound):
			writeError(w, http.StatusNotFound, "Habit not found")
		default:
			serverError(w, "check in habit", err)
		}
		return
	}
	writeSuccess(w, http.StatusOK, toHabitView(*habit))
}

func (h *Handler) habitStats(w http.ResponseWriter, r *http.Request, id string) {
	stats, err := h.service.HabitStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		serverError(w, "habit stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, HabitStatsView{
		Name:             stats.Name,
		Streak:           stats.Streak,
		TotalCompletions: stats.TotalCompletions,
		CompletionRate:   stats.CompletionRate,
		LastCheckIn:      stats.LastCheckIn,
	})
}

func (h *Handler) todos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTodos(w, r)
	case http.MethodPost:
		h.createTodo(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) todoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/todos/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing todo id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodPut:
		h.updateTodo(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.deleteTodo(w, r, id)
	case action == "toggle" && r.Method == http.MethodPatch:
		h.toggleTodo(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.ListTodos(r.Context())
	if err != nil {
		serverError(w, "list todos", err)
		return
	}

	views := make([]TodoView, 0, len(todos))
	for _, todo := range todos {
		views = append(views, toTodoView(todo))
	}
	writeList(w, views, len(views))
}

func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.service.CreateTodo(r.Context(), domain.CreateTodoInput{
		Title:    strings.TrimSpace(req.Title),
		Priority: domain.Priority(req.Priority),
		DueDate:  req.DueDate,
	})
	if err != nil {
		serverError(w, "create todo", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toTodoView(*todo))
}

func (h *Handler) updateTodo(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := domain.UpdateTodoInput{Completed: req.Completed, DueDate: req.DueDate}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		input.Title = &trimmed
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}

	todo, err := h.service.UpdateTodo(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		serverError(w, "update todo", err)
		return
	}
	writeSuccess(w, http.StatusOK, toTodoView(*todo))
}

func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteTodo(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		serverError(w, "delete todo", err)
		return
	}
	writeSuccess(w, http.StatusOK, struct{}{})
}

func (h *Handler) toggleTodo(w http.ResponseWriter, r *http.Request, id string) {
	todo, err := h.service.ToggleTodo(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		serverError(w, "toggle todo", err)
		return
	}
	writeSuccess(w, http.StatusOK, toTodoView(*todo))
}

func serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Server Error")
}
