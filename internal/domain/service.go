package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HabitRepository captures habit persistence operations. Lookup methods
// return nil without error when the habit does not exist.
type HabitRepository interface {
	Create(ctx context.Context, habit Habit) error
	Get(ctx context.Context, habitID string) (*Habit, error)
	List(ctx context.Context) ([]Habit, error)
	Update(ctx context.Context, habit Habit) (*Habit, error)
	Delete(ctx context.Context, habitID string) (bool, error)
	// CheckIn performs the whole check-in as one atomic conditional update:
	// the duplicate-day guard, streak advance, completion append, and habit
	// update commit together or not at all. Implementations return
	// ErrAlreadyCheckedIn on a same-day duplicate.
	CheckIn(ctx context.Context, habitID string, now time.Time) (*Habit, error)
}

// TodoRepository captures todo persistence operations.
type TodoRepository interface {
	Create(ctx context.Context, todo Todo) error
	Get(ctx context.Context, todoID string) (*Todo, error)
	List(ctx context.Context) ([]Todo, error)
	Update(ctx context.Context, todo Todo) (*Todo, error)
	Delete(ctx context.Context, todoID string) (bool, error)
	Toggle(ctx context.Context, todoID string) (*Todo, error)
}

// Service orchestrates habit and todo workflows.
type Service struct {
	habits HabitRepository
	todos  TodoRepository
}

// NewService constructs a Service.
func NewService(habits HabitRepository, todos TodoRepository) *Service {
	return &Service{habits: habits, todos: todos}
}

// CreateHabitInput captures the payload from the API layer.
type CreateHabitInput struct {
	Name        string
	Description string
	Frequency   Frequency
}

// UpdateHabitInput carries optional field updates; nil means unchanged.
type UpdateHabitInput struct {
	Name        *string
	Description *string
	Frequency   *Frequency
}

// CreateHabit persists a new habit with an empty check-in history.
func (s *Service) CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error) {
	now := time.Now().UTC()
	habit := Habit{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Frequency:   input.Frequency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if habit.Frequency == "" {
		habit.Frequency = FrequencyDaily
	}
	if err := habit.Validate(); err != nil {
		return nil, err
	}
	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListHabits returns all habits, newest-created first.
func (s *Service) ListHabits(ctx context.Context) ([]Habit, error) {
	return s.habits.List(ctx)
}

// UpdateHabit applies the supplied fields to an existing habit.
func (s *Service) UpdateHabit(ctx context.Context, habitID string, input UpdateHabitInput) (*Habit, error) {
	habit, err := s.habits.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}

	if input.Name != nil {
		habit.Name = *input.Name
	}
	if input.Description != nil {
		habit.Description = *input.Description
	}
	if input.Frequency != nil {
		habit.Frequency = *input.Frequency
	}
	if err := habit.Validate(); err != nil {
		return nil, err
	}

	habit.UpdatedAt = time.Now().UTC()
	updated, err := s.habits.Update(ctx, *habit)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrHabitNotFound
	}
	return updated, nil
}

// DeleteHabit removes a habit and its completion history.
func (s *Service) DeleteHabit(ctx context.Context, habitID string) error {
	deleted, err := s.habits.Delete(ctx, habitID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrHabitNotFound
	}
	return nil
}

// CheckInHabit records a check-in for now's calendar day.
func (s *Service) CheckInHabit(ctx context.Context, habitID string, now time.Time) (*Habit, error) {
	habit, err := s.habits.CheckIn(ctx, habitID, now)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

// HabitStats derives completion statistics for a habit.
func (s *Service) HabitStats(ctx context.Context, habitID string) (*HabitStats, error) {
	habit, err := s.habits.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}
	stats := habit.Stats()
	return &stats, nil
}

// CreateTodoInput captures the payload from the API layer.
type CreateTodoInput struct {
	Title    string
	Priority Priority
	DueDate  *time.Time
}

// UpdateTodoInput carries optional field updates; nil means unchanged.
type UpdateTodoInput struct {
	Title     *string
	Completed *bool
	Priority  *Priority
	DueDate   *time.Time
}

// CreateTodo persists a new todo.
func (s *Service) CreateTodo(ctx context.Context, input CreateTodoInput) (*Todo, error) {
	now := time.Now().UTC()
	todo := Todo{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Priority:  input.Priority,
		DueDate:   input.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if todo.Priority == "" {
		todo.Priority = PriorityMedium
	}
	if err := todo.Validate(); err != nil {
		return nil, err
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListTodos returns todos ordered by priority, due date, then recency.
func (s *Service) ListTodos(ctx context.Context) ([]Todo, error) {
	return s.todos.List(ctx)
}

// UpdateTodo applies the supplied fields to an existing todo.
func (s *Service) UpdateTodo(ctx context.Context, todoID string, input UpdateTodoInput) (*Todo, error) {
	todo, err := s.todos.Get(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}
	if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	todo.UpdatedAt = time.Now().UTC()
	updated, err := s.todos.Update(ctx, *todo)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTodoNotFound
	}
	return updated, nil
}

// DeleteTodo removes a todo.
func (s *Service) DeleteTodo(ctx context.Context, todoID string) error {
	deleted, err := s.todos.Delete(ctx, todoID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTodoNotFound
	}
	return nil
}

// ToggleTodo flips a todo's completion flag.
func (s *Service) ToggleTodo(ctx context.Context, todoID string) (*Todo, error) {
	todo, err := s.todos.Toggle(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}
