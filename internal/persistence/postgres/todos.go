package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/tracker/internal/domain"
	"example.com/tracker/internal/events"
)

const todoColumns = `todo_id, title, completed, priority, due_date, created_at, updated_at`

// Create persists a new todo.
func (r *Todos) Create(ctx context.Context, todo domain.Todo) error {
	const stmt = `INSERT INTO todos (todo_id, title, completed, priority, due_date, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.pool.Exec(ctx, stmt,
		todo.ID,
		todo.Title,
		todo.Completed,
		string(todo.Priority),
		todo.DueDate,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	return err
}

// Get retrieves a todo by ID, or nil when absent.
func (r *Todos) Get(ctx context.Context, todoID string) (*domain.Todo, error) {
	const query = `SELECT ` + todoColumns + ` FROM todos WHERE todo_id=$1`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, todoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return todo, nil
}

// List returns todos ordered by priority rank, due date (nulls last),
// then creation time descending.
func (r *Todos) List(ctx context.Context) ([]domain.Todo, error) {
	const query = `SELECT ` + todoColumns + ` FROM todos
        ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
                 due_date ASC NULLS LAST,
                 created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

// Update overwrites a todo's mutable fields, returning nil when absent.
func (r *Todos) Update(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	const stmt = `UPDATE todos SET title=$2, completed=$3, priority=$4, due_date=$5, updated_at=$6 WHERE todo_id=$1`

	tag, err := r.pool.Exec(ctx, stmt,
		todo.ID,
		todo.Title,
		todo.Completed,
		string(todo.Priority),
		todo.DueDate,
		todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.Get(ctx, todo.ID)
}

// Delete removes a todo.
func (r *Todos) Delete(ctx context.Context, todoID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE todo_id=$1`, todoID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Toggle flips the completion flag atomically and records the outbox
// event in the same transaction.
func (r *Todos) Toggle(ctx context.Context, todoID string) (*domain.Todo, error) {
	now := time.Now().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const stmt = `UPDATE todos SET completed = NOT completed, updated_at=$2
        WHERE todo_id=$1
        RETURNING ` + todoColumns

	todo, err := scanTodo(tx.QueryRow(ctx, stmt, todoID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := insertOutbox(ctx, tx, "todo", todoID, "todo.toggled", events.TodoToggled{
		TodoID:     todo.ID,
		Title:      todo.Title,
		Completed:  todo.Completed,
		OccurredAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return todo, nil
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		todo     domain.Todo
		priority string
	)
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Completed, &priority, &todo.DueDate, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}
	todo.Priority = domain.Priority(priority)
	return &todo, nil
}
