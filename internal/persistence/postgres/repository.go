// Package postgres provides pgx-backed persistence for habits, todos, and
// the outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Habits is the Postgres-backed habit repository.
type Habits struct {
	pool *pgxpool.Pool
}

// NewHabits constructs a Habits repository.
func NewHabits(pool *pgxpool.Pool) *Habits {
	return &Habits{pool: pool}
}

// Todos is the Postgres-backed todo repository.
type Todos struct {
	pool *pgxpool.Pool
}

// NewTodos constructs a Todos repository.
func NewTodos(pool *pgxpool.Pool) *Todos {
	return &Todos{pool: pool}
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// insertOutbox records a domain event inside the caller's transaction.
func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		aggregateID,
		body,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic string
}

var eventCatalog = map[string]EventMetadata{
	"habit.checked_in": {Topic: "habit_events"},
	"todo.toggled":     {Topic: "todo_events"},
}
