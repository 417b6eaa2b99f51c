//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/tracker/internal/domain"
)

func TestCheckInIsAtomicAndIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewHabits(pool)

	habit := domain.Habit{
		ID:        uuid.NewString(),
		Name:      "Read",
		Frequency: domain.FrequencyDaily,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, habit))

	now := time.Now()

	checked, err := repo.CheckIn(ctx, habit.ID, now)
	require.NoError(t, err)
	require.NotNil(t, checked)
	require.Equal(t, 1, checked.Streak)
	require.Len(t, checked.Completions, 1)
	require.NotNil(t, checked.LastCheckIn)

	// Same-day duplicate must surface as a conflict and leave state intact.
	_, err = repo.CheckIn(ctx, habit.ID, now)
	require.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)

	stored, err := repo.Get(ctx, habit.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Streak)
	require.Len(t, stored.Completions, 1)

	// An outbox row is written in the same transaction as the check-in.
	var events int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type='habit.checked_in' AND aggregate_id=$1`,
		habit.ID).Scan(&events))
	require.Equal(t, 1, events)
}

func TestCheckInReturnsFullHistoryFromItsTransaction(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewHabits(pool)

	habit := domain.Habit{
		ID:        uuid.NewString(),
		Name:      "Stretch",
		Frequency: domain.FrequencyDaily,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, habit))

	// Seed yesterday's check-in directly so today's increments the streak.
	yesterday := domain.DayStart(time.Now().AddDate(0, 0, -1))
	_, err := pool.Exec(ctx,
		`INSERT INTO habit_completions (habit_id, day, completed) VALUES ($1,$2,TRUE)`,
		habit.ID, yesterday)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`UPDATE habits SET streak=1, last_checkin=$2 WHERE habit_id=$1`,
		habit.ID, yesterday)
	require.NoError(t, err)

	checked, err := repo.CheckIn(ctx, habit.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, checked.Streak)
	require.Len(t, checked.Completions, 2)

	stored, err := repo.Get(ctx, habit.ID)
	require.NoError(t, err)
	require.Equal(t, checked.Streak, stored.Streak)
	require.Len(t, stored.Completions, 2)
}

func TestConcurrentCheckInsYieldSingleCompletion(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewHabits(pool)

	habit := domain.Habit{
		ID:        uuid.NewString(),
		Name:      "Run",
		Frequency: domain.FrequencyDaily,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, habit))

	now := time.Now()
	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := repo.CheckIn(ctx, habit.ID, now)
			errs <- err
		}()
	}

	succeeded := 0
	for i := 0; i < workers; i++ {
		err := <-errs
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
		}
	}
	require.Equal(t, 1, succeeded)

	stored, err := repo.Get(ctx, habit.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Streak)
	require.Len(t, stored.Completions, 1)
}

func TestHabitCRUDRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewHabits(pool)

	habit := domain.Habit{
		ID:          uuid.NewString(),
		Name:        "Meditate",
		Description: "10 minutes",
		Frequency:   domain.FrequencyWeekly,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, habit))

	stored, err := repo.Get(ctx, habit.ID)
	require.NoError(t, err)
	require.Equal(t, habit.Name, stored.Name)
	require.Equal(t, habit.Description, stored.Description)
	require.Equal(t, domain.FrequencyWeekly, stored.Frequency)

	stored.Name = "Meditate daily"
	stored.Frequency = domain.FrequencyDaily
	updated, err := repo.Update(ctx, *stored)
	require.NoError(t, err)
	require.Equal(t, "Meditate daily", updated.Name)

	habits, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, habits, 1)

	deleted, err := repo.Delete(ctx, habit.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	missing, err := repo.Get(ctx, habit.ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	deletedAgain, err := repo.Delete(ctx, habit.ID)
	require.NoError(t, err)
	require.False(t, deletedAgain)
}

func TestTodoTogglePersistsAndEmitsEvent(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewTodos(pool)

	todo := domain.Todo{
		ID:        uuid.NewString(),
		Title:     "Ship release",
		Priority:  domain.PriorityHigh,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, todo))

	toggled, err := repo.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	toggled, err = repo.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	require.False(t, toggled.Completed)

	var events int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type='todo.toggled' AND aggregate_id=$1`,
		todo.ID).Scan(&events))
	require.Equal(t, 2, events)
}

func TestTodoListOrdersByPriorityRank(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t, ctx)

	repo := NewTodos(pool)

	for _, p := range []domain.Priority{domain.PriorityLow, domain.PriorityHigh, domain.PriorityMedium} {
		require.NoError(t, repo.Create(ctx, domain.Todo{
			ID:        uuid.NewString(),
			Title:     string(p) + " task",
			Priority:  p,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}))
	}

	todos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	require.Equal(t, domain.PriorityHigh, todos[0].Priority)
	require.Equal(t, domain.PriorityMedium, todos[1].Priority)
	require.Equal(t, domain.PriorityLow, todos[2].Priority)
}

func newTestPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("tracker"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
