package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/tracker/internal/domain"
	"example.com/tracker/internal/events"
	"example.com/tracker/internal/observability"
)

const habitColumns = `habit_id, name, description, frequency, streak, last_checkin, created_at, updated_at`

// Create persists a new habit.
func (r *Habits) Create(ctx context.Context, habit domain.Habit) error {
	const stmt = `INSERT INTO habits (habit_id, name, description, frequency, streak, last_checkin, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := r.pool.Exec(ctx, stmt,
		habit.ID,
		habit.Name,
		nullIfEmpty(habit.Description),
		string(habit.Frequency),
		habit.Streak,
		habit.LastCheckIn,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	return err
}

// Get retrieves a habit with its completion history, or nil when absent.
func (r *Habits) Get(ctx context.Context, habitID string) (*domain.Habit, error) {
	const query = `SELECT ` + habitColumns + ` FROM habits WHERE habit_id=$1`

	row := r.pool.QueryRow(ctx, query, habitID)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	habit.Completions, err = r.loadCompletions(ctx, r.pool, habitID)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// List returns all habits with completions, newest-created first.
func (r *Habits) List(ctx context.Context) ([]domain.Habit, error) {
	const query = `SELECT ` + habitColumns + ` FROM habits ORDER BY created_at DESC, habit_id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := make([]domain.Habit, 0)
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, *habit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range habits {
		habits[i].Completions, err = r.loadCompletions(ctx, r.pool, habits[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return habits, nil
}

// Update overwrites a habit's mutable fields, returning nil when absent.
func (r *Habits) Update(ctx context.Context, habit domain.Habit) (*domain.Habit, error) {
	const stmt = `UPDATE habits SET name=$2, description=$3, frequency=$4, updated_at=$5 WHERE habit_id=$1`

	tag, err := r.pool.Exec(ctx, stmt,
		habit.ID,
		habit.Name,
		nullIfEmpty(habit.Description),
		string(habit.Frequency),
		habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.Get(ctx, habit.ID)
}

// Delete removes a habit; completions cascade.
func (r *Habits) Delete(ctx context.Context, habitID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM habits WHERE habit_id=$1`, habitID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CheckIn performs the check-in as a single transaction: the habit row is
// locked, the same-day guard evaluated, the streak advanced, and the
// completion, habit update, and outbox event committed together. A unique
// index on (habit_id, day) backstops the one-per-day invariant under
// concurrent requests.
func (r *Habits) CheckIn(ctx context.Context, habitID string, now time.Time) (*domain.Habit, error) {
	today := domain.DayStart(now)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const lockQuery = `SELECT ` + habitColumns + ` FROM habits WHERE habit_id=$1 FOR UPDATE`
	habit, err := scanHabit(tx.QueryRow(ctx, lockQuery, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM habit_completions WHERE habit_id=$1 AND day=$2)`,
		habitID, today,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyCheckedIn
	}

	newStreak := domain.AdvanceStreak(habit.LastCheckIn, habit.Streak, today)

	if _, err := tx.Exec(ctx,
		`INSERT INTO habit_completions (habit_id, day, completed, created_at) VALUES ($1,$2,TRUE,$3)`,
		habitID, today, now,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyCheckedIn
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE habits SET streak=$2, last_checkin=$3, updated_at=$4 WHERE habit_id=$1`,
		habitID, newStreak, today, now,
	); err != nil {
		return nil, err
	}

	if err := insertOutbox(ctx, tx, "habit", habitID, "habit.checked_in", events.HabitCheckedIn{
		HabitID:    habitID,
		Name:       habit.Name,
		Day:        today,
		Streak:     newStreak,
		OccurredAt: now,
	}); err != nil {
		return nil, err
	}

	// Read the history inside the transaction so a failure here rolls the
	// check-in back rather than reporting a committed one as failed.
	completions, err := r.loadCompletions(ctx, tx, habitID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	observability.RecordCheckIn(newStreak == 1 && habit.LastCheckIn != nil)

	habit.Streak = newStreak
	habit.LastCheckIn = &today
	habit.UpdatedAt = now
	habit.Completions = completions
	return habit, nil
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Habits) loadCompletions(ctx context.Context, q querier, habitID string) ([]domain.Completion, error) {
	const query = `SELECT day, completed FROM habit_completions WHERE habit_id=$1 ORDER BY day`

	rows, err := q.Query(ctx, query, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make([]domain.Completion, 0)
	for rows.Next() {
		var c domain.Completion
		if err := rows.Scan(&c.Date, &c.Completed); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func scanHabit(row pgx.Row) (*domain.Habit, error) {
	var (
		habit       domain.Habit
		description *string
		frequency   string
	)
	if err := row.Scan(&habit.ID, &habit.Name, &description, &frequency, &habit.Streak, &habit.LastCheckIn, &habit.CreatedAt, &habit.UpdatedAt); err != nil {
		return nil, err
	}
	if description != nil {
		habit.Description = *description
	}
	habit.Frequency = domain.Frequency(frequency)
	return &habit, nil
}
