package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore manages task persistence in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PGStore)(nil)

// NewPGStore creates a Postgres-backed task store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// List returns all tasks, newest first.
func (s *PGStore) List(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	out := []Task{}
	for rows.Next() {
		t, err := scanPGTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// Get fetches a task by id.
func (s *PGStore) Get(ctx context.Context, id ID) (Task, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return Task{}, err
	}
	return s.get(ctx, s.pool, rowID)
}

// Create validates and inserts a task.
func (s *PGStore) Create(ctx context.Context, t Task) (Task, error) {
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return insertPGTask(ctx, s.pool, t)
}

// CreateMany inserts all tasks in a single transaction.
func (s *PGStore) CreateMany(ctx context.Context, tasks []Task) ([]Task, error) {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("task at index %d: %w", i, err)
		}
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create tasks: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		created, err := insertPGTask(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create tasks: %w", err)
	}
	return out, nil
}

// Update applies a partial update under a row lock.
func (s *PGStore) Update(ctx context.Context, id ID, patch Patch) (Task, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return Task{}, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("begin update task: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 FOR UPDATE`, rowID)
	current, err := scanPGTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Task{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return Task{}, err
	}
	deps, err := marshalDeps(next.Dependencies)
	if err != nil {
		return Task{}, err
	}
	var updatedAt time.Time
	err = tx.QueryRow(ctx, `UPDATE tasks SET title=$1, due_date=$2, estimated_hours=$3, importance=$4, dependencies_json=$5, updated_at=now()
		WHERE id=$6 RETURNING updated_at`,
		next.Title, next.DueDate.Time(), next.EstimatedHours, next.Importance, deps, rowID).Scan(&updatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Task{}, fmt.Errorf("commit update task: %w", err)
	}
	next.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return next, nil
}

// Delete removes a task.
func (s *PGStore) Delete(ctx context.Context, id ID) error {
	rowID, err := parseRowID(id)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, rowID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteAll removes every task and reports how many were deleted.
func (s *PGStore) DeleteAll(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored tasks.
func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PGStore) get(ctx context.Context, q pgQuerier, rowID int64) (Task, error) {
	t, err := scanPGTask(q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, rowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, fmt.Errorf("%w: %d", ErrNotFound, rowID)
		}
		return Task{}, err
	}
	return t, nil
}

func insertPGTask(ctx context.Context, q pgQuerier, t Task) (Task, error) {
	t = t.Clone()
	t.Dependencies = dedupe(t.Dependencies)
	deps, err := marshalDeps(t.Dependencies)
	if err != nil {
		return Task{}, err
	}
	var (
		id        int64
		createdAt time.Time
	)
	err = q.QueryRow(ctx, `INSERT INTO tasks(title, due_date, estimated_hours, importance, dependencies_json)
		VALUES($1, $2, $3, $4, $5) RETURNING id, created_at`,
		t.Title, t.DueDate.Time(), t.EstimatedHours, t.Importance, deps).Scan(&id, &createdAt)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.ID = ID(strconv.FormatInt(id, 10))
	t.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	t.UpdatedAt = t.CreatedAt
	return t, nil
}

func scanPGTask(row pgx.Row) (Task, error) {
	var (
		t         Task
		id        int64
		due       time.Time
		depsRaw   []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &t.Title, &due, &t.EstimatedHours, &t.Importance, &depsRaw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.ID = ID(strconv.FormatInt(id, 10))
	t.DueDate = NewDate(due.Year(), due.Month(), due.Day())
	deps, err := unmarshalDeps(string(depsRaw))
	if err != nil {
		return Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	t.Dependencies = deps
	t.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	t.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return t, nil
}
