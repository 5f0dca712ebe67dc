package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const taskColumns = `id, title, due_date, estimated_hours, importance, dependencies_json, created_at, updated_at`

// Store manages task persistence in SQLite.
type Store struct {
	db *sql.DB
}

var _ Repository = (*Store)(nil)

// NewStore creates a task store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// List returns all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
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
func (s *Store) Get(ctx context.Context, id ID) (Task, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return Task{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, rowID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Task{}, err
	}
	return t, nil
}

// Create validates and inserts a task.
func (s *Store) Create(ctx context.Context, t Task) (Task, error) {
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return insertTask(ctx, s.db, t)
}

// CreateMany inserts all tasks in a single transaction. Nothing is written if
// any task is invalid.
func (s *Store) CreateMany(ctx context.Context, tasks []Task) ([]Task, error) {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("task at index %d: %w", i, err)
		}
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin create tasks: %w", err)
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		created, err := insertTask(ctx, tx, t)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		out = append(out, created)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create tasks: %w", err)
	}
	return out, nil
}

// Update applies a partial update inside a transaction and returns the
// stored result.
func (s *Store) Update(ctx context.Context, id ID, patch Patch) (Task, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return Task{}, err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return Task{}, fmt.Errorf("begin update task: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, rowID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	next.UpdatedAt = now()
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET title=?, due_date=?, estimated_hours=?, importance=?, dependencies_json=?, updated_at=? WHERE id=?`,
		next.Title, next.DueDate.String(), next.EstimatedHours, next.Importance, deps, next.UpdatedAt, rowID)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return Task{}, fmt.Errorf("commit update task: %w", err)
	}
	return next, nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id ID) error {
	rowID, err := parseRowID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, rowID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectRow(res, id)
}

// DeleteAll removes every task and reports how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func insertTask(ctx context.Context, db execer, t Task) (Task, error) {
	t = t.Clone()
	t.Dependencies = dedupe(t.Dependencies)
	deps, err := marshalDeps(t.Dependencies)
	if err != nil {
		return Task{}, err
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	res, err := db.ExecContext(ctx, `INSERT INTO tasks(title, due_date, estimated_hours, importance, dependencies_json, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`, t.Title, t.DueDate.String(), t.EstimatedHours, t.Importance, deps, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, fmt.Errorf("read task id: %w", err)
	}
	t.ID = ID(strconv.FormatInt(id, 10))
	return t, nil
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t       Task
		id      int64
		due     string
		depsRaw string
	)
	if err := row.Scan(&id, &t.Title, &due, &t.EstimatedHours, &t.Importance, &depsRaw, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.ID = ID(strconv.FormatInt(id, 10))
	date, err := ParseDate(due)
	if err != nil {
		return Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	t.DueDate = date
	deps, err := unmarshalDeps(depsRaw)
	if err != nil {
		return Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	t.Dependencies = deps
	return t, nil
}

func marshalDeps(deps []ID) (string, error) {
	if deps == nil {
		deps = []ID{}
	}
	raw, err := json.Marshal(deps)
	if err != nil {
		return "", fmt.Errorf("marshal dependencies: %w", err)
	}
	return string(raw), nil
}

func unmarshalDeps(raw string) ([]ID, error) {
	deps := []ID{}
	if raw == "" {
		return deps, nil
	}
	if err := json.Unmarshal([]byte(raw), &deps); err != nil {
		return nil, fmt.Errorf("parse dependencies: %w", err)
	}
	return deps, nil
}

// parseRowID maps an id onto the integer primary key. Non-numeric ids cannot
// exist in storage and are reported as not found.
func parseRowID(id ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

func expectRow(res sql.Result, id ID) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
