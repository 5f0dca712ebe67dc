package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task id does not exist in storage.
var ErrNotFound = errors.New("task not found")

// Repository defines task persistence. Every read returns a fresh snapshot the
// caller owns.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id ID) (Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	CreateMany(ctx context.Context, tasks []Task) ([]Task, error)
	Update(ctx context.Context, id ID, patch Patch) (Task, error)
	Delete(ctx context.Context, id ID) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}
