package priority

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures.
type Kind string

const (
	KindInvalidStrategy  Kind = "invalid_strategy"
	KindNoTasksAvailable Kind = "no_tasks_available"
)

// Error is returned by the engine. Two errors match under errors.Is when
// their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	// ErrInvalidStrategy matches errors for unknown strategy names.
	ErrInvalidStrategy = &Error{Kind: KindInvalidStrategy, Message: "invalid strategy"}
	// ErrNoTasksAvailable matches errors for empty task sets.
	ErrNoTasksAvailable = &Error{Kind: KindNoTasksAvailable, Message: "no tasks available"}
)

// ErrCycle is returned by Graph.Order when the dependency graph has a cycle.
var ErrCycle = errors.New("dependency cycle")

func invalidStrategy(name string) error {
	return &Error{
		Kind:    KindInvalidStrategy,
		Message: fmt.Sprintf("invalid strategy %q, expected one of %s", name, strategyList()),
	}
}

// NoTasks returns the error reported for an empty task set.
func NoTasks() error {
	return &Error{
		Kind:    KindNoTasksAvailable,
		Message: "no tasks available for analysis, add tasks or provide them in the request",
	}
}
