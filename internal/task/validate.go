package task

import (
	"fmt"
	"strings"
)

// MaxTitleLength bounds task titles.
const MaxTitleLength = 255

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a task record.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the record invariants. It returns a *ValidationError or nil.
func (t Task) Validate() error {
	verr := &ValidationError{}
	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		verr.add("title", "title is required")
	case len(title) > MaxTitleLength:
		verr.add("title", "title must be at most %d characters", MaxTitleLength)
	}
	if t.DueDate.IsZero() {
		verr.add("due_date", "due date is required")
	}
	if t.EstimatedHours <= 0 {
		verr.add("estimated_hours", "estimated hours must be greater than 0")
	}
	if t.Importance < 1 || t.Importance > 10 {
		verr.add("importance", "importance must be between 1 and 10")
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// ValidateSet validates every task and rejects duplicate ids. Errors are keyed
// by position in the slice.
func ValidateSet(tasks []Task) map[int]error {
	errs := make(map[int]error)
	seen := make(map[ID]int, len(tasks))
	for i, t := range tasks {
		err := t.Validate()
		if !t.ID.IsZero() {
			if first, dup := seen[t.ID]; dup {
				verr, ok := err.(*ValidationError)
				if !ok {
					verr = &ValidationError{}
				}
				verr.add("id", "duplicate id %s (first used at index %d)", t.ID, first)
				err = verr
			} else {
				seen[t.ID] = i
			}
		}
		if err != nil {
			errs[i] = err
		}
	}
	return errs
}
