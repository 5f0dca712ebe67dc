package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask() Task {
	return Task{
		Title:          "Ship release",
		DueDate:        NewDate(2025, time.July, 4),
		EstimatedHours: 4,
		Importance:     7,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Task)
		fields []string
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "blank title", mutate: func(t *Task) { t.Title = "   " }, fields: []string{"title"}},
		{name: "long title", mutate: func(t *Task) { t.Title = strings.Repeat("x", MaxTitleLength+1) }, fields: []string{"title"}},
		{name: "missing due date", mutate: func(t *Task) { t.DueDate = Date{} }, fields: []string{"due_date"}},
		{name: "zero hours", mutate: func(t *Task) { t.EstimatedHours = 0 }, fields: []string{"estimated_hours"}},
		{name: "importance too high", mutate: func(t *Task) { t.Importance = 11 }, fields: []string{"importance"}},
		{
			name:   "everything wrong",
			mutate: func(t *Task) { *t = Task{} },
			fields: []string{"title", "due_date", "estimated_hours", "importance"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tk := validTask()
			tc.mutate(&tk)
			err := tk.Validate()
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestValidateSet(t *testing.T) {
	t.Parallel()

	a := validTask()
	a.ID = "1"
	b := validTask()
	b.ID = "1"
	c := validTask()
	c.Importance = 0

	errs := ValidateSet([]Task{a, b, c, validTask(), validTask()})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[1].Error(), "duplicate id 1")
	assert.Contains(t, errs[2].Error(), "importance")
}
