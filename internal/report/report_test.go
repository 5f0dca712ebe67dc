package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

var today = time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)

func request() priority.Request {
	due := task.DateOf(today)
	return priority.Request{
		Source: priority.SourceRequest,
		Tasks: []task.Task{
			{ID: "1", Title: "ship release", DueDate: due, EstimatedHours: 2, Importance: 8},
			{ID: "2", Title: "write changelog", DueDate: due.AddDays(10), EstimatedHours: 1, Importance: 4, Dependencies: []task.ID{"1"}},
			{ID: "3", Title: "refactor", DueDate: due.AddDays(30), EstimatedHours: 12, Importance: 3, Dependencies: []task.ID{"4"}},
			{ID: "4", Title: "migrate", DueDate: due.AddDays(30), EstimatedHours: 6, Importance: 3, Dependencies: []task.ID{"3"}},
		},
	}
}

func engine() *priority.Engine {
	return priority.NewEngine(priority.WithClock(func() time.Time { return today }), priority.WithLocation(time.UTC))
}

func TestAnalysis(t *testing.T) {
	t.Parallel()

	res, err := engine().Analyze(request())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "smart_balance")
	assert.Contains(t, out, "(request, 4 tasks)")
	assert.Contains(t, out, "ship release")
	assert.Contains(t, out, "Due today")
	assert.Contains(t, out, "refactor "+cycleMarker)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("ship release")), bytes.Index(buf.Bytes(), []byte("refactor")))
}

func TestSuggestions(t *testing.T) {
	t.Parallel()

	res, err := engine().Suggest(request(), 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Suggestions(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "#1 ship release")
	assert.Contains(t, out, "#2 ")
	assert.Contains(t, out, "Recommended #1")
	assert.NotContains(t, out, "#3 ")
}

func TestComparison(t *testing.T) {
	t.Parallel()

	results, err := engine().Compare(t.Context(), request())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Comparison(&buf, results))
	out := buf.String()
	for _, name := range priority.StrategyNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "write changelog")

	buf.Reset()
	require.NoError(t, Comparison(&buf, nil))
	assert.Contains(t, buf.String(), "nothing to compare")
}

func TestPlan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Plan(&buf, &analysis.Plan{Source: priority.SourceDatabase, Order: []task.ID{"1", "2"}}))
	assert.Contains(t, buf.String(), " 1. 1")
	assert.Contains(t, buf.String(), " 2. 2")

	buf.Reset()
	require.NoError(t, Plan(&buf, &analysis.Plan{Cycles: [][]task.ID{{"3", "4"}}}))
	assert.Contains(t, buf.String(), "cycles prevent")
	assert.Contains(t, buf.String(), "3 → 4")
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Strategies(&buf, priority.HighImpact))
	out := buf.String()
	assert.Contains(t, out, "high_impact *")
	assert.NotContains(t, out, "smart_balance *")
	assert.Contains(t, out, "* default")
}

func TestTasks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Tasks(&buf, request().Tasks))
	assert.Contains(t, buf.String(), "write changelog")
	assert.Contains(t, buf.String(), "2025-09-20")

	buf.Reset()
	require.NoError(t, Tasks(&buf, nil))
	assert.Contains(t, buf.String(), "no tasks")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	res, err := engine().Suggest(request(), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "smart_balance", decoded["strategy"])
	assert.EqualValues(t, 1, decoded["suggestion_count"])
}

func TestScoreStyleBands(t *testing.T) {
	t.Parallel()

	assert.True(t, scoreStyle(9).GetBold())
	assert.False(t, scoreStyle(5).GetBold())
	assert.Equal(t, colorSuccess, scoreStyle(1).GetForeground())
}
