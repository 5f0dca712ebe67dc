package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/triage/internal/task"
)

func node(id string, deps ...string) task.Task {
	t := task.Task{ID: task.ID(id), Title: "task " + id}
	for _, d := range deps {
		t.Dependencies = append(t.Dependencies, task.ID(d))
	}
	return t
}

func TestGraphCycleDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tasks  []task.Task
		cyclic []string
		clean  []string
	}{
		{
			name:   "three task cycle",
			tasks:  []task.Task{node("a", "b"), node("b", "c"), node("c", "a")},
			cyclic: []string{"a", "b", "c"},
		},
		{
			name:  "open chain",
			tasks: []task.Task{node("a", "b"), node("b", "c"), node("c")},
			clean: []string{"a", "b", "c"},
		},
		{
			name:   "self dependency",
			tasks:  []task.Task{node("a", "a"), node("b", "a")},
			cyclic: []string{"a"},
			clean:  []string{"b"},
		},
		{
			name:   "cycle reached through a side branch",
			tasks:  []task.Task{node("a", "b", "c"), node("b", "a"), node("c", "b")},
			cyclic: []string{"a", "b", "c"},
		},
		{
			name:   "tail into cycle",
			tasks:  []task.Task{node("x", "a"), node("a", "b"), node("b", "a")},
			cyclic: []string{"a", "b"},
			clean:  []string{"x"},
		},
		{
			name:  "diamond",
			tasks: []task.Task{node("a", "b", "c"), node("b", "d"), node("c", "d"), node("d")},
			clean: []string{"a", "b", "c", "d"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := NewGraph(tc.tasks)
			for _, id := range tc.cyclic {
				assert.True(t, g.InCycle(task.ID(id)), "expected %s in a cycle", id)
			}
			for _, id := range tc.clean {
				assert.False(t, g.InCycle(task.ID(id)), "expected %s outside cycles", id)
			}
		})
	}
}

func TestGraphBlocksCount(t *testing.T) {
	t.Parallel()

	g := NewGraph([]task.Task{
		node("1"),
		node("2", "1"),
		node("3", "1", "1", "missing"),
		node("4", "1", "2"),
		node("5", "5"),
	})

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, 3, g.BlocksCount("1"))
	assert.Equal(t, 1, g.BlocksCount("2"))
	assert.Equal(t, 0, g.BlocksCount("4"))
	assert.Equal(t, 0, g.BlocksCount("5"), "self dependency does not count as blocking")
	assert.Equal(t, 0, g.BlocksCount("missing"))
	assert.False(t, g.Has("missing"))

	assert.Equal(t, []task.ID{"1"}, g.Dependencies("3"))
	assert.Equal(t, []task.ID{"2", "3", "4"}, g.Dependents("1"))
	assert.Empty(t, g.Dependents("5"))
}

func TestGraphDuplicateIDs(t *testing.T) {
	t.Parallel()

	g := NewGraph([]task.Task{node("1"), node("1", "2"), node("2", "1")})
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.BlocksCount("1"))
	assert.Equal(t, 0, g.BlocksCount("2"))
	assert.False(t, g.InCycle("1"))
}

func TestGraphOrder(t *testing.T) {
	t.Parallel()

	tasks := []task.Task{
		node("deploy", "test", "build"),
		node("test", "build"),
		node("build", "fetch"),
		node("fetch"),
		node("docs", "ghost"),
	}
	order, err := NewGraph(tasks).Order()
	require.NoError(t, err)
	require.Len(t, order, len(tasks))

	pos := make(map[task.ID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, tk := range tasks {
		for _, dep := range tk.Dependencies {
			if _, ok := pos[dep]; !ok {
				continue
			}
			assert.Less(t, pos[dep], pos[tk.ID], "%s must come before %s", dep, tk.ID)
		}
	}
}

func TestGraphOrderCycle(t *testing.T) {
	t.Parallel()

	g := NewGraph([]task.Task{node("a", "b"), node("b", "a"), node("c")})
	_, err := g.Order()
	require.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), "[a, b]")
	assert.Equal(t, [][]task.ID{{"a", "b"}}, g.Cycles())
}

func TestGraphDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	tasks := []task.Task{node("a", "b", "b"), node("b", "a")}
	_ = NewGraph(tasks)
	assert.Equal(t, []task.ID{"b", "b"}, tasks[0].Dependencies)
}
