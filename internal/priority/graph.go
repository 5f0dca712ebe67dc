package priority

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gammazero/toposort"

	"github.com/metalagman/triage/internal/task"
)

// Graph is the dependency graph of one task set. Nodes are stored in an
// arena indexed by first appearance; an edge from A to B means A depends on B.
// Dependencies on ids outside the set are dropped.
type Graph struct {
	ids        []task.ID
	index      map[task.ID]int
	deps       [][]int
	dependents [][]int
	selfLoop   []bool
	cyclic     []bool
	cycles     [][]int
}

// NewGraph builds the graph for tasks. The slice is not modified. When an id
// appears more than once the first task with it owns the node.
func NewGraph(tasks []task.Task) *Graph {
	g := &Graph{index: make(map[task.ID]int, len(tasks))}
	owners := make([]int, 0, len(tasks))
	for i, t := range tasks {
		if _, dup := g.index[t.ID]; dup {
			continue
		}
		g.index[t.ID] = len(g.ids)
		g.ids = append(g.ids, t.ID)
		owners = append(owners, i)
	}

	n := len(g.ids)
	g.deps = make([][]int, n)
	g.dependents = make([][]int, n)
	g.selfLoop = make([]bool, n)
	for node, pos := range owners {
		seen := make(map[int]struct{}, len(tasks[pos].Dependencies))
		for _, dep := range tasks[pos].Dependencies {
			target, ok := g.index[dep]
			if !ok {
				continue
			}
			if _, ok := seen[target]; ok {
				continue
			}
			seen[target] = struct{}{}
			g.deps[node] = append(g.deps[node], target)
			if target == node {
				g.selfLoop[node] = true
				continue
			}
			g.dependents[target] = append(g.dependents[target], node)
		}
	}
	g.detectCycles()
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id task.ID) bool {
	_, ok := g.index[id]
	return ok
}

// Dependencies returns the in-set ids that id depends on.
func (g *Graph) Dependencies(id task.ID) []task.ID {
	node, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.toIDs(g.deps[node])
}

// Dependents returns the ids of tasks that depend on id, excluding id itself.
func (g *Graph) Dependents(id task.ID) []task.ID {
	node, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.toIDs(g.dependents[node])
}

// BlocksCount returns how many other tasks in the set depend directly on id.
func (g *Graph) BlocksCount(id task.ID) int {
	node, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.dependents[node])
}

// InCycle reports whether id takes part in a circular dependency chain,
// including a task that depends on itself.
func (g *Graph) InCycle(id task.ID) bool {
	node, ok := g.index[id]
	if !ok {
		return false
	}
	return g.cyclic[node]
}

// Cycles returns every circular dependency group. Members of a group are
// listed in arena order and groups are ordered by their first member.
func (g *Graph) Cycles() [][]task.ID {
	out := make([][]task.ID, 0, len(g.cycles))
	for _, c := range g.cycles {
		out = append(out, g.toIDs(c))
	}
	return out
}

// Order returns the ids so that every task comes after the tasks it depends
// on. It fails with ErrCycle when no such order exists.
func (g *Graph) Order() ([]task.ID, error) {
	if cycles := g.Cycles(); len(cycles) > 0 {
		groups := make([]string, 0, len(cycles))
		for _, c := range cycles {
			groups = append(groups, "["+joinIDs(c)+"]")
		}
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(groups, "; "))
	}

	var edges []toposort.Edge
	for node, id := range g.ids {
		if len(g.deps[node]) == 0 {
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, dep := range g.deps[node] {
			edges = append(edges, toposort.Edge{g.ids[dep], id})
		}
	}
	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	out := make([]task.ID, 0, len(g.ids))
	for _, v := range sorted {
		if v == nil {
			continue
		}
		out = append(out, v.(task.ID))
	}
	return out, nil
}

// detectCycles runs Tarjan's strongly connected components algorithm. A node
// is cyclic when its component has more than one member or it has a self loop.
func (g *Graph) detectCycles() {
	n := len(g.ids)
	g.cyclic = make([]bool, n)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack []int
		next  int
	)

	var connect func(v int)
	connect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.deps[v] {
			switch {
			case index[w] < 0:
				connect(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var component []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) == 1 && !g.selfLoop[v] {
			return
		}
		sort.Ints(component)
		for _, w := range component {
			g.cyclic[w] = true
		}
		g.cycles = append(g.cycles, component)
	}

	for v := 0; v < n; v++ {
		if index[v] < 0 {
			connect(v)
		}
	}
	sort.Slice(g.cycles, func(i, j int) bool { return g.cycles[i][0] < g.cycles[j][0] })
}

func (g *Graph) toIDs(nodes []int) []task.ID {
	out := make([]task.ID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, g.ids[n])
	}
	return out
}

func joinIDs(ids []task.ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}
