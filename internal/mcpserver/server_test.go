package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/triage/internal/analysis"
	internaldb "github.com/metalagman/triage/internal/db"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

var today = time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T, repo task.Repository) *Server {
	t.Helper()
	engine := priority.NewEngine(priority.WithClock(func() time.Time { return today }), priority.WithLocation(time.UTC))
	return New(analysis.NewService(repo, engine, analysis.Defaults{}), "test")
}

func mcpClientSession(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()

	ss, err := srv.MCP().Connect(ctx, st, nil)
	require.NoError(t, err, "server connect")
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err, "client connect")
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s", name)
	return result
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError, "tool error: %s", errorText(result))
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func errorText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func sampleTasks() []any {
	return []any{
		map[string]any{
			"id":              "1",
			"title":           "ship release",
			"due_date":        "2025-09-10",
			"estimated_hours": 2,
			"importance":      8,
		},
		map[string]any{
			"id":              "2",
			"title":           "write changelog",
			"due_date":        "2025-09-20",
			"estimated_hours": 1,
			"importance":      4,
			"dependencies":    []any{"1"},
		},
	}
}

func TestToolsAreListed(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_tasks", "suggest_tasks", "list_strategies", "dependency_order"}, names)
}

func TestAnalyzeTasks(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))
	out := decode[analyzeOutput](t, callTool(t, cs, "analyze_tasks", map[string]any{
		"tasks":    sampleTasks(),
		"strategy": "deadline_driven",
	}))

	assert.Equal(t, "deadline_driven", out.Strategy)
	assert.Equal(t, "request", out.Source)
	assert.Equal(t, 2, out.TotalTasks)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "1", out.Tasks[0].ID)
	assert.Equal(t, 1, out.Tasks[0].BlocksCount)
	assert.Equal(t, "2025-09-10", out.Tasks[0].DueDate)
	assert.Contains(t, out.Tasks[0].Explanation, "Due today")
	assert.Equal(t, []string{"1"}, out.Tasks[1].Dependencies)
	assert.Zero(t, out.Tasks[0].Rank)
}

func TestSuggestTasks(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))
	out := decode[suggestOutput](t, callTool(t, cs, "suggest_tasks", map[string]any{
		"tasks": sampleTasks(),
		"count": 1,
	}))

	assert.Equal(t, "smart_balance", out.Strategy)
	assert.Equal(t, 1, out.SuggestionCount)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, 1, out.Suggestions[0].Rank)
	assert.Contains(t, out.Suggestions[0].Recommendation, "Recommended #1")
}

func TestSuggestTasksFromStorage(t *testing.T) {
	t.Parallel()

	database, err := internaldb.Open(filepath.Join(t.TempDir(), "triage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	store := task.NewStore(database)
	_, err = store.Create(context.Background(), task.Task{
		Title:          "stored",
		DueDate:        task.DateOf(today).AddDays(3),
		EstimatedHours: 1,
		Importance:     5,
	})
	require.NoError(t, err)

	cs := mcpClientSession(t, newServer(t, store))
	out := decode[suggestOutput](t, callTool(t, cs, "suggest_tasks", map[string]any{}))

	assert.Equal(t, "database", out.Source)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "stored", out.Suggestions[0].Title)
}

func TestListStrategies(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))
	out := decode[strategiesOutput](t, callTool(t, cs, "list_strategies", map[string]any{}))

	assert.Equal(t, "smart_balance", out.Default)
	require.Len(t, out.Strategies, 4)
	for _, s := range out.Strategies {
		assert.InDelta(t, 1.0, s.Urgency+s.Importance+s.Effort+s.Dependency, 1e-9, s.Name)
	}
}

func TestDependencyOrder(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))
	tasks := sampleTasks()
	tasks[0].(map[string]any)["dependencies"] = []any{"2"}

	cyclic := decode[orderOutput](t, callTool(t, cs, "dependency_order", map[string]any{"tasks": tasks}))
	assert.Empty(t, cyclic.Order)
	assert.Equal(t, [][]string{{"1", "2"}}, cyclic.Cycles)

	acyclic := decode[orderOutput](t, callTool(t, cs, "dependency_order", map[string]any{"tasks": sampleTasks()}))
	assert.Equal(t, []string{"1", "2"}, acyclic.Order)
	assert.Empty(t, acyclic.Cycles)
}

func TestToolErrors(t *testing.T) {
	t.Parallel()

	cs := mcpClientSession(t, newServer(t, nil))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{
			name: "unknown strategy",
			tool: "analyze_tasks",
			args: map[string]any{"tasks": sampleTasks(), "strategy": "yolo"},
			want: "invalid strategy",
		},
		{
			name: "no tasks",
			tool: "suggest_tasks",
			args: map[string]any{},
			want: "no tasks available",
		},
		{
			name: "bad date",
			tool: "analyze_tasks",
			args: map[string]any{"tasks": []any{map[string]any{
				"title": "x", "due_date": "tomorrow", "estimated_hours": 1, "importance": 5,
			}}},
			want: "task at index 0",
		},
		{
			name: "invalid importance",
			tool: "analyze_tasks",
			args: map[string]any{"tasks": []any{map[string]any{
				"title": "x", "due_date": "2025-09-11", "estimated_hours": 1, "importance": 11,
			}}},
			want: "importance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, cs, tt.tool, tt.args)
			require.True(t, result.IsError)
			assert.Contains(t, errorText(result), tt.want)
		})
	}
}

func TestHandlerServesStreamableHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newServer(t, nil).Handler())
	t.Cleanup(srv.Close)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{
		Endpoint:   srv.URL,
		HTTPClient: http.DefaultClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	out := decode[strategiesOutput](t, callTool(t, cs, "list_strategies", map[string]any{}))
	assert.Len(t, out.Strategies, 4)
}
