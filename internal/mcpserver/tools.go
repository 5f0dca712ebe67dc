package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

// taskInput is a task supplied inline by the client.
type taskInput struct {
	ID             string   `json:"id,omitempty" jsonschema:"Task id, defaults to the 1-based position in the list"`
	Title          string   `json:"title" jsonschema:"Short task title"`
	DueDate        string   `json:"due_date" jsonschema:"Due date as YYYY-MM-DD"`
	EstimatedHours float64  `json:"estimated_hours" jsonschema:"Estimated effort in hours, greater than 0"`
	Importance     int      `json:"importance" jsonschema:"Importance from 1 to 10"`
	Dependencies   []string `json:"dependencies,omitempty" jsonschema:"Ids of tasks that must be done first"`
}

type analyzeInput struct {
	Tasks    []taskInput `json:"tasks,omitempty" jsonschema:"Tasks to analyze, stored tasks are used when omitted"`
	Strategy string      `json:"strategy,omitempty" jsonschema:"smart_balance, fastest_wins, high_impact or deadline_driven"`
}

type suggestInput struct {
	Tasks    []taskInput `json:"tasks,omitempty" jsonschema:"Tasks to choose from, stored tasks are used when omitted"`
	Strategy string      `json:"strategy,omitempty" jsonschema:"smart_balance, fastest_wins, high_impact or deadline_driven"`
	Count    int         `json:"count,omitempty" jsonschema:"Number of suggestions, defaults to the configured count"`
}

type orderInput struct {
	Tasks []taskInput `json:"tasks,omitempty" jsonschema:"Tasks to order, stored tasks are used when omitted"`
}

type scoredTask struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	DueDate               string   `json:"due_date"`
	EstimatedHours        float64  `json:"estimated_hours"`
	Importance            int      `json:"importance"`
	Dependencies          []string `json:"dependencies"`
	PriorityScore         float64  `json:"priority_score"`
	UrgencyScore          float64  `json:"urgency_score"`
	ImportanceScore       float64  `json:"importance_score"`
	EffortScore           float64  `json:"effort_score"`
	DependencyScore       float64  `json:"dependency_score"`
	BlocksCount           int      `json:"blocks_count"`
	Explanation           string   `json:"explanation"`
	HasCircularDependency bool     `json:"has_circular_dependency"`
	Rank                  int      `json:"rank,omitempty"`
	Recommendation        string   `json:"recommendation,omitempty"`
}

type analyzeOutput struct {
	Strategy   string       `json:"strategy"`
	Source     string       `json:"source"`
	TotalTasks int          `json:"total_tasks"`
	Tasks      []scoredTask `json:"tasks"`
}

type suggestOutput struct {
	Strategy        string       `json:"strategy"`
	Source          string       `json:"source"`
	TotalTasks      int          `json:"total_tasks"`
	SuggestionCount int          `json:"suggestion_count"`
	Suggestions     []scoredTask `json:"suggestions"`
}

type strategyEntry struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Urgency     float64 `json:"urgency"`
	Importance  float64 `json:"importance"`
	Effort      float64 `json:"effort"`
	Dependency  float64 `json:"dependencies"`
}

type strategiesOutput struct {
	Default    string          `json:"default"`
	Strategies []strategyEntry `json:"strategies"`
}

type orderOutput struct {
	Source string     `json:"source"`
	Order  []string   `json:"order"`
	Cycles [][]string `json:"cycles"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_tasks",
		Description: "Score and rank tasks by priority under a weighting strategy",
	}, s.analyzeTasks)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "suggest_tasks",
		Description: "Recommend the top tasks to work on next",
	}, s.suggestTasks)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_strategies",
		Description: "List the available weighting strategies",
	}, s.listStrategies)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "dependency_order",
		Description: "Order tasks so that every task comes after its dependencies",
	}, s.dependencyOrder)
}

func (s *Server) analyzeTasks(ctx context.Context, _ *mcp.CallToolRequest, in analyzeInput) (*mcp.CallToolResult, analyzeOutput, error) {
	tasks, err := toTasks(in.Tasks)
	if err != nil {
		return nil, analyzeOutput{}, err
	}
	res, err := s.svc.Analyze(ctx, analysis.Input{Tasks: tasks, Strategy: in.Strategy})
	if err != nil {
		return nil, analyzeOutput{}, err
	}
	return nil, analyzeOutput{
		Strategy:   res.Strategy.String(),
		Source:     string(res.Source),
		TotalTasks: res.TotalTasks,
		Tasks:      fromScored(res.Tasks),
	}, nil
}

func (s *Server) suggestTasks(ctx context.Context, _ *mcp.CallToolRequest, in suggestInput) (*mcp.CallToolResult, suggestOutput, error) {
	tasks, err := toTasks(in.Tasks)
	if err != nil {
		return nil, suggestOutput{}, err
	}
	res, err := s.svc.Suggest(ctx, analysis.Input{Tasks: tasks, Strategy: in.Strategy, Count: in.Count})
	if err != nil {
		return nil, suggestOutput{}, err
	}
	return nil, suggestOutput{
		Strategy:        res.Strategy.String(),
		Source:          string(res.Source),
		TotalTasks:      res.TotalTasks,
		SuggestionCount: res.SuggestionCount,
		Suggestions:     fromScored(res.Suggestions),
	}, nil
}

func (s *Server) listStrategies(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, strategiesOutput, error) {
	out := strategiesOutput{Default: s.svc.Defaults().Strategy.String()}
	for _, info := range priority.Catalog() {
		out.Strategies = append(out.Strategies, strategyEntry{
			Name:        info.Name,
			Description: info.Description,
			Urgency:     info.Weights.Urgency,
			Importance:  info.Weights.Importance,
			Effort:      info.Weights.Effort,
			Dependency:  info.Weights.Dependency,
		})
	}
	return nil, out, nil
}

func (s *Server) dependencyOrder(ctx context.Context, _ *mcp.CallToolRequest, in orderInput) (*mcp.CallToolResult, orderOutput, error) {
	tasks, err := toTasks(in.Tasks)
	if err != nil {
		return nil, orderOutput{}, err
	}
	plan, err := s.svc.Order(ctx, analysis.Input{Tasks: tasks})
	if err != nil {
		return nil, orderOutput{}, err
	}
	out := orderOutput{Source: string(plan.Source), Order: idStrings(plan.Order), Cycles: [][]string{}}
	for _, c := range plan.Cycles {
		out.Cycles = append(out.Cycles, idStrings(c))
	}
	return nil, out, nil
}

func toTasks(in []taskInput) ([]task.Task, error) {
	out := make([]task.Task, 0, len(in))
	for i, t := range in {
		var due task.Date
		if err := due.UnmarshalText([]byte(t.DueDate)); err != nil {
			return nil, fmt.Errorf("task at index %d: %w", i, err)
		}
		deps := make([]task.ID, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			deps = append(deps, task.ID(d))
		}
		out = append(out, task.Task{
			ID:             task.ID(t.ID),
			Title:          t.Title,
			DueDate:        due,
			EstimatedHours: t.EstimatedHours,
			Importance:     t.Importance,
			Dependencies:   deps,
		})
	}
	return out, nil
}

func fromScored(in []priority.ScoredTask) []scoredTask {
	out := make([]scoredTask, 0, len(in))
	for _, st := range in {
		out = append(out, scoredTask{
			ID:                    st.ID.String(),
			Title:                 st.Title,
			DueDate:               st.DueDate.String(),
			EstimatedHours:        st.EstimatedHours,
			Importance:            st.Importance,
			Dependencies:          idStrings(st.Dependencies),
			PriorityScore:         st.PriorityScore,
			UrgencyScore:          st.Breakdown.Urgency,
			ImportanceScore:       st.Breakdown.Importance,
			EffortScore:           st.Breakdown.Effort,
			DependencyScore:       st.Breakdown.Dependency,
			BlocksCount:           st.Breakdown.BlocksCount,
			Explanation:           st.Explanation,
			HasCircularDependency: st.HasCircularDependency,
			Rank:                  st.Rank,
			Recommendation:        st.Recommendation,
		})
	}
	return out
}

func idStrings(ids []task.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
