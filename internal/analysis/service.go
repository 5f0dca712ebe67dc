// Package analysis runs the priority engine over tasks taken either from a
// request or from storage.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

// Defaults are applied when an input leaves strategy or count unset.
type Defaults struct {
	Strategy    priority.Strategy
	Suggestions int
}

// Input selects the tasks and parameters of one call. When Tasks is empty
// the stored tasks are used.
type Input struct {
	Tasks    []task.Task
	Strategy string
	Count    int
}

// TaskProblem is a validation failure of one task in a request.
type TaskProblem struct {
	Index  int               `json:"index"`
	ID     task.ID           `json:"id,omitempty"`
	Fields []task.FieldError `json:"errors"`
	Err    error             `json:"-"`
}

// InvalidTasksError reports every invalid task of a request.
type InvalidTasksError struct {
	Problems []TaskProblem
}

func (e *InvalidTasksError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("task at index %d: %v", p.Index, p.Err))
	}
	return strings.Join(parts, "; ")
}

// Plan is the dependency-first ordering of a task set.
type Plan struct {
	Source priority.Source `json:"source"`
	Order  []task.ID       `json:"order"`
	Cycles [][]task.ID     `json:"cycles,omitempty"`
}

// Service wires the engine to storage.
type Service struct {
	repo     task.Repository
	engine   *priority.Engine
	defaults Defaults
}

// NewService creates a service. repo may be nil, in which case every input
// must carry its own tasks.
func NewService(repo task.Repository, engine *priority.Engine, defaults Defaults) *Service {
	if defaults.Suggestions <= 0 {
		defaults.Suggestions = priority.DefaultSuggestionCount
	}
	if !defaults.Strategy.Valid() {
		defaults.Strategy = priority.DefaultStrategy
	}
	return &Service{repo: repo, engine: engine, defaults: defaults}
}

// Defaults returns the configured defaults.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Analyze scores and ranks all tasks.
func (s *Service) Analyze(ctx context.Context, in Input) (*priority.AnalysisResult, error) {
	req, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Analyze(req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("strategy", res.Strategy.String()).Str("source", string(res.Source)).Int("tasks", res.TotalTasks).Msg("tasks analyzed")
	return res, nil
}

// Suggest returns the top ranked tasks.
func (s *Service) Suggest(ctx context.Context, in Input) (*priority.SuggestionResult, error) {
	req, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	count := in.Count
	if count <= 0 {
		count = s.defaults.Suggestions
	}
	res, err := s.engine.Suggest(req, count)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("strategy", res.Strategy.String()).Int("suggestions", res.SuggestionCount).Msg("tasks suggested")
	return res, nil
}

// Compare ranks the tasks under every strategy.
func (s *Service) Compare(ctx context.Context, in Input) ([]*priority.AnalysisResult, error) {
	req, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.engine.Compare(ctx, req)
}

// Order returns the tasks in dependency-first order. When the graph has
// cycles the order is empty and Cycles lists them.
func (s *Service) Order(ctx context.Context, in Input) (*Plan, error) {
	req, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(req.Tasks) == 0 {
		return nil, priority.NoTasks()
	}
	graph := priority.NewGraph(task.Normalize(req.Tasks))
	plan := &Plan{Source: req.Source}
	order, err := graph.Order()
	switch {
	case errors.Is(err, priority.ErrCycle):
		plan.Cycles = graph.Cycles()
	case err != nil:
		return nil, err
	default:
		plan.Order = order
	}
	return plan, nil
}

// StoredCount returns the number of stored tasks, zero without storage.
func (s *Service) StoredCount(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.Count(ctx)
}

func (s *Service) request(ctx context.Context, in Input) (priority.Request, error) {
	strategy := strings.TrimSpace(in.Strategy)
	if strategy == "" {
		strategy = s.defaults.Strategy.String()
	}
	if _, err := priority.ParseStrategy(strategy); err != nil {
		return priority.Request{}, err
	}

	if len(in.Tasks) > 0 {
		if err := validate(in.Tasks); err != nil {
			return priority.Request{}, err
		}
		return priority.Request{Tasks: in.Tasks, Strategy: strategy, Source: priority.SourceRequest}, nil
	}

	req := priority.Request{Strategy: strategy, Source: priority.SourceDatabase}
	if s.repo == nil {
		return req, nil
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return priority.Request{}, fmt.Errorf("load tasks: %w", err)
	}
	req.Tasks = stored
	return req, nil
}

func validate(tasks []task.Task) error {
	errs := task.ValidateSet(tasks)
	if len(errs) == 0 {
		return nil
	}
	verr := &InvalidTasksError{}
	for idx, err := range errs {
		p := TaskProblem{Index: idx, ID: tasks[idx].ID, Err: err}
		var fields *task.ValidationError
		if errors.As(err, &fields) {
			p.Fields = fields.Fields
		}
		verr.Problems = append(verr.Problems, p)
	}
	sort.Slice(verr.Problems, func(i, j int) bool { return verr.Problems[i].Index < verr.Problems[j].Index })
	return verr
}
