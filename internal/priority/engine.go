// Package priority scores and ranks tasks. An Engine is stateless: every call
// works on a private copy of its input, builds its own dependency graph and
// may run concurrently with other calls.
package priority

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/metalagman/triage/internal/task"
)

// DefaultSuggestionCount is used when a suggestion count is missing or not
// positive.
const DefaultSuggestionCount = 3

// Source tells where the analyzed tasks came from.
type Source string

const (
	SourceRequest  Source = "request"
	SourceDatabase Source = "database"
)

// Request is the input of one engine call.
type Request struct {
	Tasks    []task.Task
	Strategy string
	Source   Source
}

// AnalysisResult is every task of a request scored and ranked.
type AnalysisResult struct {
	Strategy   Strategy     `json:"strategy"`
	Source     Source       `json:"source"`
	TotalTasks int          `json:"total_tasks"`
	Tasks      []ScoredTask `json:"tasks"`
}

// SuggestionResult is the top of the ranking with recommendations.
type SuggestionResult struct {
	Strategy        Strategy     `json:"strategy"`
	Source          Source       `json:"source"`
	TotalTasks      int          `json:"total_tasks"`
	SuggestionCount int          `json:"suggestion_count"`
	Suggestions     []ScoredTask `json:"suggestions"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used to determine today's date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the time zone in which today's date is taken.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Engine scores tasks.
type Engine struct {
	now func() time.Time
	loc *time.Location
}

// NewEngine creates an engine using the wall clock in the local time zone
// unless overridden by options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the evaluation date.
func (e *Engine) Today() task.Date {
	return task.DateOf(e.now().In(e.loc))
}

// Analyze scores every task and returns them ordered by descending priority.
// Tasks with equal scores keep their input order.
func (e *Engine) Analyze(req Request) (*AnalysisResult, error) {
	strategy, err := ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	return e.analyze(req, strategy, e.Today())
}

// Suggest returns the count highest ranked tasks. A count that is not
// positive falls back to DefaultSuggestionCount; the result is bounded by
// the number of tasks.
func (e *Engine) Suggest(req Request, count int) (*SuggestionResult, error) {
	res, err := e.Analyze(req)
	if err != nil {
		return nil, err
	}
	n := ClampCount(count, len(res.Tasks))
	top := res.Tasks[:n]
	for i := range top {
		top[i].Rank = i + 1
		top[i].Recommendation = recommend(top[i], i+1)
	}
	return &SuggestionResult{
		Strategy:        res.Strategy,
		Source:          res.Source,
		TotalTasks:      res.TotalTasks,
		SuggestionCount: n,
		Suggestions:     top,
	}, nil
}

// Compare analyzes the request under every built-in strategy concurrently.
// Results are in table order. The request strategy is ignored.
func (e *Engine) Compare(ctx context.Context, req Request) ([]*AnalysisResult, error) {
	if len(req.Tasks) == 0 {
		return nil, NoTasks()
	}
	today := e.Today()
	strategies := Strategies()
	out := make([]*AnalysisResult, len(strategies))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.analyze(req, s, today)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) analyze(req Request, strategy Strategy, today task.Date) (*AnalysisResult, error) {
	if len(req.Tasks) == 0 {
		return nil, NoTasks()
	}
	tasks := task.Normalize(req.Tasks)
	graph := NewGraph(tasks)
	weights := strategy.Weights()

	scored := make([]ScoredTask, len(tasks))
	for i, t := range tasks {
		scored[i] = scoreTask(t, today, graph, weights)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})

	source := req.Source
	if source == "" {
		source = SourceRequest
	}
	return &AnalysisResult{
		Strategy:   strategy,
		Source:     source,
		TotalTasks: len(scored),
		Tasks:      scored,
	}, nil
}

// ClampCount bounds a requested suggestion count to [1, total]. Counts that
// are not positive fall back to DefaultSuggestionCount first.
func ClampCount(count, total int) int {
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	if count > total {
		count = total
	}
	if count < 1 {
		count = 1
	}
	return count
}
