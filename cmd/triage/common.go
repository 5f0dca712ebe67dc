package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/app"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

var stdout io.Writer = os.Stdout

func openRepo(ctx context.Context) (task.Repository, func(), error) {
	return app.OpenRepository(ctx, cfg.Storage)
}

// openService builds an analysis service. Storage is opened only when
// withRepo is set.
func openService(ctx context.Context, withRepo bool) (*analysis.Service, func(), error) {
	var (
		repo    task.Repository
		closeFn = func() {}
	)
	if withRepo {
		var err error
		repo, closeFn, err = openRepo(ctx)
		if err != nil {
			return nil, nil, err
		}
	}
	loc, err := cfg.Analysis.Location()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	svc := analysis.NewService(repo, priority.NewEngine(priority.WithLocation(loc)), analysis.Defaults{
		Strategy:    cfg.Analysis.Strategy,
		Suggestions: cfg.Analysis.Suggestions,
	})
	return svc, closeFn, nil
}

// analysisInput loads tasks from file when one is given and opens a service
// for them. Without a file the stored tasks are analyzed.
func analysisInput(ctx context.Context, file, strategy string, count int) (*analysis.Service, analysis.Input, func(), error) {
	in := analysis.Input{Strategy: strategy, Count: count}
	if strings.TrimSpace(file) != "" {
		tasks, err := task.LoadFile(file)
		if err != nil {
			return nil, in, nil, err
		}
		if len(tasks) == 0 {
			return nil, in, nil, priority.NoTasks()
		}
		in.Tasks = tasks
	}
	svc, closeFn, err := openService(ctx, in.Tasks == nil)
	if err != nil {
		return nil, in, nil, err
	}
	return svc, in, closeFn, nil
}
