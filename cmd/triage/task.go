package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/triage/internal/report"
	"github.com/metalagman/triage/internal/task"
)

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage stored tasks",
	}
	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskUpdateCmd())
	cmd.AddCommand(taskDeleteCmd())
	cmd.AddCommand(taskClearCmd())
	cmd.AddCommand(taskImportCmd())
	return cmd
}

// taskFields are the flags shared by add and update.
type taskFields struct {
	due        string
	hours      float64
	importance int
	deps       []string
}

func (f *taskFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&f.hours, "hours", 0, "estimated hours")
	cmd.Flags().IntVar(&f.importance, "importance", 0, "importance from 1 to 10")
	cmd.Flags().StringSliceVar(&f.deps, "depends-on", nil, "ids of tasks that must be done first (repeatable)")
}

func ids(values []string) []task.ID {
	out := make([]task.ID, 0, len(values))
	for _, v := range values {
		out = append(out, task.ID(strings.TrimSpace(v)))
	}
	return out
}

func taskAddCmd() *cobra.Command {
	var fields taskFields
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := task.ParseDate(fields.due)
			if err != nil {
				return err
			}
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			created, err := repo.Create(cmd.Context(), task.Task{
				Title:          strings.TrimSpace(strings.Join(args, " ")),
				DueDate:        due,
				EstimatedHours: fields.hours,
				Importance:     fields.importance,
				Dependencies:   ids(fields.deps),
			})
			if err != nil {
				return err
			}
			log.Info().Msgf("task %s added", created.ID)
			return nil
		},
	}
	fields.register(cmd)
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("importance")
	return cmd
}

func taskListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			items, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return report.JSON(stdout, items)
			}
			return report.Tasks(stdout, items)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			t, err := repo.Get(cmd.Context(), task.ID(args[0]))
			if err != nil {
				return err
			}
			return report.JSON(stdout, t)
		},
	}
}

func taskUpdateCmd() *cobra.Command {
	var (
		fields taskFields
		title  string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := fields.patch(cmd, title)
			if err != nil {
				return err
			}
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			updated, err := repo.Update(cmd.Context(), task.ID(args[0]), patch)
			if err != nil {
				return err
			}
			log.Info().Msgf("task %s updated", updated.ID)
			return nil
		},
	}
	fields.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

// patch builds a partial update from the flags that were set.
func (f *taskFields) patch(cmd *cobra.Command, title string) (task.Patch, error) {
	var p task.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title = &title
	}
	if flags.Changed("due") {
		due, err := task.ParseDate(f.due)
		if err != nil {
			return task.Patch{}, err
		}
		p.DueDate = &due
	}
	if flags.Changed("hours") {
		p.EstimatedHours = &f.hours
	}
	if flags.Changed("importance") {
		p.Importance = &f.importance
	}
	if flags.Changed("depends-on") {
		deps := ids(f.deps)
		p.Dependencies = &deps
	}
	if p == (task.Patch{}) {
		return task.Patch{}, fmt.Errorf("nothing to update")
	}
	return p, nil
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := repo.Delete(cmd.Context(), task.ID(args[0])); err != nil {
				return err
			}
			log.Info().Msgf("task %s deleted", args[0])
			return nil
		},
	}
}

func taskClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all tasks without --yes")
			}
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			n, err := repo.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("deleted", n).Msg("tasks cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func taskImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a JSON or YAML file",
		Long:  "Import tasks from a JSON or YAML file. Dependencies between imported tasks are linked to the ids they receive in storage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := task.LoadFile(args[0])
			if err != nil {
				return err
			}
			repo, closeFn, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			created, err := task.Import(cmd.Context(), repo, tasks)
			if err != nil {
				return err
			}
			log.Info().Int("count", len(created)).Str("file", args[0]).Msg("tasks imported")
			return nil
		},
	}
}
