package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/report"
)

type analysisFlags struct {
	file     string
	strategy string
	json     bool
}

func (f *analysisFlags) register(cmd *cobra.Command, withStrategy bool) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "analyze tasks from a JSON or YAML file instead of storage")
	if withStrategy {
		cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "weighting strategy ("+strings.Join(priority.StrategyNames(), "|")+"), defaults to analysis.strategy")
	}
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON")
}

func analyzeCmd() *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score and rank tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, in, closeFn, err := analysisInput(cmd.Context(), flags.file, flags.strategy, 0)
			if err != nil {
				return err
			}
			defer closeFn()
			res, err := svc.Analyze(cmd.Context(), in)
			if err != nil {
				return err
			}
			if flags.json {
				return report.JSON(stdout, res)
			}
			return report.Analysis(stdout, res)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func suggestCmd() *cobra.Command {
	var (
		flags analysisFlags
		count int
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Recommend the tasks to work on next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, in, closeFn, err := analysisInput(cmd.Context(), flags.file, flags.strategy, count)
			if err != nil {
				return err
			}
			defer closeFn()
			res, err := svc.Suggest(cmd.Context(), in)
			if err != nil {
				return err
			}
			if flags.json {
				return report.JSON(stdout, res)
			}
			return report.Suggestions(stdout, res)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of suggestions, defaults to analysis.suggestions")
	return cmd
}

func compareCmd() *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank tasks under every strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, in, closeFn, err := analysisInput(cmd.Context(), flags.file, "", 0)
			if err != nil {
				return err
			}
			defer closeFn()
			results, err := svc.Compare(cmd.Context(), in)
			if err != nil {
				return err
			}
			if flags.json {
				return report.JSON(stdout, results)
			}
			return report.Comparison(stdout, results)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func depsCmd() *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Print tasks in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, in, closeFn, err := analysisInput(cmd.Context(), flags.file, "", 0)
			if err != nil {
				return err
			}
			defer closeFn()
			plan, err := svc.Order(cmd.Context(), in)
			if err != nil {
				return err
			}
			if flags.json {
				return report.JSON(stdout, plan)
			}
			return report.Plan(stdout, plan)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func strategiesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List weighting strategies",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if asJSON {
				return report.JSON(stdout, map[string]any{
					"default":    cfg.Analysis.Strategy,
					"strategies": priority.Catalog(),
				})
			}
			return report.Strategies(stdout, cfg.Analysis.Strategy)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
