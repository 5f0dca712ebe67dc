package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metalagman/triage/internal/config"
	"github.com/metalagman/triage/internal/logging"
)

var (
	cfgFile string
	envFile string
	debug   bool
	cfg     config.Config
	rootCmd = &cobra.Command{
		Use:           "triage",
		Short:         "triage ranks tasks by priority",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		workDir, err := os.Getwd()
		if err != nil {
			return err
		}
		loaded, err := loadConfig(workDir)
		if err != nil {
			return err
		}
		if debug {
			loaded.Log.Debug = true
		}
		cfg = loaded
		logging.Init(cfg.Log.Debug, cfg.Log.Format)
		return nil
	}
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(depsCmd())
	rootCmd.AddCommand(strategiesCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	return rootCmd.Execute()
}

// loadEnvFile exports the variables of a dotenv file. A missing file is
// not an error; variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
}
