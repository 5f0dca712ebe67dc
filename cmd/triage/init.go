package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metalagman/triage/internal/config"
)

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a triage project",
		Long:  "Initialize a triage project by creating the .triage directory and installing a default config.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			path := resolveConfigPath(workDir, cfgFile)
			written, err := writeDefaultConfig(path, force)
			if err != nil {
				return err
			}
			if !written {
				log.Info().Str("path", path).Msg("config already exists, skipping")
			} else {
				log.Info().Str("path", path).Msg("default config installed")
			}
			fmt.Fprintln(stdout, "triage initialized successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func defaultConfigYAML() ([]byte, error) {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return nil, fmt.Errorf("marshal default config: %w", err)
	}
	return data, nil
}

// writeDefaultConfig reports whether the file was written.
func writeDefaultConfig(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	data, err := defaultConfigYAML()
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}
