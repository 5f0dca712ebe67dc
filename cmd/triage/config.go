package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/metalagman/triage/internal/config"
)

// envPrefix prefixes environment overrides, e.g. TRIAGE_STORAGE_DRIVER.
const envPrefix = "TRIAGE"

func loadConfig(workDir string) (config.Config, error) {
	path := resolveConfigPath(workDir, viper.GetString("config"))

	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_, err := os.Stat(path)
	switch {
	case err == nil:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	default:
		return config.Config{}, fmt.Errorf("stat config: %w", err)
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Storage.Driver == config.DriverSQLite && !filepath.IsAbs(cfg.Storage.Path) {
		cfg.Storage.Path = filepath.Join(workDir, cfg.Storage.Path)
	}
	return cfg, nil
}

func resolveConfigPath(workDir, path string) string {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}
